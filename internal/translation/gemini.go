package translation

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiBackend translates with a Gemini model
type GeminiBackend struct {
	model  string
	client *genai.Client
}

// NewGeminiBackend creates a Gemini translation backend
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{model: model, client: client}, nil
}

// Name returns the backend name
func (b *GeminiBackend) Name() string { return "gemini" }

// Translate translates text from source to target
func (b *GeminiBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model,
		genai.Text(prompt(text, source, target)),
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.3)})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}
