package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/captionvoice/internal/language"
)

// OpenAIBackend translates with an OpenAI chat model
type OpenAIBackend struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIBackend creates a new OpenAI translation backend
func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIBackend{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClient(apiKey),
	}
}

// Name returns the backend name
func (b *OpenAIBackend) Name() string { return "openai" }

// Translate translates text from source to target
func (b *OpenAIBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	if b.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not found")
	}

	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt(text, source, target),
			},
		},
		MaxTokens:   200,
		Temperature: 0.3,
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// prompt builds the instruction shared by the LLM backends
func prompt(text, source, target string) string {
	return fmt.Sprintf("Translate the following %s image caption into %s (%s). Respond with only the translation, nothing else.\n\n%s",
		language.NameOf(source), language.NameOf(target), target, text)
}
