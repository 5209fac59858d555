package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
	}
}

// Catalog groups model ids by what captionvoice can use them for
type Catalog struct {
	Speech      []string
	Translation []string
	Other       int
}

// Categorize sorts model ids into a Catalog
func Categorize(ids []string) Catalog {
	var c Catalog
	for _, id := range ids {
		switch {
		case strings.Contains(id, "tts") || strings.Contains(id, "audio"):
			c.Speech = append(c.Speech, id)
		case strings.HasPrefix(id, "gpt-4") || strings.HasPrefix(id, "gpt-3.5") || isReasoningModel(id):
			c.Translation = append(c.Translation, id)
		default:
			c.Other++
		}
	}
	sort.Strings(c.Speech)
	sort.Strings(c.Translation)
	return c
}

// isReasoningModel matches o1, o3, o4-mini and friends
func isReasoningModel(id string) bool {
	return len(id) > 1 && id[0] == 'o' && id[1] >= '0' && id[1] <= '9'
}

// ListAvailableModels writes the available models to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .captionvoice.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, model := range models.Models {
		ids = append(ids, model.ID)
	}

	Print(w, Categorize(ids))
	return nil
}

// Print writes a catalog in the human readable listing format
func Print(w io.Writer, c Catalog) {
	fmt.Fprintln(w, "Available OpenAI Models:")

	fmt.Fprintln(w, "\nText-to-Speech (TTS) Models (--openai-model):")
	if len(c.Speech) == 0 {
		fmt.Fprintln(w, "  No TTS models found")
	}
	for _, model := range c.Speech {
		fmt.Fprintf(w, "  %s\n", model)
	}

	fmt.Fprintln(w, "\nChat Models for caption translation (--translation-model):")
	if len(c.Translation) == 0 {
		fmt.Fprintln(w, "  No chat models found")
	}
	for _, model := range c.Translation {
		fmt.Fprintf(w, "  %s\n", model)
	}

	if c.Other > 0 {
		fmt.Fprintf(w, "\n... and %d other models\n", c.Other)
	}
}
