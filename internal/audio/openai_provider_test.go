package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(&Config{}, zerolog.Nop()); err == nil {
		t.Error("Expected error for missing API key")
	}

	provider, err := NewOpenAIProvider(&Config{OpenAIKey: "test-key"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if provider.client == nil {
		t.Error("OpenAI client not initialized")
	}
	if err := provider.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() = %v", err)
	}
}

func TestOpenAIProviderInstruction(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		template string
		want     string
	}{
		{
			name:     "language substituted",
			model:    "gpt-4o-mini-tts",
			template: "Speak {language} clearly, real {language}.",
			want:     "Speak French clearly, real French.",
		},
		{
			name:     "model without instructions",
			model:    "tts-1",
			template: "Speak {language} clearly.",
			want:     "",
		},
		{
			name:  "no template",
			model: "gpt-4o-mini-tts",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewOpenAIProvider(&Config{
				OpenAIKey:         "test-key",
				OpenAIModel:       tt.model,
				OpenAIInstruction: tt.template,
			}, zerolog.Nop())
			if err != nil {
				t.Fatal(err)
			}
			if got := provider.instruction("fr"); got != tt.want {
				t.Errorf("instruction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseFormat(t *testing.T) {
	tests := map[string]openai.SpeechResponseFormat{
		"a.mp3":  openai.SpeechResponseFormatMp3,
		"a.WAV":  openai.SpeechResponseFormatWav,
		"a.opus": openai.SpeechResponseFormatOpus,
		"a.aac":  openai.SpeechResponseFormatAac,
		"a.flac": openai.SpeechResponseFormatFlac,
		"a":      openai.SpeechResponseFormatMp3,
	}

	for file, want := range tests {
		if got := responseFormat(file); got != want {
			t.Errorf("responseFormat(%q) = %s, want %s", file, got, want)
		}
	}
}

func TestOpenAIGenerateAudioValidation(t *testing.T) {
	provider, err := NewOpenAIProvider(configWithKey("test-key"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		text string
		lang string
	}{
		{"empty text", "   ", "en"},
		{"unsupported language", "a dog", "xx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.mp3")
			if err := provider.GenerateAudio(context.Background(), tt.text, tt.lang, out); err == nil {
				t.Error("Expected validation error")
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Error("Expected no output file")
			}
		})
	}
}

func TestOpenAIGenerateAudio_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	provider, err := NewOpenAIProvider(configWithKey(apiKey), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "caption.mp3")
	if err := provider.GenerateAudio(context.Background(), "un chien qui court", "fr", out); err != nil {
		if strings.Contains(err.Error(), "does not have access") {
			t.Skipf("model not available: %v", err)
		}
		t.Fatalf("GenerateAudio failed: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		t.Errorf("Expected non-empty audio file, err=%v", err)
	}
}

// configWithKey returns the default config with an API key set
func configWithKey(key string) *Config {
	config := DefaultProviderConfig()
	config.OpenAIKey = key
	return config
}
