package translation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/captionvoice/internal/testutil"
)

func newTestAdapter(backend Backend) *Adapter {
	return NewAdapter(backend, "en", DefaultConfig(), zerolog.Nop())
}

func TestAdapter_Translate(t *testing.T) {
	mock := &testutil.MockTranslator{
		Translations: map[string]string{"a dog running": "un chien qui court"},
	}
	adapter := newTestAdapter(mock)

	got, err := adapter.Translate(context.Background(), "a dog running", "fr")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "un chien qui court" {
		t.Errorf("Expected 'un chien qui court', got '%s'", got)
	}
	if len(mock.Calls) != 1 || mock.Calls[0] != "Translate: a dog running (en->fr)" {
		t.Errorf("Unexpected calls: %v", mock.Calls)
	}
}

func TestAdapter_SourceLanguageSkipsBackend(t *testing.T) {
	mock := &testutil.MockTranslator{Err: errors.New("should not be called")}
	adapter := newTestAdapter(mock)

	got, err := adapter.Translate(context.Background(), "a dog running", "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "a dog running" {
		t.Errorf("Expected text unchanged, got '%s'", got)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("Expected no backend calls, got %v", mock.Calls)
	}
}

func TestAdapter_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mock   *testutil.MockTranslator
		target string
	}{
		{
			name:   "backend error",
			mock:   &testutil.MockTranslator{Err: errors.New("network down")},
			target: "fr",
		},
		{
			name:   "empty result",
			mock:   &testutil.MockTranslator{Translations: map[string]string{"a dog": ""}},
			target: "fr",
		},
		{
			name:   "unsupported language",
			mock:   &testutil.MockTranslator{},
			target: "xx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestAdapter(tt.mock)

			_, err := adapter.Translate(context.Background(), "a dog", tt.target)
			if !errors.Is(err, ErrTranslation) {
				t.Errorf("Expected ErrTranslation, got %v", err)
			}
		})
	}
}

func TestAdapter_BreakerOpens(t *testing.T) {
	mock := &testutil.MockTranslator{Err: errors.New("network down")}
	config := DefaultConfig()
	config.BreakerFailures = 2
	adapter := NewAdapter(mock, "en", config, zerolog.Nop())

	for i := 0; i < 4; i++ {
		_, err := adapter.Translate(context.Background(), "a dog", "fr")
		if !errors.Is(err, ErrTranslation) {
			t.Fatalf("call %d: expected ErrTranslation, got %v", i, err)
		}
	}

	if len(mock.Calls) != 2 {
		t.Errorf("Expected the breaker to stop calls after 2 failures, got %d calls", len(mock.Calls))
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		wantName string
		wantErr  bool
	}{
		{
			name:     "openai",
			config:   &Config{Provider: "openai", OpenAIKey: "key"},
			wantName: "openai",
		},
		{
			name:    "openai without key",
			config:  &Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:     "libretranslate",
			config:   &Config{Provider: "libretranslate", LibreURL: "http://localhost:5000"},
			wantName: "libretranslate",
		},
		{
			name:    "gemini without key",
			config:  &Config{Provider: "gemini"},
			wantErr: true,
		},
		{
			name:    "unknown",
			config:  &Config{Provider: "babelfish"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := NewBackend(context.Background(), tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend failed: %v", err)
			}
			if backend.Name() != tt.wantName {
				t.Errorf("Expected backend %s, got %s", tt.wantName, backend.Name())
			}
		})
	}
}
