package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"codeberg.org/snonux/captionvoice/internal/language"
)

const (
	// DefaultTimeout bounds a single translation request
	DefaultTimeout = 15 * time.Second

	// DefaultBreakerFailures consecutive failures open the breaker
	DefaultBreakerFailures = 3

	// DefaultBreakerCooldown is how long an open breaker rejects calls
	DefaultBreakerCooldown = 60 * time.Second
)

// ErrTranslation is returned for every translation failure. Callers keep the
// original text when they see it.
var ErrTranslation = errors.New("translation failed")

// Backend is a network translation service
type Backend interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
	Name() string
}

// Config selects and configures the translation backend
type Config struct {
	Provider string // "openai", "gemini" or "libretranslate"

	OpenAIKey   string
	OpenAIModel string

	GeminiKey   string
	GeminiModel string

	LibreURL string
	LibreKey string

	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultConfig returns the default translation configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:        "openai",
		GeminiModel:     DefaultGeminiModel,
		LibreURL:        "https://libretranslate.com",
		Timeout:         DefaultTimeout,
		BreakerFailures: DefaultBreakerFailures,
		BreakerCooldown: DefaultBreakerCooldown,
	}
}

// NewBackend creates the backend named in config
func NewBackend(ctx context.Context, config *Config) (Backend, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIBackend(config.OpenAIKey, config.OpenAIModel), nil
	case "gemini":
		return NewGeminiBackend(ctx, config.GeminiKey, config.GeminiModel)
	case "libretranslate":
		return NewLibreBackend(config.LibreURL, config.LibreKey, config.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
}

// Adapter translates caption text out of the source language
type Adapter struct {
	backend Backend
	source  string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewAdapter wraps backend. Captions are assumed to be in source.
func NewAdapter(backend Backend, source string, config *Config, logger zerolog.Logger) *Adapter {
	if config == nil {
		config = DefaultConfig()
	}
	failures := config.BreakerFailures
	if failures == 0 {
		failures = DefaultBreakerFailures
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	log := logger.With().Str("component", "translation").Str("backend", backend.Name()).Logger()

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "translation-" + backend.Name(),
		MaxRequests: 1,
		Timeout:     config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("translation breaker state changed")
		},
	})

	return &Adapter{
		backend: backend,
		source:  source,
		timeout: timeout,
		breaker: breaker,
		log:     log,
	}
}

// Source returns the language captions are translated from
func (a *Adapter) Source() string { return a.source }

// Translate returns text in target. Text already in the source language is
// returned unchanged without a backend call.
func (a *Adapter) Translate(ctx context.Context, text, target string) (string, error) {
	if target == a.source || strings.TrimSpace(text) == "" {
		return text, nil
	}
	if _, err := language.Lookup(target); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.backend.Translate(ctx, text, a.source, target)
	})
	if err != nil {
		a.log.Warn().Err(err).Str("target", target).Msg("translation failed")
		return "", fmt.Errorf("%w: %s: %v", ErrTranslation, a.backend.Name(), err)
	}

	translated, _ := result.(string)
	if translated == "" {
		return "", fmt.Errorf("%w: %s returned an empty translation", ErrTranslation, a.backend.Name())
	}

	a.log.Debug().
		Str("target", target).
		Dur("took", time.Since(start)).
		Msg("translated caption")
	return translated, nil
}
