package audio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio renders text spoken in language (an ISO 639-1 code)
	// and saves it to outputFile
	GenerateAudio(ctx context.Context, text, language, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider     string // Provider name: "openai" or "espeak"
	OutputFormat string // Output format: "mp3" or "wav"
	Fallback     bool   // Fall back to espeak-ng when the primary provider fails

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "ash", "ballad", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer", "verse"
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts, {language} is replaced

	// espeak-ng settings
	ESpeak *ESpeakConfig
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "openai",
		OutputFormat:      "mp3",
		Fallback:          true,
		OpenAIModel:       "gpt-4o-mini-tts",
		OpenAIVoice:       "alloy",
		OpenAISpeed:       1.0,
		OpenAIInstruction: "You are reading a short image caption aloud in {language}. Use natural {language} pronunciation and speak clearly.",
		ESpeak:            DefaultConfig(),
	}
}

// NewProvider creates the appropriate audio provider based on configuration
func NewProvider(config *Config, logger zerolog.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}
	log := logger.With().Str("component", "audio").Logger()

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		primary, err := NewOpenAIProvider(config, log)
		if err != nil {
			return nil, err
		}
		if !config.Fallback {
			return primary, nil
		}
		fallback, err := NewESpeakProvider(config.ESpeak)
		if err != nil {
			log.Debug().Err(err).Msg("espeak-ng fallback unavailable")
			return primary, nil
		}
		return NewProviderWithFallback(primary, fallback, log), nil

	case "espeak":
		return NewESpeakProvider(config.ESpeak)

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	log      zerolog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger zerolog.Logger) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		log:      logger,
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, language, outputFile)
	if err != nil {
		p.log.Warn().
			Err(err).
			Str("primary", p.primary.Name()).
			Str("fallback", p.fallback.Name()).
			Msg("primary speech provider failed, falling back")

		return p.fallback.GenerateAudio(ctx, text, language, outputFile)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
