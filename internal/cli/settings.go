package cli

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"codeberg.org/snonux/captionvoice/internal/audio"
	"codeberg.org/snonux/captionvoice/internal/language"
	"codeberg.org/snonux/captionvoice/internal/model"
	"codeberg.org/snonux/captionvoice/internal/translation"
)

// Settings is the resolved configuration after flags, config file and
// environment have been merged
type Settings struct {
	ModelDir   string `validate:"required"`
	ORTLibrary string
	Language   string `validate:"required"`
	LogLevel   string `validate:"oneof=trace debug info warn error"`

	Translation TranslationSettings
	Audio       AudioSettings

	OpenAIKey string
	GeminiKey string
}

// TranslationSettings configures the translation backend
type TranslationSettings struct {
	Provider string `validate:"oneof=openai gemini libretranslate none"`
	URL      string `validate:"omitempty,url"`
	Model    string
	APIKey   string
	Timeout  time.Duration `validate:"gt=0"`
}

// AudioSettings configures speech synthesis
type AudioSettings struct {
	Provider          string `validate:"oneof=openai espeak none"`
	Format            string `validate:"oneof=mp3 wav"`
	Dir               string
	Fallback          bool
	OpenAIModel       string  `validate:"required_if=Provider openai"`
	OpenAIVoice       string  `validate:"required_if=Provider openai"`
	OpenAISpeed       float64 `validate:"gte=0.25,lte=4"`
	OpenAIInstruction string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadSettings reads the bound flags and config values from viper
func LoadSettings() (*Settings, error) {
	s := &Settings{
		ModelDir:   viper.GetString("model.dir"),
		ORTLibrary: viper.GetString("model.onnxruntime_lib"),
		Language:   viper.GetString("language"),
		LogLevel:   viper.GetString("log_level"),
		Translation: TranslationSettings{
			Provider: viper.GetString("translation.provider"),
			URL:      viper.GetString("translation.url"),
			Model:    viper.GetString("translation.model"),
			APIKey:   GetLibreTranslateKey(),
			Timeout:  viper.GetDuration("translation.timeout"),
		},
		Audio: AudioSettings{
			Provider:          viper.GetString("audio.provider"),
			Format:            viper.GetString("audio.format"),
			Dir:               viper.GetString("audio.dir"),
			Fallback:          !viper.GetBool("audio.no_fallback"),
			OpenAIModel:       viper.GetString("audio.openai_model"),
			OpenAIVoice:       viper.GetString("audio.openai_voice"),
			OpenAISpeed:       viper.GetFloat64("audio.openai_speed"),
			OpenAIInstruction: viper.GetString("audio.openai_instruction"),
		},
		OpenAIKey: GetOpenAIKey(),
		GeminiKey: GetGeminiKey(),
	}

	if s.Translation.Timeout == 0 {
		s.Translation.Timeout = translation.DefaultTimeout
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings and normalizes the language to its code
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if s.Translation.Provider == "libretranslate" && s.Translation.URL == "" {
		return fmt.Errorf("invalid configuration: libretranslate needs a server URL")
	}

	lang, err := language.Lookup(s.Language)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	s.Language = lang.Code

	return nil
}

// ModelConfig returns the model runtime configuration
func (s *Settings) ModelConfig() model.Config {
	cfg := model.DefaultConfig(s.ModelDir)
	cfg.LibraryPath = s.ORTLibrary
	return cfg
}

// TranslationConfig returns the translation configuration
func (s *Settings) TranslationConfig() *translation.Config {
	cfg := translation.DefaultConfig()
	cfg.Provider = s.Translation.Provider
	cfg.OpenAIKey = s.OpenAIKey
	cfg.OpenAIModel = s.Translation.Model
	cfg.GeminiKey = s.GeminiKey
	if s.Translation.Model != "" {
		cfg.GeminiModel = s.Translation.Model
	}
	cfg.LibreURL = s.Translation.URL
	cfg.LibreKey = s.Translation.APIKey
	cfg.Timeout = s.Translation.Timeout
	return cfg
}

// AudioConfig returns the speech provider configuration
func (s *Settings) AudioConfig() *audio.Config {
	cfg := audio.DefaultProviderConfig()
	cfg.Provider = s.Audio.Provider
	cfg.OutputFormat = s.Audio.Format
	cfg.Fallback = s.Audio.Fallback
	cfg.OpenAIKey = s.OpenAIKey
	cfg.OpenAIModel = s.Audio.OpenAIModel
	cfg.OpenAIVoice = s.Audio.OpenAIVoice
	cfg.OpenAISpeed = s.Audio.OpenAISpeed
	if s.Audio.OpenAIInstruction != "" {
		cfg.OpenAIInstruction = s.Audio.OpenAIInstruction
	}
	return cfg
}
