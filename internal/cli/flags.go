package cli

import (
	"os"
	"path/filepath"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile       string
	ModelDir      string
	ORTLibrary    string
	Language      string
	Speak         bool
	ListLanguages bool
	ListModels    bool
	LogLevel      string

	// Translation flags
	TranslationProvider string
	TranslationURL      string
	TranslationModel    string

	// Audio flags
	AudioProvider string
	AudioFormat   string
	AudioDir      string
	NoFallback    bool

	// OpenAI TTS flags
	OpenAIModel       string
	OpenAIVoice       string
	OpenAISpeed       float64
	OpenAIInstruction string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		ModelDir:            DefaultModelDir(),
		Language:            "en",
		LogLevel:            "info",
		TranslationProvider: "openai",
		TranslationURL:      "https://libretranslate.com",
		AudioProvider:       "openai",
		AudioFormat:         "mp3",
		OpenAIModel:         "gpt-4o-mini-tts",
		OpenAIVoice:         "alloy",
		OpenAISpeed:         1.0,
	}
}

// DefaultModelDir is where the exported encoder, decoder and vocabulary live
func DefaultModelDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "captionvoice", "model")
}
