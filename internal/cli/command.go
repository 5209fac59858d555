package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/captionvoice/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "captionvoice [image]",
		Short: "Automated Captioning of Images",
		Long: `captionvoice describes a photo in a sentence, translates the caption
and reads it aloud.

Captions are generated locally by an exported encoder/decoder model
running on ONNX Runtime. Translation and speech use OpenAI, Gemini,
LibreTranslate or espeak-ng.

Examples:
  captionvoice                          # Launch interactive GUI (default)
  captionvoice dog.jpg                  # Caption an image in the terminal
  captionvoice dog.jpg --lang fr --speak
  captionvoice --list-languages`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.captionvoice.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.Language, "lang", "l", flags.Language, "Caption language code or name (see --list-languages)")
	cmd.Flags().BoolVarP(&flags.Speak, "speak", "s", false, "Read the caption aloud after printing it")
	cmd.Flags().BoolVar(&flags.ListLanguages, "list-languages", false, "List supported caption languages")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")
	cmd.Flags().StringVar(&flags.ModelDir, "model-dir", flags.ModelDir, "Directory with encoder.onnx, decoder.onnx, word_index.json and model_metadata.json")
	cmd.Flags().StringVar(&flags.ORTLibrary, "onnxruntime-lib", "", "Path to the ONNX Runtime shared library")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: trace, debug, info, warn, error")

	// Translation flags
	cmd.Flags().StringVar(&flags.TranslationProvider, "translation-provider", flags.TranslationProvider, "Translation backend: openai, gemini, libretranslate or none")
	cmd.Flags().StringVar(&flags.TranslationURL, "translation-url", flags.TranslationURL, "LibreTranslate server URL")
	cmd.Flags().StringVar(&flags.TranslationModel, "translation-model", "", "Chat model used for translation (openai or gemini)")

	// Audio flags
	cmd.Flags().StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Speech provider: openai, espeak or none")
	cmd.Flags().StringVarP(&flags.AudioFormat, "format", "f", flags.AudioFormat, "Audio format (wav or mp3)")
	cmd.Flags().StringVar(&flags.AudioDir, "audio-dir", "", "Directory for temporary audio files (default: system temp dir)")
	cmd.Flags().BoolVar(&flags.NoFallback, "no-fallback", false, "Do not fall back to espeak-ng when OpenAI TTS fails")

	// OpenAI flags
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, ballad, coral, echo, fable, onyx, nova, sage, shimmer, verse")
	cmd.Flags().Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0, may be ignored by gpt-4o-mini-tts)")
	cmd.Flags().StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts, {language} is replaced by the language name")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("language", cmd.Flags().Lookup("lang"))
	viper.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))
	viper.BindPFlag("model.dir", cmd.Flags().Lookup("model-dir"))
	viper.BindPFlag("model.onnxruntime_lib", cmd.Flags().Lookup("onnxruntime-lib"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("translation-provider"))
	viper.BindPFlag("translation.url", cmd.Flags().Lookup("translation-url"))
	viper.BindPFlag("translation.model", cmd.Flags().Lookup("translation-model"))
	viper.BindPFlag("audio.provider", cmd.Flags().Lookup("audio-provider"))
	viper.BindPFlag("audio.format", cmd.Flags().Lookup("format"))
	viper.BindPFlag("audio.dir", cmd.Flags().Lookup("audio-dir"))
	viper.BindPFlag("audio.no_fallback", cmd.Flags().Lookup("no-fallback"))
	viper.BindPFlag("audio.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("audio.openai_voice", cmd.Flags().Lookup("openai-voice"))
	viper.BindPFlag("audio.openai_speed", cmd.Flags().Lookup("openai-speed"))
	viper.BindPFlag("audio.openai_instruction", cmd.Flags().Lookup("openai-instruction"))
}

// InitConfig loads an optional .env file and initializes viper configuration
func InitConfig(cfgFile string) {
	// Variables already set in the environment win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".captionvoice" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".captionvoice")
	}

	// CAPTIONVOICE_MODEL_DIR maps to model.dir
	viper.SetEnvPrefix("CAPTIONVOICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	return viper.GetString("openai.api_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}

	return viper.GetString("gemini.api_key")
}

// GetLibreTranslateKey retrieves the optional LibreTranslate API key
func GetLibreTranslateKey() string {
	if key := os.Getenv("LIBRETRANSLATE_API_KEY"); key != "" {
		return key
	}

	return viper.GetString("translation.api_key")
}
