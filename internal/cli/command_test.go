package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// resetViper restores the global viper instance after a test
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if cmd.Use != "captionvoice [image]" {
		t.Errorf("Expected Use to be 'captionvoice [image]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Automated Captioning of Images") {
		t.Errorf("Expected Short description to contain 'Automated Captioning of Images'")
	}

	flagNames := []string{
		"config",
		"lang",
		"speak",
		"list-languages",
		"list-models",
		"model-dir",
		"onnxruntime-lib",
		"log-level",
		"translation-provider",
		"translation-url",
		"translation-model",
		"audio-provider",
		"format",
		"audio-dir",
		"no-fallback",
		"openai-model",
		"openai-voice",
		"openai-speed",
		"openai-instruction",
	}

	for _, name := range flagNames {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if name == "config" {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}

	if err := cmd.Args(cmd, []string{"a.jpg", "b.jpg"}); err == nil {
		t.Error("Expected an error for more than one image argument")
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	modelFlag := cmd.Flags().Lookup("model-dir")
	if modelFlag == nil {
		t.Fatal("model-dir flag not found")
	}
	if modelFlag.DefValue != DefaultModelDir() {
		t.Errorf("Expected default model dir %s, got %s", DefaultModelDir(), modelFlag.DefValue)
	}

	formatFlag := cmd.Flags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("format flag not found")
	}
	if formatFlag.DefValue != "mp3" {
		t.Errorf("Expected default format to be mp3, got %s", formatFlag.DefValue)
	}
	if formatFlag.Shorthand != "f" {
		t.Errorf("Expected format shorthand f, got %s", formatFlag.Shorthand)
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `language: fr
translation:
  provider: libretranslate
  url: http://localhost:5000
model:
  dir: /test/model`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
		},
		{
			name: "without config file",
			setupFunc: func(t *testing.T) string {
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			cfgPath := tt.setupFunc(t)
			InitConfig(cfgPath)

			t.Setenv("CAPTIONVOICE_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}

			if cfgPath != "" {
				if viper.GetString("language") != "fr" {
					t.Errorf("Expected language fr from config, got %s", viper.GetString("language"))
				}
				if viper.GetString("model.dir") != "/test/model" {
					t.Errorf("Expected model.dir /test/model, got %s", viper.GetString("model.dir"))
				}
			}
		})
	}
}

func TestInitConfig_EnvOverridesDottedKeys(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("CAPTIONVOICE_MODEL_DIR", "/from/env")
	t.Setenv("CAPTIONVOICE_TRANSLATION_PROVIDER", "none")
	t.Setenv("CAPTIONVOICE_AUDIO_FORMAT", "wav")

	InitConfig("")

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())
	if err := cmd.Flags().Parse(nil); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if s.ModelDir != "/from/env" {
		t.Errorf("Expected model dir from env, got %s", s.ModelDir)
	}
	if s.Translation.Provider != "none" {
		t.Errorf("Expected translation provider none from env, got %s", s.Translation.Provider)
	}
	if s.Audio.Format != "wav" {
		t.Errorf("Expected audio format wav from env, got %s", s.Audio.Format)
	}
}

func TestInitConfig_FlagBeatsEnv(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("CAPTIONVOICE_MODEL_DIR", "/from/env")

	InitConfig("")

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())
	if err := cmd.Flags().Parse([]string{"--model-dir", "/from/flag"}); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.ModelDir != "/from/flag" {
		t.Errorf("Expected explicit flag to win, got %s", s.ModelDir)
	}
}

func TestInitConfig_DotEnv(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CAPTIONVOICE_DOTENV_VAR=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		os.Unsetenv("CAPTIONVOICE_DOTENV_VAR")
	})

	InitConfig("")

	if got := viper.GetString("dotenv_var"); got != "from-dotenv" {
		t.Errorf("Expected value from .env, got %q", got)
	}
}

func TestGetAPIKeys(t *testing.T) {
	tests := []struct {
		name      string
		envVar    string
		configKey string
		get       func() string
	}{
		{"openai", "OPENAI_API_KEY", "openai.api_key", GetOpenAIKey},
		{"gemini", "GEMINI_API_KEY", "gemini.api_key", GetGeminiKey},
		{"libretranslate", "LIBRETRANSLATE_API_KEY", "translation.api_key", GetLibreTranslateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			t.Setenv(tt.envVar, "env-test-key")
			viper.Set(tt.configKey, "config-test-key")
			if got := tt.get(); got != "env-test-key" {
				t.Errorf("Expected key from environment, got %q", got)
			}

			t.Setenv(tt.envVar, "")
			if got := tt.get(); got != "config-test-key" {
				t.Errorf("Expected key from config, got %q", got)
			}

			viper.Reset()
			if got := tt.get(); got != "" {
				t.Errorf("Expected empty key, got %q", got)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	cmd.Flags().Set("model-dir", "/test/model")
	cmd.Flags().Set("format", "wav")
	cmd.Flags().Set("openai-model", "tts-1-hd")
	cmd.Flags().Set("lang", "de")

	if viper.GetString("model.dir") != "/test/model" {
		t.Errorf("Expected model.dir to be /test/model, got %s", viper.GetString("model.dir"))
	}

	if viper.GetString("audio.format") != "wav" {
		t.Errorf("Expected audio.format to be wav, got %s", viper.GetString("audio.format"))
	}

	if viper.GetString("audio.openai_model") != "tts-1-hd" {
		t.Errorf("Expected audio.openai_model to be tts-1-hd, got %s", viper.GetString("audio.openai_model"))
	}

	if viper.GetString("language") != "de" {
		t.Errorf("Expected language to be de, got %s", viper.GetString("language"))
	}
}
