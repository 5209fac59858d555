// Package language holds the fixed set of caption languages offered to the
// user. Codes are ISO-639-1 and must be accepted by both the translation and
// speech backends.
package language

import (
	"errors"
	"fmt"
	"strings"
)

// Default is the language captions are decoded in
const Default = "en"

// ErrUnsupportedLanguage is returned for codes outside the supported set
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is a selectable caption language
type Language struct {
	Name string
	Code string
}

var supported = []Language{
	{"English", "en"},
	{"Hindi", "hi"},
	{"French", "fr"},
	{"Spanish", "es"},
	{"German", "de"},
	{"Telugu", "te"},
	{"Tamil", "ta"},
	{"Bengali", "bn"},
	{"Kannada", "kn"},
}

// Supported returns the languages in menu order
func Supported() []Language {
	return append([]Language(nil), supported...)
}

// Names returns the display names in menu order
func Names() []string {
	names := make([]string, len(supported))
	for i, l := range supported {
		names[i] = l.Name
	}
	return names
}

// Lookup finds a language by code or display name, ignoring case
func Lookup(codeOrName string) (Language, error) {
	key := strings.TrimSpace(codeOrName)
	for _, l := range supported {
		if strings.EqualFold(l.Code, key) || strings.EqualFold(l.Name, key) {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, codeOrName)
}

// NameOf returns the display name for code, or code itself when unknown
func NameOf(code string) string {
	if l, err := Lookup(code); err == nil {
		return l.Name
	}
	return code
}
