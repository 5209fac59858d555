package audio

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/captionvoice/internal/language"
)

// ValidateText checks that text can be spoken in the given language
func ValidateText(text, lang string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	if _, err := language.Lookup(lang); err != nil {
		return err
	}

	return nil
}
