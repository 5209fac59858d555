package caption

import "strings"

// Caption is a decoded caption. Words never change after decoding; a
// translation only sets the display text.
type Caption struct {
	words       []string
	translated  string
	language    string
	translation bool
}

// New creates a caption in sourceLanguage from decoded words
func New(words []string, sourceLanguage string) Caption {
	return Caption{
		words:    append([]string(nil), words...),
		language: sourceLanguage,
	}
}

// Words returns a copy of the decoded words
func (c Caption) Words() []string {
	return append([]string(nil), c.words...)
}

// Text returns the original decoded text
func (c Caption) Text() string {
	return strings.Join(c.words, " ")
}

// DisplayText returns the translated text when present, the original otherwise
func (c Caption) DisplayText() string {
	if c.translation {
		return c.translated
	}
	return c.Text()
}

// Language returns the language DisplayText is in
func (c Caption) Language() string { return c.language }

// Translated reports whether DisplayText holds a translation
func (c Caption) Translated() bool { return c.translation }

// IsEmpty reports whether no words were decoded
func (c Caption) IsEmpty() bool { return len(c.words) == 0 }

// WithTranslation returns a copy whose display text is text in language
func (c Caption) WithTranslation(text, language string) Caption {
	out := c
	out.words = append([]string(nil), c.words...)
	out.translated = text
	out.language = language
	out.translation = true
	return out
}
