package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/captionvoice/internal/audio"
	"codeberg.org/snonux/captionvoice/internal/caption"
	"codeberg.org/snonux/captionvoice/internal/feature"
	"codeberg.org/snonux/captionvoice/internal/language"
	"codeberg.org/snonux/captionvoice/internal/translation"
)

// Extractor turns an image file into a feature vector
type Extractor interface {
	Extract(ctx context.Context, path string) (feature.Vector, error)
}

// CaptionDecoder turns a feature vector into caption words
type CaptionDecoder interface {
	Decode(ctx context.Context, feat feature.Vector) ([]string, error)
}

// Translator translates caption text into a target language
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Speaker speaks text in a language and cleans up after itself
type Speaker interface {
	Speak(ctx context.Context, text, lang string) error
}

// InferenceContext holds the loaded models. It is built once at startup and
// never changed.
type InferenceContext struct {
	Extractor      Extractor
	Decoder        CaptionDecoder
	SourceLanguage string
}

// NewInferenceContext creates the read-only inference context
func NewInferenceContext(extractor Extractor, decoder CaptionDecoder, sourceLanguage string) *InferenceContext {
	if sourceLanguage == "" {
		sourceLanguage = language.Default
	}
	return &InferenceContext{
		Extractor:      extractor,
		Decoder:        decoder,
		SourceLanguage: sourceLanguage,
	}
}

// Snapshot is a consistent copy of the session for readers
type Snapshot struct {
	ID        string
	ImagePath string
	State     State
	Caption   caption.Caption
	Language  string
}

// Outcome is the result of GenerateCaption. Warning is set when translation
// failed and the caption kept its original text.
type Outcome struct {
	Caption caption.Caption
	Warning error
}

// snapshot is the per image state, replaced wholesale on every upload
type snapshot struct {
	id        string
	imagePath string
	feature   feature.Vector
	caption   caption.Caption
	state     State
}

// Session is the state machine for one user session
type Session struct {
	ic         *InferenceContext
	translator Translator
	speaker    Speaker
	log        zerolog.Logger

	run sync.Mutex // serialises pipeline operations

	mu       sync.RWMutex
	snap     snapshot
	language string
}

// New creates a session in state NoImage. translator and speaker may be nil,
// in which case translation falls back to the original text and Speak fails.
func New(ic *InferenceContext, translator Translator, speaker Speaker, logger zerolog.Logger) *Session {
	return &Session{
		ic:         ic,
		translator: translator,
		speaker:    speaker,
		log:        logger.With().Str("component", "session").Logger(),
		language:   ic.SourceLanguage,
	}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.state
}

// Language returns the selected language code
func (s *Session) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// Caption returns the current caption, if any
func (s *Session) Caption() (caption.Caption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.caption, s.snap.state.HasCaption()
}

// Snapshot returns a consistent copy of the session
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:        s.snap.id,
		ImagePath: s.snap.imagePath,
		State:     s.snap.state,
		Caption:   s.snap.caption,
		Language:  s.language,
	}
}

// SelectLanguage changes the language used by the next GenerateCaption. It is
// valid in every state and does not touch an existing caption.
func (s *Session) SelectLanguage(code string) error {
	lang, err := language.Lookup(code)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.language = lang.Code
	s.mu.Unlock()

	s.log.Debug().Str("language", lang.Code).Msg("language selected")
	return nil
}

// LoadImage extracts the feature of the image at path and starts a new
// snapshot. On failure the previous snapshot stays untouched.
func (s *Session) LoadImage(ctx context.Context, path string) error {
	s.run.Lock()
	defer s.run.Unlock()

	vec, err := s.ic.Extractor.Extract(ctx, path)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("image upload failed")
		return err
	}

	next := snapshot{
		id:        uuid.NewString(),
		imagePath: path,
		feature:   vec,
		state:     ImageLoaded,
	}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	s.log.Info().Str("snapshot", next.id).Str("path", path).Int("feature_dim", vec.Len()).Msg("image loaded")
	return nil
}

// GenerateCaption decodes a caption for the loaded image and translates it
// into the selected language. A translation failure is reported in
// Outcome.Warning; the caption then keeps its original text.
func (s *Session) GenerateCaption(ctx context.Context) (Outcome, error) {
	s.run.Lock()
	defer s.run.Unlock()

	s.mu.RLock()
	cur := s.snap
	target := s.language
	s.mu.RUnlock()

	if !cur.state.HasImage() {
		return Outcome{}, ErrNoImageLoaded
	}

	words, err := s.ic.Decoder.Decode(ctx, cur.feature)
	if err != nil {
		s.log.Error().Err(err).Str("snapshot", cur.id).Msg("caption decoding failed")
		return Outcome{}, err
	}

	c := caption.New(words, s.ic.SourceLanguage)
	out := Outcome{}

	if target != s.ic.SourceLanguage && !c.IsEmpty() {
		translated, err := s.translate(ctx, c.Text(), target)
		if err != nil {
			s.log.Warn().Err(err).Str("snapshot", cur.id).Str("target", target).Msg("keeping original caption")
			out.Warning = err
		} else {
			c = c.WithTranslation(translated, target)
		}
	}
	out.Caption = c

	s.mu.Lock()
	s.snap.caption = c
	s.snap.state = CaptionReady
	s.mu.Unlock()

	s.log.Info().
		Str("snapshot", cur.id).
		Str("caption", c.Text()).
		Str("display", c.DisplayText()).
		Str("language", c.Language()).
		Msg("caption generated")
	return out, nil
}

func (s *Session) translate(ctx context.Context, text, target string) (string, error) {
	if s.translator == nil {
		return "", fmt.Errorf("%w: no translation backend configured", translation.ErrTranslation)
	}
	translated, err := s.translator.Translate(ctx, text, target)
	if err != nil {
		if !errors.Is(err, translation.ErrTranslation) {
			err = fmt.Errorf("%w: %v", translation.ErrTranslation, err)
		}
		return "", err
	}
	return translated, nil
}

// Speak reads the caption aloud in the language it is displayed in. The
// state only advances to AudioReady when playback succeeded.
func (s *Session) Speak(ctx context.Context) error {
	s.run.Lock()
	defer s.run.Unlock()

	s.mu.RLock()
	cur := s.snap
	s.mu.RUnlock()

	if !cur.state.HasCaption() {
		return ErrNoCaption
	}
	if cur.caption.IsEmpty() {
		return fmt.Errorf("%w: caption is empty", ErrNoCaption)
	}
	if s.speaker == nil {
		return fmt.Errorf("%w: speech is disabled", audio.ErrSynthesis)
	}

	if err := s.speaker.Speak(ctx, cur.caption.DisplayText(), cur.caption.Language()); err != nil {
		s.log.Warn().Err(err).Str("snapshot", cur.id).Msg("speech failed")
		return err
	}

	s.mu.Lock()
	s.snap.state = AudioReady
	s.mu.Unlock()

	s.log.Info().Str("snapshot", cur.id).Str("language", cur.caption.Language()).Msg("caption spoken")
	return nil
}
