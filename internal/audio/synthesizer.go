package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrSynthesis is returned when no audio could be produced
	ErrSynthesis = errors.New("speech synthesis failed")

	// ErrPlayback is returned when produced audio could not be played
	ErrPlayback = errors.New("audio playback failed")
)

// Synthesizer creates, plays and removes temporary speech artifacts
type Synthesizer struct {
	provider Provider
	player   Player
	dir      string
	format   string
	log      zerolog.Logger
}

// NewSynthesizer creates a Synthesizer writing artifacts of the given format
// into dir. An empty dir uses the system temp directory.
func NewSynthesizer(provider Provider, player Player, dir, format string, logger zerolog.Logger) *Synthesizer {
	if dir == "" {
		dir = os.TempDir()
	}
	if format == "" {
		format = "mp3"
	}
	return &Synthesizer{
		provider: provider,
		player:   player,
		dir:      dir,
		format:   format,
		log:      logger.With().Str("component", "speech").Str("provider", provider.Name()).Logger(),
	}
}

// Synthesize renders text in lang into a new artifact. A failed synthesis
// leaves no file behind.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang string) (*Artifact, error) {
	if err := ValidateText(text, lang); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("caption-%s.%s", uuid.NewString(), s.format))

	if err := s.provider.GenerateAudio(ctx, text, lang, path); err != nil {
		s.remove(path)
		return nil, fmt.Errorf("%w: %s: %v", ErrSynthesis, s.provider.Name(), err)
	}

	art, err := inspectArtifact(path, lang)
	if err != nil {
		s.remove(path)
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	s.log.Debug().
		Str("file", filepath.Base(path)).
		Str("language", lang).
		Int64("bytes", art.Size).
		Dur("duration", art.Duration).
		Msg("synthesized speech")
	return art, nil
}

// Play plays the artifact and returns when playback has finished
func (s *Synthesizer) Play(ctx context.Context, art *Artifact) error {
	if art == nil {
		return fmt.Errorf("%w: no audio", ErrPlayback)
	}
	if err := s.player.Play(ctx, art.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrPlayback, err)
	}
	return nil
}

// Release deletes the artifact file. Releasing twice is harmless.
func (s *Synthesizer) Release(art *Artifact) {
	if art == nil {
		return
	}
	s.remove(art.Path)
}

// Speak synthesizes, plays and releases one artifact. The file is removed
// whether playback succeeds or not.
func (s *Synthesizer) Speak(ctx context.Context, text, lang string) error {
	art, err := s.Synthesize(ctx, text, lang)
	if err != nil {
		return err
	}
	defer s.Release(art)

	return s.Play(ctx, art)
}

func (s *Synthesizer) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("file", path).Msg("failed to remove audio file")
	}
}
