package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/captionvoice/internal/audio"
	"codeberg.org/snonux/captionvoice/internal/caption"
	"codeberg.org/snonux/captionvoice/internal/cli"
	"codeberg.org/snonux/captionvoice/internal/feature"
	"codeberg.org/snonux/captionvoice/internal/gui"
	"codeberg.org/snonux/captionvoice/internal/language"
	"codeberg.org/snonux/captionvoice/internal/model"
	"codeberg.org/snonux/captionvoice/internal/session"
	"codeberg.org/snonux/captionvoice/internal/translation"
	"codeberg.org/snonux/captionvoice/internal/vocab"
)

// Processor handles the main captioning logic
type Processor struct {
	flags   *cli.Flags
	session *session.Session
	runtime *model.Runtime
	logs    *gui.LogBuffer

	out    io.Writer
	errOut io.Writer
	log    zerolog.Logger
}

// NewProcessor loads the networks and builds a session from settings. The
// returned processor must be closed.
func NewProcessor(ctx context.Context, flags *cli.Flags, settings *cli.Settings, logs *gui.LogBuffer, logger zerolog.Logger) (*Processor, error) {
	log := logger.With().Str("component", "processor").Logger()

	modelConfig := settings.ModelConfig()
	rt, err := model.Open(modelConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load captioning model from %s: %w", modelConfig.Dir, err)
	}

	if err := checkMaxLength(rt.Metadata); err != nil {
		rt.Close()
		return nil, err
	}

	v, err := loadVocabulary(modelConfig, rt.Metadata, log)
	if err != nil {
		rt.Close()
		return nil, err
	}

	extractor := feature.NewExtractor(rt.Encoder, rt.Metadata.ImageSize, logger)
	decoder := caption.NewDecoder(rt.Decoder, v, caption.MaxLength, logger)
	ic := session.NewInferenceContext(extractor, decoder, language.Default)

	sess := session.New(ic, newTranslator(ctx, settings, log, logger), newSpeaker(settings, log, logger), logger)
	if err := sess.SelectLanguage(settings.Language); err != nil {
		rt.Close()
		return nil, err
	}

	p := New(flags, sess, os.Stdout, os.Stderr, logger)
	p.runtime = rt
	p.logs = logs
	return p, nil
}

// New creates a processor around an existing session
func New(flags *cli.Flags, sess *session.Session, out, errOut io.Writer, logger zerolog.Logger) *Processor {
	return &Processor{
		flags:   flags,
		session: sess,
		out:     out,
		errOut:  errOut,
		log:     logger.With().Str("component", "processor").Logger(),
	}
}

// checkMaxLength rejects decoders exported for a different sequence length
func checkMaxLength(meta model.Metadata) error {
	if meta.MaxLength != caption.MaxLength {
		return fmt.Errorf("decoder expects sequences of length %d, captions are decoded with %d",
			meta.MaxLength, caption.MaxLength)
	}
	return nil
}

func loadVocabulary(cfg model.Config, meta model.Metadata, log zerolog.Logger) (*vocab.Vocabulary, error) {
	path := filepath.Join(cfg.Dir, cfg.VocabFile)
	v, err := vocab.Load(path, vocab.DefaultOptions())
	if err != nil {
		return nil, err
	}

	// Index 0 is reserved for padding
	if meta.VocabSize > 0 && v.Size()+1 > meta.VocabSize {
		log.Warn().
			Int("words", v.Size()).
			Int("vocab_size", meta.VocabSize).
			Msg("vocabulary is larger than the decoder output")
	}
	return v, nil
}

// newTranslator returns nil when translation is disabled or its backend
// cannot be built; the session then keeps captions in English.
func newTranslator(ctx context.Context, settings *cli.Settings, log, logger zerolog.Logger) session.Translator {
	config := settings.TranslationConfig()
	if config.Provider == "none" {
		return nil
	}

	backend, err := translation.NewBackend(ctx, config)
	if err != nil {
		log.Warn().Err(err).Str("provider", config.Provider).Msg("translation disabled")
		return nil
	}
	return translation.NewAdapter(backend, language.Default, config, logger)
}

// newSpeaker returns nil when speech is disabled or no provider is usable
func newSpeaker(settings *cli.Settings, log, logger zerolog.Logger) session.Speaker {
	config := settings.AudioConfig()
	if config.Provider == "none" {
		return nil
	}

	provider, err := audio.NewProvider(config, logger)
	if err != nil {
		log.Warn().Err(err).Str("provider", config.Provider).Msg("speech disabled")
		return nil
	}

	dir := settings.Audio.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	return audio.NewSynthesizer(provider, audio.NewCommandPlayer(), dir, config.OutputFormat, logger)
}

// ProcessImage captions one image and prints the result
func (p *Processor) ProcessImage(ctx context.Context, path string, speak bool) error {
	fmt.Fprintf(p.out, "Processing: %s\n", path)

	if err := p.session.LoadImage(ctx, path); err != nil {
		return fmt.Errorf("could not process the image: %w", err)
	}

	out, err := p.session.GenerateCaption(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "Caption: %s\n", out.Caption.Text())
	if out.Caption.Translated() {
		fmt.Fprintf(p.out, "%s: %s\n", language.NameOf(out.Caption.Language()), out.Caption.DisplayText())
	}
	if out.Warning != nil {
		fmt.Fprintf(p.errOut, "Warning: translation failed: %v\n", out.Warning)
	}

	if speak {
		if err := p.session.Speak(ctx); err != nil {
			fmt.Fprintf(p.errOut, "Warning: could not play the caption: %v\n", err)
		}
	}
	return nil
}

// PrintLanguages writes the supported language table
func PrintLanguages(w io.Writer) {
	fmt.Fprintln(w, "Supported languages:")
	for _, lang := range language.Supported() {
		marker := " "
		if lang.Code == language.Default {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %-4s %s\n", marker, lang.Code, lang.Name)
	}
}

// RunGUIMode launches the GUI application
func (p *Processor) RunGUIMode() error {
	app := gui.New(p.session, &gui.Config{Logs: p.logs}, p.log)
	app.Run()
	return nil
}

// Close releases the networks
func (p *Processor) Close() {
	if p.runtime != nil {
		p.runtime.Close()
		p.runtime = nil
	}
}
