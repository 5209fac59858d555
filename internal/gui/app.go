package gui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/captionvoice/internal"
	"codeberg.org/snonux/captionvoice/internal/language"
	"codeberg.org/snonux/captionvoice/internal/session"
)

// Pipeline is the session the GUI drives
type Pipeline interface {
	LoadImage(ctx context.Context, path string) error
	GenerateCaption(ctx context.Context) (session.Outcome, error)
	Speak(ctx context.Context) error
	SelectLanguage(code string) error
	Snapshot() session.Snapshot
}

// Config holds GUI application configuration
type Config struct {
	Logs *LogBuffer // optional log panel source
}

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// UI elements
	languageSelect *widget.Select
	uploadButton   *ttwidget.Button
	generateButton *ttwidget.Button
	playButton     *ttwidget.Button
	imageDisplay   *ImageDisplay
	captionLabel   *widget.Label
	statusLabel    *widget.Label
	logViewer      *LogViewer

	pipeline Pipeline
	config   *Config
	log      zerolog.Logger

	// busy is only touched on the UI goroutine
	busy bool

	// Background processing
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new GUI application
func New(pipeline Pipeline, config *Config, logger zerolog.Logger) *Application {
	return newApplication(app.NewWithID("org.codeberg.snonux.captionvoice"), pipeline, config, logger)
}

func newApplication(fyneApp fyne.App, pipeline Pipeline, config *Config, logger zerolog.Logger) *Application {
	if config == nil {
		config = &Config{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Application{
		app:      fyneApp,
		pipeline: pipeline,
		config:   config,
		log:      logger.With().Str("component", "gui").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}

	a.setupUI()
	a.refreshButtons()

	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("captionvoice v%s - Image Caption Generator with Voice", internal.Version))
	a.window.Resize(fyne.NewSize(850, 750))

	title := widget.NewLabelWithStyle("Automated Captioning of Images", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	title.SizeName = theme.SizeNameHeadingText

	a.languageSelect = widget.NewSelect(language.Names(), nil)
	a.languageSelect.SetSelected(language.NameOf(a.pipeline.Snapshot().Language))
	a.languageSelect.OnChanged = a.onLanguageChanged

	languageRow := container.NewHBox(
		layout.NewSpacer(),
		widget.NewLabel("Language:"),
		a.languageSelect,
		layout.NewSpacer(),
	)

	a.uploadButton = ttwidget.NewButtonWithIcon("Upload Image", theme.FolderOpenIcon(), a.onUpload)
	a.uploadButton.Importance = widget.HighImportance

	a.generateButton = ttwidget.NewButtonWithIcon("Generate Caption", theme.DocumentCreateIcon(), a.onGenerate)
	a.generateButton.Importance = widget.SuccessImportance

	a.playButton = ttwidget.NewButtonWithIcon("Play Caption", theme.MediaPlayIcon(), a.onPlay)
	a.playButton.Importance = widget.WarningImportance

	buttonRow := container.NewHBox(
		layout.NewSpacer(),
		a.uploadButton,
		a.generateButton,
		a.playButton,
		layout.NewSpacer(),
	)

	a.imageDisplay = NewImageDisplay()

	a.captionLabel = widget.NewLabel("Caption will appear here")
	a.captionLabel.Alignment = fyne.TextAlignCenter
	a.captionLabel.Wrapping = fyne.TextWrapWord
	a.captionLabel.SizeName = theme.SizeNameSubHeadingText

	a.statusLabel = widget.NewLabel("Ready")
	a.statusLabel.TextStyle = fyne.TextStyle{Italic: true}

	bottom := container.NewVBox(a.captionLabel, widget.NewSeparator(), a.statusLabel)
	if a.config.Logs != nil {
		a.logViewer = NewLogViewer(a.config.Logs)
		bottom.Add(a.logViewer)
	}

	content := container.NewBorder(
		container.NewVBox(title, languageRow, buttonRow, widget.NewSeparator()),
		bottom,
		nil, nil,
		a.imageDisplay,
	)

	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))

	a.uploadButton.SetToolTip("Upload a JPEG or PNG image (u)")
	a.generateButton.SetToolTip("Generate caption (g)")
	a.playButton.SetToolTip("Play caption (p)")

	a.window.SetOnClosed(func() {
		a.cancel()
		a.wg.Wait()
	})

	a.setupKeyboardShortcuts()
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.ShowAndRun()
}

func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyU:
			if !a.uploadButton.Disabled() {
				a.onUpload()
			}
		case fyne.KeyG:
			if !a.generateButton.Disabled() {
				a.onGenerate()
			}
		case fyne.KeyP:
			if !a.playButton.Disabled() {
				a.onPlay()
			}
		}
	})
}

func (a *Application) onLanguageChanged(name string) {
	if err := a.pipeline.SelectLanguage(name); err != nil {
		a.showError(err)
		return
	}
	a.updateStatus(fmt.Sprintf("Language: %s", name))
}

// onUpload asks for an image file and loads it
func (a *Application) onUpload() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if reader == nil {
			return // cancelled
		}
		path := reader.URI().Path()
		reader.Close()

		a.loadImage(path)
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".jpg", ".jpeg", ".png"}))
	fd.Show()
}

func (a *Application) loadImage(path string) {
	a.imageDisplay.SetLoading(path)
	a.runAsync("Processing image...", func(ctx context.Context) func() {
		err := a.pipeline.LoadImage(ctx, path)
		return func() {
			if err != nil {
				a.imageDisplay.SetImage(a.pipeline.Snapshot().ImagePath)
				a.showError(fmt.Errorf("Could not process the image: %w", err))
				return
			}
			a.imageDisplay.SetImage(path)
			a.captionLabel.SetText("Caption will appear here")
			a.updateStatus("Image loaded")
		}
	})
}

func (a *Application) onGenerate() {
	a.runAsync("Generating caption...", func(ctx context.Context) func() {
		out, err := a.pipeline.GenerateCaption(ctx)
		return func() {
			if err != nil {
				if errors.Is(err, session.ErrNoImageLoaded) {
					a.showError(errors.New("No image loaded."))
					return
				}
				a.showError(err)
				return
			}
			a.captionLabel.SetText("Caption:\n" + out.Caption.DisplayText())
			a.updateStatus("Caption ready")
			if out.Warning != nil {
				a.showWarning("Translation failed", fmt.Sprintf("Error: %v", out.Warning))
			}
		}
	})
}

func (a *Application) onPlay() {
	a.runAsync("Playing caption...", func(ctx context.Context) func() {
		err := a.pipeline.Speak(ctx)
		return func() {
			if err != nil {
				a.showWarning("Audio Error", fmt.Sprintf("Could not play the caption.\n%v", err))
				return
			}
			a.updateStatus("Ready")
		}
	})
}

// runAsync runs work off the UI goroutine with the buttons disabled. The
// returned function is applied on the UI goroutine.
func (a *Application) runAsync(status string, work func(ctx context.Context) func()) {
	if a.busy {
		return
	}
	a.busy = true
	a.refreshButtons()
	a.updateStatus(status)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		apply := work(a.ctx)
		fyne.Do(func() {
			a.busy = false
			apply()
			a.refreshButtons()
		})
	}()
}

// refreshButtons enables the actions the session state allows
func (a *Application) refreshButtons() {
	state := a.pipeline.Snapshot().State

	setEnabled(a.uploadButton, !a.busy)
	setEnabled(a.generateButton, !a.busy && state.HasImage())
	setEnabled(a.playButton, !a.busy && state.HasCaption())
}

func setEnabled(b *ttwidget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (a *Application) updateStatus(message string) {
	a.statusLabel.SetText(message)
}

func (a *Application) showError(err error) {
	a.log.Warn().Err(err).Msg("action failed")
	dialog.ShowError(err, a.window)
	a.updateStatus("Error: " + err.Error())
}

func (a *Application) showWarning(title, message string) {
	a.log.Warn().Str("title", title).Msg(message)
	dialog.ShowInformation(title, message, a.window)
	a.updateStatus(title)
}
