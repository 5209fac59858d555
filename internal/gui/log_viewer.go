package gui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LogBuffer keeps the most recent log lines. It is an io.Writer so the
// process logger can write to it before any window exists.
type LogBuffer struct {
	mu          sync.Mutex
	messages    []string
	maxMessages int
	onChange    func(messages []string)
}

// NewLogBuffer creates a buffer holding up to 1000 lines
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{maxMessages: 1000}
}

// Write implements io.Writer
func (b *LogBuffer) Write(p []byte) (int, error) {
	lines := strings.Split(strings.TrimRight(string(p), "\n"), "\n")

	b.mu.Lock()
	for _, line := range lines {
		if line == "" {
			continue
		}
		// Newest first
		b.messages = append([]string{line}, b.messages...)
	}
	if len(b.messages) > b.maxMessages {
		b.messages = b.messages[:b.maxMessages]
	}
	onChange := b.onChange
	snapshot := append([]string(nil), b.messages...)
	b.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
	return len(p), nil
}

// Messages returns the buffered lines, newest first
func (b *LogBuffer) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages...)
}

func (b *LogBuffer) subscribe(f func(messages []string)) {
	b.mu.Lock()
	b.onChange = f
	b.mu.Unlock()
}

// LogViewer is a widget that displays the lines of a LogBuffer
type LogViewer struct {
	widget.BaseWidget

	container  *fyne.Container
	logEntry   *widget.Entry
	scrollView *container.Scroll
}

// NewLogViewer creates a viewer following buf
func NewLogViewer(buf *LogBuffer) *LogViewer {
	v := &LogViewer{}

	v.logEntry = widget.NewMultiLineEntry()
	v.logEntry.Disable()
	v.logEntry.Wrapping = fyne.TextWrapWord

	v.scrollView = container.NewScroll(v.logEntry)
	v.scrollView.SetMinSize(fyne.NewSize(0, 100))

	v.container = container.NewBorder(
		widget.NewLabel("Log messages (newest first):"),
		nil,
		nil,
		nil,
		v.scrollView,
	)

	v.ExtendBaseWidget(v)

	if buf != nil {
		v.show(buf.Messages())
		buf.subscribe(func(messages []string) {
			fyne.Do(func() { v.show(messages) })
		})
	}
	return v
}

// CreateRenderer implements fyne.Widget
func (v *LogViewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

func (v *LogViewer) show(messages []string) {
	v.logEntry.SetText(strings.Join(messages, "\n"))
	v.scrollView.Offset = fyne.NewPos(0, 0)
	v.scrollView.Refresh()
}
