package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates the process logger writing human readable lines to w.
// Extra writers, such as the GUI log panel, receive the same lines without
// colors.
func NewLogger(level string, w io.Writer, extra ...io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}}
	for _, e := range extra {
		writers = append(writers, zerolog.ConsoleWriter{Out: e, TimeFormat: time.TimeOnly, NoColor: true})
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger(), nil
}
