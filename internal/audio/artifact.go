package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

// Artifact is a synthesized audio file owned by the Synthesizer until it is
// released
type Artifact struct {
	Path     string
	Format   string
	Language string
	Size     int64
	Duration time.Duration // zero when the format does not expose it
}

// inspectArtifact checks that path holds playable audio and fills in what can
// be read from the file
func inspectArtifact(path, lang string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("audio file %s is empty", filepath.Base(path))
	}

	art := &Artifact{
		Path:     path,
		Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Language: lang,
		Size:     info.Size(),
	}

	if art.Format != "wav" {
		return art, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("audio file %s is not a valid WAV file", filepath.Base(path))
	}
	if dur, err := d.Duration(); err == nil {
		art.Duration = dur
	}

	return art, nil
}
