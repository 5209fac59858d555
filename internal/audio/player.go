package audio

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Player plays an audio file and returns when playback has finished
type Player interface {
	Play(ctx context.Context, path string) error
}

// CommandPlayer plays audio through a platform command line player
type CommandPlayer struct {
	goos     string
	lookPath func(string) (string, error)
}

// NewCommandPlayer creates a player for the current platform
func NewCommandPlayer() *CommandPlayer {
	return &CommandPlayer{goos: runtime.GOOS, lookPath: exec.LookPath}
}

// Play blocks until the player command exits
func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	name, args, err := p.command(path)
	if err != nil {
		return err
	}

	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\nOutput: %s", name, err, string(output))
	}
	return nil
}

// command picks the player binary and arguments for path
func (p *CommandPlayer) command(path string) (string, []string, error) {
	switch p.goos {
	case "darwin":
		return "afplay", []string{path}, nil
	case "linux":
		// mpg123 first since it handles MP3 files best
		candidates := []struct {
			name string
			args []string
		}{
			{"mpg123", []string{"-q", path}},
			{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}},
			{"play", []string{"-q", path}},
			{"paplay", []string{path}},
			{"aplay", []string{"-q", path}},
		}
		for _, c := range candidates {
			if _, err := p.lookPath(c.name); err == nil {
				return c.name, c.args, nil
			}
		}
		return "", nil, fmt.Errorf("no audio player found. Install mpg123, ffplay, sox, paplay, or aplay")
	case "windows":
		return "cmd", []string{"/c", "start", "/wait", "/min", path}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", p.goos)
	}
}
