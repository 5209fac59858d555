package session

import "errors"

// State is the position of the session in the pipeline
type State int

const (
	NoImage State = iota
	ImageLoaded
	CaptionReady
	AudioReady
)

func (s State) String() string {
	switch s {
	case NoImage:
		return "no-image"
	case ImageLoaded:
		return "image-loaded"
	case CaptionReady:
		return "caption-ready"
	case AudioReady:
		return "audio-ready"
	default:
		return "unknown"
	}
}

// HasImage reports whether an image feature is available
func (s State) HasImage() bool { return s >= ImageLoaded }

// HasCaption reports whether a caption is available
func (s State) HasCaption() bool { return s >= CaptionReady }

var (
	// ErrNoImageLoaded is returned when captioning is requested before an upload
	ErrNoImageLoaded = errors.New("no image loaded")

	// ErrNoCaption is returned when speech is requested before a caption exists
	ErrNoCaption = errors.New("no caption generated")
)
