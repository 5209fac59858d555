package feature

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
)

var (
	// ErrImageRead covers unreadable files and decode, resize or embedding failures
	ErrImageRead = errors.New("could not process the image")

	// ErrUnsupportedFormat is returned for anything that is not JPEG or PNG
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

var supportedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
}

// Embedder runs the pretrained embedding network on a preprocessed NHWC image
type Embedder interface {
	Embed(pixels []float32) ([]float32, error)
	FeatureDim() int
}

// Extractor produces feature vectors. It keeps no per-call state.
type Extractor struct {
	embedder Embedder
	size     int
	log      zerolog.Logger
}

// NewExtractor creates an extractor that resamples images to size×size
func NewExtractor(embedder Embedder, size int, logger zerolog.Logger) *Extractor {
	return &Extractor{
		embedder: embedder,
		size:     size,
		log:      logger.With().Str("component", "feature").Logger(),
	}
}

// FeatureDim returns the dimensionality of produced vectors
func (e *Extractor) FeatureDim() int { return e.embedder.FeatureDim() }

// Extract reads the image at path and returns its feature vector
func (e *Extractor) Extract(ctx context.Context, path string) (Vector, error) {
	if err := ctx.Err(); err != nil {
		return Vector{}, err
	}

	img, format, err := Decode(path)
	if err != nil {
		return Vector{}, err
	}

	e.log.Debug().
		Str("path", path).
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("decoded image")

	return e.ExtractImage(img)
}

// ExtractImage embeds an already decoded image
func (e *Extractor) ExtractImage(img image.Image) (Vector, error) {
	if img == nil || img.Bounds().Empty() {
		return Vector{}, fmt.Errorf("%w: empty image", ErrImageRead)
	}

	pixels := Preprocess(img, e.size)

	values, err := e.embedder.Embed(pixels)
	if err != nil {
		return Vector{}, fmt.Errorf("%w: %v", ErrImageRead, err)
	}
	if len(values) != e.embedder.FeatureDim() {
		return Vector{}, fmt.Errorf("%w: embedder returned %d values, want %d",
			ErrImageRead, len(values), e.embedder.FeatureDim())
	}

	return NewVector(values), nil
}

// Decode opens and decodes a JPEG or PNG file
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageRead, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		return nil, "", fmt.Errorf("%w: %v", ErrImageRead, err)
	}

	// Other registered decoders must not widen the accepted formats
	if !supportedFormats[format] {
		return nil, "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, path, format)
	}

	return img, format, nil
}

// Preprocess converts img to RGB, resamples it to size×size and rescales
// every channel from [0,255] to [-1,1]. The result is laid out NHWC.
func Preprocess(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), toRGB(img), resize.Bicubic)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	out := make([]float32, 0, width*height*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(resized.At(x, y)).(color.NRGBA)
			out = append(out, scale(c.R), scale(c.G), scale(c.B))
		}
	}
	return out
}

// toRGB drops the alpha channel without compositing, keeping the straight
// colour values of every pixel.
func toRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	rgb := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = 0xff
			rgb.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return rgb
}

func scale(v uint8) float32 {
	return float32(v)/127.5 - 1.0
}
