package feature

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/captionvoice/internal/testutil"
)

// meanEmbedder returns a vector filled with the mean of the input pixels
type meanEmbedder struct {
	dim   int
	calls int
	last  []float32
	err   error
}

func (m *meanEmbedder) FeatureDim() int { return m.dim }

func (m *meanEmbedder) Embed(pixels []float32) ([]float32, error) {
	m.calls++
	m.last = pixels
	if m.err != nil {
		return nil, m.err
	}
	var sum float32
	for _, p := range pixels {
		sum += p
	}
	out := make([]float32, m.dim)
	for i := range out {
		out[i] = sum / float32(len(pixels))
	}
	return out, nil
}

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode image: %v", err)
	}
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.02
}

func TestPreprocess_Range(t *testing.T) {
	tests := []struct {
		name  string
		color color.NRGBA
		want  [3]float32
	}{
		{"white", color.NRGBA{255, 255, 255, 255}, [3]float32{1, 1, 1}},
		{"black", color.NRGBA{0, 0, 0, 255}, [3]float32{-1, -1, -1}},
		{"transparent keeps colour", color.NRGBA{255, 0, 255, 0}, [3]float32{1, -1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 10, 6))
			for y := 0; y < 6; y++ {
				for x := 0; x < 10; x++ {
					img.SetNRGBA(x, y, tt.color)
				}
			}

			pixels := Preprocess(img, 4)
			if len(pixels) != 4*4*3 {
				t.Fatalf("len(pixels) = %d, want %d", len(pixels), 4*4*3)
			}
			for i, p := range pixels {
				if !approx(p, tt.want[i%3]) {
					t.Fatalf("pixels[%d] = %f, want %f", i, p, tt.want[i%3])
				}
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "white.png")
	writePNG(t, path, 20, 12, color.NRGBA{255, 255, 255, 255})

	emb := &meanEmbedder{dim: 8}
	ex := NewExtractor(emb, 5, zerolog.Nop())

	vec, err := ex.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if vec.Len() != 8 {
		t.Errorf("Len() = %d, want 8", vec.Len())
	}
	if len(emb.last) != 5*5*3 {
		t.Errorf("embedder received %d values, want %d", len(emb.last), 5*5*3)
	}
	for _, v := range vec.Values() {
		if !approx(v, 1) {
			t.Errorf("feature value = %f, want ~1", v)
		}
	}
}

func TestExtract_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	textFile := filepath.Join(tmpDir, "notes.txt")
	testutil.CreateTestFile(t, textFile, []byte("this is not an image"))

	truncated := filepath.Join(tmpDir, "truncated.png")
	testutil.CreateTestFile(t, truncated, []byte("\x89PNG\r\n\x1a\n\x00\x00"))

	valid := filepath.Join(tmpDir, "ok.png")
	writePNG(t, valid, 4, 4, color.NRGBA{10, 20, 30, 255})

	animated := filepath.Join(tmpDir, "clip.gif")
	writeGIF(t, animated)

	tests := []struct {
		name     string
		path     string
		embedErr error
		want     error
	}{
		{"missing file", filepath.Join(tmpDir, "missing.jpg"), nil, ErrImageRead},
		{"unknown format", textFile, nil, ErrUnsupportedFormat},
		{"corrupt png", truncated, nil, ErrImageRead},
		{"gif decoder registered", animated, nil, ErrUnsupportedFormat},
		{"embedding failure", valid, errors.New("onnx run failed"), ErrImageRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExtractor(&meanEmbedder{dim: 4, err: tt.embedErr}, 3, zerolog.Nop())
			vec, err := ex.Extract(context.Background(), tt.path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Extract() error = %v, want %v", err, tt.want)
			}
			if !vec.IsZero() {
				t.Error("Expected zero vector on failure")
			}
		})
	}
}

// writeGIF encodes a small GIF. Importing image/gif registers its decoder
// with the image package in this test binary.
func writeGIF(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	if err := gif.Encode(f, img, nil); err != nil {
		t.Fatalf("Failed to encode GIF: %v", err)
	}
}

func TestDecode_RejectsOtherRegisteredFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.gif")
	writeGIF(t, path)

	// The decoder is registered, so the image package itself accepts the file
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_, format, err := image.Decode(f)
	f.Close()
	if err != nil || format != "gif" {
		t.Fatalf("image.Decode() = %q, %v, want gif", format, err)
	}

	if _, _, err := Decode(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecode_AcceptsJPEGAndPNG(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "ok.png")
	writePNG(t, pngPath, 2, 2, color.NRGBA{1, 2, 3, 255})

	jpegPath := filepath.Join(dir, "ok.jpg")
	f, err := os.Create(jpegPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}
	f.Close()

	tests := []struct {
		path   string
		format string
	}{
		{pngPath, "png"},
		{jpegPath, "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			_, format, err := Decode(tt.path)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if format != tt.format {
				t.Errorf("Decode() format = %s, want %s", format, tt.format)
			}
		})
	}
}

func TestVector_IsImmutable(t *testing.T) {
	src := []float32{1, 2, 3}
	vec := NewVector(src)
	src[0] = 99

	values := vec.Values()
	if values[0] != 1 {
		t.Errorf("Vector changed with its source slice: %v", values)
	}

	values[1] = 42
	if vec.Values()[1] != 2 {
		t.Error("Vector changed through returned slice")
	}
}
