package testutil

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateTestImage writes a w x h PNG with a simple gradient to path
func CreateTestImage(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	CreateTestFile(t, path, buf.Bytes())
}

// CreateModelDirectory writes a vocabulary and model metadata the way the
// export script lays them out, without the ONNX files.
func CreateModelDirectory(t *testing.T, words map[string]int, featureDim, maxLength int) string {
	t.Helper()

	dir := t.TempDir()

	index, err := json.Marshal(words)
	if err != nil {
		t.Fatalf("Failed to encode word index: %v", err)
	}
	CreateTestFile(t, filepath.Join(dir, "word_index.json"), index)

	meta := `{"image_size": 299, "feature_dim": ` + strconv.Itoa(featureDim) +
		`, "max_length": ` + strconv.Itoa(maxLength) +
		`, "vocab_size": ` + strconv.Itoa(len(words)+1) +
		`, "encoder": {"inputs": ["input_1"], "output": "pool"}` +
		`, "decoder": {"inputs": ["input_2", "input_3"], "output": "dense"}}`
	CreateTestFile(t, filepath.Join(dir, "model_metadata.json"), []byte(meta))

	return dir
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertDirEmpty checks that dir exists and holds no entries
func AssertDirEmpty(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("Expected %s to be empty, found %v", dir, names)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}
