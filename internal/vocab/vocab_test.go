package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testIndex() map[string]int {
	return map[string]int{
		"start":   1,
		"end":     2,
		"a":       3,
		"dog":     4,
		"running": 5,
		"<unk>":   6,
	}
}

func TestNew(t *testing.T) {
	v, err := New(testIndex(), DefaultOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if v.StartID() != 1 {
		t.Errorf("StartID() = %d, want 1", v.StartID())
	}
	if v.EndID() != 2 {
		t.Errorf("EndID() = %d, want 2", v.EndID())
	}
	if v.Size() != 6 {
		t.Errorf("Size() = %d, want 6", v.Size())
	}
	if _, ok := v.UnknownID(); ok {
		t.Error("Expected no unknown-word id without Options.Unknown")
	}
}

func TestNew_InvalidIndex(t *testing.T) {
	tests := []struct {
		name  string
		index map[string]int
		opts  Options
	}{
		{"padding id", map[string]int{"start": 0, "end": 2}, DefaultOptions()},
		{"negative id", map[string]int{"start": 1, "end": 2, "x": -4}, DefaultOptions()},
		{"duplicate id", map[string]int{"start": 1, "end": 2, "x": 2}, DefaultOptions()},
		{"missing start", map[string]int{"end": 2}, DefaultOptions()},
		{"missing end", map[string]int{"start": 1}, DefaultOptions()},
		{"missing unknown", map[string]int{"start": 1, "end": 2}, Options{Start: "start", End: "end", Unknown: "<unk>"}},
		{"same markers", map[string]int{"start": 1}, Options{Start: "start", End: "start"}},
		{"unnamed markers", map[string]int{"start": 1}, Options{}},
		{"empty word", map[string]int{"start": 1, "end": 2, "": 3}, DefaultOptions()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.index, tt.opts); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	index := testIndex()
	v, err := New(index, DefaultOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for word, id := range index {
		gotID, err := v.IDOf(word)
		if err != nil {
			t.Fatalf("IDOf(%q) failed: %v", word, err)
		}
		gotWord, err := v.WordOf(gotID)
		if err != nil {
			t.Fatalf("WordOf(%d) failed: %v", gotID, err)
		}
		if gotWord != word {
			t.Errorf("WordOf(IDOf(%q)) = %q", word, gotWord)
		}

		backWord, _ := v.WordOf(id)
		backID, _ := v.IDOf(backWord)
		if backID != id {
			t.Errorf("IDOf(WordOf(%d)) = %d", id, backID)
		}
	}
}

func TestLookupErrors(t *testing.T) {
	v, err := New(testIndex(), DefaultOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := v.IDOf("cat"); !errors.Is(err, ErrUnknownWord) {
		t.Errorf("IDOf(cat) error = %v, want ErrUnknownWord", err)
	}
	if _, err := v.WordOf(99); !errors.Is(err, ErrUnknownID) {
		t.Errorf("WordOf(99) error = %v, want ErrUnknownID", err)
	}
	if _, err := v.WordOf(PadID); !errors.Is(err, ErrUnknownID) {
		t.Errorf("WordOf(PadID) error = %v, want ErrUnknownID", err)
	}
}

func TestEncode(t *testing.T) {
	v, _ := New(testIndex(), DefaultOptions())
	got := v.Encode([]string{"start", "a", "cat", "dog"})
	want := []int{1, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Encode() = %v, want %v", got, want)
	}

	withUnk, _ := New(testIndex(), Options{Start: "start", End: "end", Unknown: "<unk>"})
	got = withUnk.Encode([]string{"start", "cat"})
	want = []int{1, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Encode() with unknown = %v, want %v", got, want)
	}
}

func TestWords(t *testing.T) {
	v, _ := New(testIndex(), DefaultOptions())
	want := []string{"start", "end", "a", "dog", "running", "<unk>"}
	if got := v.Words(); !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "word_index.json")
	if err := os.WriteFile(path, []byte(`{"start": 1, "end": 2, "dog": 3}`), 0644); err != nil {
		t.Fatalf("Failed to write index: %v", err)
	}

	v, err := Load(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if id, _ := v.IDOf("dog"); id != 3 {
		t.Errorf("IDOf(dog) = %d, want 3", id)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load("/nonexistent/word_index.json", DefaultOptions()); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	os.WriteFile(path, []byte("{not json"), 0644)
	if _, err := Load(path, DefaultOptions()); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
