package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

const (
	// PadID is the identifier used to pad id sequences. It never maps to a word.
	PadID = 0

	// DefaultStart and DefaultEnd are the marker words the shipped model was trained with
	DefaultStart = "start"
	DefaultEnd   = "end"
)

var (
	// ErrUnknownWord is returned by IDOf for words that are not registered
	ErrUnknownWord = errors.New("unknown word")

	// ErrUnknownID is returned by WordOf for identifiers that are not registered
	ErrUnknownID = errors.New("unknown identifier")
)

// Vocabulary maps words to identifiers and back. It is read-only after
// construction and safe for concurrent use.
type Vocabulary struct {
	ids   map[string]int
	words map[int]string

	startID int
	endID   int
	unkID   int // PadID when the vocabulary has no unknown-word entry
}

// Options names the reserved words inside the index
type Options struct {
	Start   string
	End     string
	Unknown string // optional
}

// DefaultOptions returns the marker names used by the shipped tokenizer
func DefaultOptions() Options {
	return Options{Start: DefaultStart, End: DefaultEnd}
}

// New builds a vocabulary from a word index and precomputes the reverse index.
func New(index map[string]int, opts Options) (*Vocabulary, error) {
	if opts.Start == "" || opts.End == "" {
		return nil, fmt.Errorf("start and end markers must be named")
	}
	if opts.Start == opts.End {
		return nil, fmt.Errorf("start and end markers must differ")
	}

	v := &Vocabulary{
		ids:   make(map[string]int, len(index)),
		words: make(map[int]string, len(index)),
		unkID: PadID,
	}

	for word, id := range index {
		if word == "" {
			return nil, fmt.Errorf("empty word registered with id %d", id)
		}
		if id < 0 {
			return nil, fmt.Errorf("word %q has negative id %d", word, id)
		}
		if id == PadID {
			return nil, fmt.Errorf("word %q uses the reserved padding id %d", word, PadID)
		}
		if other, ok := v.words[id]; ok {
			return nil, fmt.Errorf("id %d registered for both %q and %q", id, other, word)
		}
		v.ids[word] = id
		v.words[id] = word
	}

	var ok bool
	if v.startID, ok = v.ids[opts.Start]; !ok {
		return nil, fmt.Errorf("start marker %q missing from index", opts.Start)
	}
	if v.endID, ok = v.ids[opts.End]; !ok {
		return nil, fmt.Errorf("end marker %q missing from index", opts.End)
	}
	if opts.Unknown != "" {
		if v.unkID, ok = v.ids[opts.Unknown]; !ok {
			return nil, fmt.Errorf("unknown-word marker %q missing from index", opts.Unknown)
		}
	}

	return v, nil
}

// Load reads a JSON word index ({"word": id, ...}) as exported from the
// training tokenizer.
func Load(path string, opts Options) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}

	var index map[string]int
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary %s: %w", path, err)
	}

	return New(index, opts)
}

// IDOf returns the identifier registered for word
func (v *Vocabulary) IDOf(word string) (int, error) {
	id, ok := v.ids[word]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}
	return id, nil
}

// WordOf returns the word registered for id
func (v *Vocabulary) WordOf(id int) (string, error) {
	word, ok := v.words[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return word, nil
}

// Encode maps words to identifiers. Words outside the vocabulary map to the
// unknown-word id when one is configured and are dropped otherwise.
func (v *Vocabulary) Encode(words []string) []int {
	ids := make([]int, 0, len(words))
	for _, w := range words {
		if id, ok := v.ids[w]; ok {
			ids = append(ids, id)
		} else if v.unkID != PadID {
			ids = append(ids, v.unkID)
		}
	}
	return ids
}

// StartID returns the start marker identifier
func (v *Vocabulary) StartID() int { return v.startID }

// EndID returns the end marker identifier
func (v *Vocabulary) EndID() int { return v.endID }

// StartWord returns the start marker word
func (v *Vocabulary) StartWord() string { return v.words[v.startID] }

// UnknownID returns the unknown-word identifier and whether one is configured
func (v *Vocabulary) UnknownID() (int, bool) {
	return v.unkID, v.unkID != PadID
}

// Size returns the number of registered words
func (v *Vocabulary) Size() int { return len(v.ids) }

// Words returns all registered words ordered by identifier
func (v *Vocabulary) Words() []string {
	ids := make([]int, 0, len(v.words))
	for id := range v.words {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	words := make([]string, len(ids))
	for i, id := range ids {
		words[i] = v.words[id]
	}
	return words
}
