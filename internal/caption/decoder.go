package caption

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/captionvoice/internal/feature"
	"codeberg.org/snonux/captionvoice/internal/vocab"
)

// MaxLength bounds the decoding loop and the padded sequence length
const MaxLength = 32

var (
	// ErrInvalidFeature is returned when the feature does not match the model
	ErrInvalidFeature = errors.New("invalid feature vector")

	// ErrInference is returned when the sequence model fails to produce a distribution
	ErrInference = errors.New("sequence model inference failed")
)

// SequenceModel predicts the next-word distribution for a padded id sequence
type SequenceModel interface {
	Predict(ctx context.Context, feature []float32, sequence []int) ([]float32, error)
	FeatureDim() int
}

// Decoder bundles the model, vocabulary and length bound for repeated use
type Decoder struct {
	model     SequenceModel
	vocab     *vocab.Vocabulary
	maxLength int
	log       zerolog.Logger
}

// NewDecoder creates a decoder
func NewDecoder(model SequenceModel, v *vocab.Vocabulary, maxLength int, logger zerolog.Logger) *Decoder {
	return &Decoder{
		model:     model,
		vocab:     v,
		maxLength: maxLength,
		log:       logger.With().Str("component", "caption").Logger(),
	}
}

// Vocabulary returns the decoder's vocabulary
func (d *Decoder) Vocabulary() *vocab.Vocabulary { return d.vocab }

// MaxLength returns the decoding bound
func (d *Decoder) MaxLength() int { return d.maxLength }

// Decode runs greedy search for feat and returns the caption words
func (d *Decoder) Decode(ctx context.Context, feat feature.Vector) ([]string, error) {
	words, err := Decode(ctx, d.model, d.vocab, feat, d.maxLength)
	if err != nil {
		return nil, err
	}
	d.log.Debug().Int("words", len(words)).Strs("caption", words).Msg("decoded caption")
	return words, nil
}

// Decode generates at most maxLength-1 words. Each step feeds the pre-padded
// sequence to the model and appends the most probable word until the end
// marker or an id without a word is selected. The start marker plus the
// generated words never exceed maxLength positions, so nothing is truncated
// when padding.
func Decode(ctx context.Context, model SequenceModel, v *vocab.Vocabulary, feat feature.Vector, maxLength int) ([]string, error) {
	if feat.Len() != model.FeatureDim() {
		return nil, fmt.Errorf("%w: got %d values, model expects %d",
			ErrInvalidFeature, feat.Len(), model.FeatureDim())
	}
	if maxLength < 1 {
		return nil, fmt.Errorf("maxLength must be >= 1, got %d", maxLength)
	}

	values := feat.Values()
	generated := []string{v.StartWord()}

	for i := 0; i < maxLength && len(generated) < maxLength; i++ {
		seq := PadSequence(v.Encode(generated), maxLength)

		probs, err := model.Predict(ctx, values, seq)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInference, err)
		}

		id, ok := Argmax(probs)
		if !ok {
			return nil, fmt.Errorf("%w: empty distribution", ErrInference)
		}
		if id == v.EndID() {
			break
		}
		word, err := v.WordOf(id)
		if err != nil {
			break
		}
		generated = append(generated, word)
	}

	return generated[1:], nil
}

// PadSequence left-pads ids with vocab.PadID to length n, keeping the last
// n ids when the sequence is longer.
func PadSequence(ids []int, n int) []int {
	if len(ids) > n {
		ids = ids[len(ids)-n:]
	}
	out := make([]int, n)
	copy(out[n-len(ids):], ids)
	return out
}

// Argmax returns the index of the strictly highest value. Ties resolve to the
// lowest index and NaN never wins.
func Argmax(probs []float32) (int, bool) {
	best := -1
	var bestVal float32
	for i, p := range probs {
		if math.IsNaN(float64(p)) {
			continue
		}
		if best < 0 || p > bestVal {
			best = i
			bestVal = p
		}
	}
	return best, best >= 0
}
