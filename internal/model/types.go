package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata describes the exported networks
type Metadata struct {
	ImageSize  int         `json:"image_size"`
	FeatureDim int         `json:"feature_dim"`
	MaxLength  int         `json:"max_length"`
	VocabSize  int         `json:"vocab_size"`
	Encoder    TensorNames `json:"encoder"`
	Decoder    TensorNames `json:"decoder"`
}

// TensorNames lists the graph input and output names of one network
type TensorNames struct {
	Inputs []string `json:"inputs"`
	Output string   `json:"output"`
}

// LoadMetadata reads and validates model_metadata.json
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if err := meta.Validate(); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// Validate checks that all shapes and tensor names are present
func (m Metadata) Validate() error {
	if m.ImageSize <= 0 {
		return fmt.Errorf("metadata: image_size must be > 0, got %d", m.ImageSize)
	}
	if m.FeatureDim <= 0 {
		return fmt.Errorf("metadata: feature_dim must be > 0, got %d", m.FeatureDim)
	}
	if m.MaxLength <= 0 {
		return fmt.Errorf("metadata: max_length must be > 0, got %d", m.MaxLength)
	}
	if m.VocabSize <= 0 {
		return fmt.Errorf("metadata: vocab_size must be > 0, got %d", m.VocabSize)
	}
	if len(m.Encoder.Inputs) != 1 || m.Encoder.Output == "" {
		return fmt.Errorf("metadata: encoder needs exactly one input and an output name")
	}
	if len(m.Decoder.Inputs) != 2 || m.Decoder.Output == "" {
		return fmt.Errorf("metadata: decoder needs feature and sequence inputs and an output name")
	}
	return nil
}

// EncoderInputShape is NHWC, as exported from Keras
func (m Metadata) EncoderInputShape() []int64 {
	s := int64(m.ImageSize)
	return []int64{1, s, s, 3}
}

// EncoderOutputShape is one pooled feature vector
func (m Metadata) EncoderOutputShape() []int64 {
	return []int64{1, int64(m.FeatureDim)}
}

// SequenceShape is one padded id sequence
func (m Metadata) SequenceShape() []int64 {
	return []int64{1, int64(m.MaxLength)}
}

// DecoderOutputShape is one probability distribution over the vocabulary
func (m Metadata) DecoderOutputShape() []int64 {
	return []int64{1, int64(m.VocabSize)}
}
