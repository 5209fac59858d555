package model

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"
)

// Config locates the exported networks on disk
type Config struct {
	Dir          string
	EncoderFile  string
	DecoderFile  string
	MetadataFile string
	VocabFile    string
	LibraryPath  string // onnxruntime shared library; empty uses the platform default
}

// DefaultConfig returns the file layout written by the export script
func DefaultConfig(dir string) Config {
	return Config{
		Dir:          dir,
		EncoderFile:  "encoder.onnx",
		DecoderFile:  "decoder.onnx",
		MetadataFile: "model_metadata.json",
		VocabFile:    "word_index.json",
	}
}

// Runtime owns the ONNX environment and both network sessions
type Runtime struct {
	Metadata Metadata
	Encoder  *Encoder
	Decoder  *Decoder
}

// Open initialises ONNX Runtime and loads both networks
func Open(cfg Config, logger zerolog.Logger) (*Runtime, error) {
	log := logger.With().Str("component", "model").Logger()

	meta, err := LoadMetadata(filepath.Join(cfg.Dir, cfg.MetadataFile))
	if err != nil {
		return nil, err
	}

	if !ort.IsInitialized() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	encPath := filepath.Join(cfg.Dir, cfg.EncoderFile)
	log.Info().Str("path", encPath).Int("image_size", meta.ImageSize).Msg("loading encoder")
	enc, err := newEncoder(encPath, meta)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, err
	}

	decPath := filepath.Join(cfg.Dir, cfg.DecoderFile)
	log.Info().Str("path", decPath).Int("vocab_size", meta.VocabSize).Int("max_length", meta.MaxLength).Msg("loading decoder")
	dec, err := newDecoder(decPath, meta)
	if err != nil {
		enc.Close()
		ort.DestroyEnvironment()
		return nil, err
	}

	return &Runtime{Metadata: meta, Encoder: enc, Decoder: dec}, nil
}

// Close releases both sessions and the environment
func (r *Runtime) Close() {
	if r.Encoder != nil {
		r.Encoder.Close()
	}
	if r.Decoder != nil {
		r.Decoder.Close()
	}
	ort.DestroyEnvironment()
}

// Encoder runs the image embedding network. The session reuses its input
// and output tensors, so calls are serialised.
type Encoder struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	featureDim   int
}

func newEncoder(path string, meta Metadata) (*Encoder, error) {
	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.EncoderInputShape()...))
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.EncoderOutputShape()...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create encoder output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(path,
		meta.Encoder.Inputs, []string{meta.Encoder.Output},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create encoder session: %w", err)
	}

	return &Encoder{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		featureDim:   meta.FeatureDim,
	}, nil
}

// FeatureDim returns the length of produced feature vectors
func (e *Encoder) FeatureDim() int { return e.featureDim }

// Embed runs the network on one preprocessed NHWC image
func (e *Encoder) Embed(pixels []float32) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.inputTensor.GetData()
	if len(pixels) != len(in) {
		return nil, fmt.Errorf("encoder expects %d values, got %d", len(in), len(pixels))
	}
	copy(in, pixels)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("encoder inference failed: %w", err)
	}

	out := e.outputTensor.GetData()
	return append([]float32(nil), out...), nil
}

// Close destroys the session and its tensors
func (e *Encoder) Close() {
	if e.inputTensor != nil {
		e.inputTensor.Destroy()
	}
	if e.outputTensor != nil {
		e.outputTensor.Destroy()
	}
	if e.session != nil {
		e.session.Destroy()
	}
}

// Decoder runs the caption network: (feature, padded ids) -> next-word distribution
type Decoder struct {
	mu             sync.Mutex
	session        *ort.AdvancedSession
	featureTensor  *ort.Tensor[float32]
	sequenceTensor *ort.Tensor[float32]
	outputTensor   *ort.Tensor[float32]
	featureDim     int
	maxLength      int
}

func newDecoder(path string, meta Metadata) (*Decoder, error) {
	featureTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.EncoderOutputShape()...))
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder feature tensor: %w", err)
	}

	sequenceTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.SequenceShape()...))
	if err != nil {
		featureTensor.Destroy()
		return nil, fmt.Errorf("failed to create decoder sequence tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.DecoderOutputShape()...))
	if err != nil {
		featureTensor.Destroy()
		sequenceTensor.Destroy()
		return nil, fmt.Errorf("failed to create decoder output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(path,
		meta.Decoder.Inputs, []string{meta.Decoder.Output},
		[]ort.ArbitraryTensor{featureTensor, sequenceTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		featureTensor.Destroy()
		sequenceTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create decoder session: %w", err)
	}

	return &Decoder{
		session:        session,
		featureTensor:  featureTensor,
		sequenceTensor: sequenceTensor,
		outputTensor:   outputTensor,
		featureDim:     meta.FeatureDim,
		maxLength:      meta.MaxLength,
	}, nil
}

// FeatureDim returns the expected feature length
func (d *Decoder) FeatureDim() int { return d.featureDim }

// MaxLength returns the padded sequence length the network was exported with
func (d *Decoder) MaxLength() int { return d.maxLength }

// Predict returns the probability distribution for the next position.
// The Keras sequence input is float32, so ids are converted on copy.
func (d *Decoder) Predict(ctx context.Context, feature []float32, sequence []int) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(feature) != d.featureDim {
		return nil, fmt.Errorf("decoder expects %d feature values, got %d", d.featureDim, len(feature))
	}
	if len(sequence) != d.maxLength {
		return nil, fmt.Errorf("decoder expects %d sequence positions, got %d", d.maxLength, len(sequence))
	}

	copy(d.featureTensor.GetData(), feature)
	seq := d.sequenceTensor.GetData()
	for i, id := range sequence {
		seq[i] = float32(id)
	}

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("decoder inference failed: %w", err)
	}

	out := d.outputTensor.GetData()
	return append([]float32(nil), out...), nil
}

// Close destroys the session and its tensors
func (d *Decoder) Close() {
	if d.featureTensor != nil {
		d.featureTensor.Destroy()
	}
	if d.sequenceTensor != nil {
		d.sequenceTensor.Destroy()
	}
	if d.outputTensor != nil {
		d.outputTensor.Destroy()
	}
	if d.session != nil {
		d.session.Destroy()
	}
}
