package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// ScriptedModel is a sequence model that selects Script[k] at decoding step k.
// The step is derived from the number of non-padding ids in the sequence, so
// the output depends only on its input.
type ScriptedModel struct {
	Dim       int
	VocabSize int
	Script    []int
	Default   int   // selected once the script is exhausted
	Err       error // returned from every Predict call when set

	mu        sync.Mutex
	Sequences [][]int
}

// FeatureDim implements the sequence model interface
func (m *ScriptedModel) FeatureDim() int { return m.Dim }

// Predict returns a one-hot distribution for the scripted id
func (m *ScriptedModel) Predict(ctx context.Context, feature []float32, sequence []int) ([]float32, error) {
	m.mu.Lock()
	m.Sequences = append(m.Sequences, append([]int(nil), sequence...))
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	step := -1
	for _, id := range sequence {
		if id != 0 {
			step++
		}
	}

	next := m.Default
	if step >= 0 && step < len(m.Script) {
		next = m.Script[step]
	}

	probs := make([]float32, m.VocabSize)
	for i := range probs {
		probs[i] = 0.001
	}
	if next >= 0 && next < len(probs) {
		probs[next] = 0.9
	}
	return probs, nil
}

// Calls returns the number of Predict calls
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sequences)
}

// FixedEmbedder returns the same feature for every image
type FixedEmbedder struct {
	Feature []float32
	Err     error
}

// FeatureDim implements the embedder interface
func (e *FixedEmbedder) FeatureDim() int { return len(e.Feature) }

// Embed returns the fixed feature
func (e *FixedEmbedder) Embed(pixels []float32) ([]float32, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return append([]float32(nil), e.Feature...), nil
}

// MockTranslator mocks a translation backend
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	Err          error // returned for every text when set

	mu    sync.Mutex
	Calls []string
}

// Name returns the backend name
func (m *MockTranslator) Name() string { return "mock" }

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, fmt.Sprintf("Translate: %s (%s->%s)", text, source, target))
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	return fmt.Sprintf("mock translation of %s", text), nil
}

// MockSpeechProvider writes fake audio data instead of calling a TTS service
type MockSpeechProvider struct {
	Data    []byte
	Err     error
	Partial bool // write a partial file before failing

	mu    sync.Mutex
	Calls []string
	Files []string
}

// Name returns the provider name
func (m *MockSpeechProvider) Name() string { return "mock" }

// IsAvailable always succeeds
func (m *MockSpeechProvider) IsAvailable() error { return nil }

// GenerateAudio writes Data to outputFile
func (m *MockSpeechProvider) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, fmt.Sprintf("TTS: %s (lang=%s)", text, language))
	m.Files = append(m.Files, outputFile)
	m.mu.Unlock()

	if m.Err != nil {
		if m.Partial {
			_ = os.WriteFile(outputFile, []byte{0xFF}, 0644)
		}
		return m.Err
	}

	data := m.Data
	if data == nil {
		data = GenerateAudioData()
	}
	return os.WriteFile(outputFile, data, 0644)
}

// MockPlayer records played files
type MockPlayer struct {
	Err error

	mu      sync.Mutex
	Played  []string
	Existed []bool
}

// Play records the file and whether it existed at play time
func (m *MockPlayer) Play(ctx context.Context, path string) error {
	_, statErr := os.Stat(path)

	m.mu.Lock()
	m.Played = append(m.Played, path)
	m.Existed = append(m.Existed, statErr == nil)
	m.mu.Unlock()

	return m.Err
}

// GenerateAudioData generates mock audio data
func GenerateAudioData() []byte {
	// Simple mock MP3 header
	return []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}
}
