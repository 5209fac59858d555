package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// LibreBackend calls a LibreTranslate compatible server
type LibreBackend struct {
	base   string
	apiKey string
	http   *http.Client
}

// NewLibreBackend creates a LibreTranslate backend. apiKey is optional.
func NewLibreBackend(base, apiKey string, timeout time.Duration) *LibreBackend {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LibreBackend{
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

// Name returns the backend name
func (b *LibreBackend) Name() string { return "libretranslate" }

// Translate posts a LibreTranslate payload (q, source, target, format)
func (b *LibreBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	if b.base == "" {
		return "", fmt.Errorf("LibreTranslate URL not configured")
	}

	payload := map[string]any{
		"q":      text,
		"source": source,
		"target": target,
		"format": "text",
	}
	if b.apiKey != "" {
		payload["api_key"] = b.apiKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("translation http %d for target %s", resp.StatusCode, target)
	}

	var lr struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("failed to decode translation response: %w", err)
	}

	return strings.TrimSpace(lr.TranslatedText), nil
}
