package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Diagnostics is the payload persisted when a run fails in a way the
// error taxonomy does not classify.
type Diagnostics struct {
	MerchantRef string    `json:"merchantRef"`
	Currency    string    `json:"currency"`
	Amount      int64     `json:"amount"`
	LastState   string    `json:"lastState"`
	Error       string    `json:"error"`
	CapturedAt  time.Time `json:"capturedAt"`
}

// WriteDiagnostics dumps full failure detail to dir and returns the
// file path. Callers surface only the path, never the raw payload.
func WriteDiagnostics(dir string, d Diagnostics) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create diagnostics directory: %w", err)
	}

	d.CapturedAt = time.Now().UTC()
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal diagnostics: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", d.CapturedAt.Format("20060102T150405"), d.MerchantRef)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write diagnostics: %w", err)
	}

	return path, nil
}
