package report

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestWriteDiagnostics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := WriteDiagnostics(dir, Diagnostics{
		MerchantRef: "mref-1",
		Currency:    "USD",
		Amount:      91,
		LastState:   "POLLING",
		Error:       "something unexpected",
	})
	if err != nil {
		t.Fatalf("WriteDiagnostics failed: %v", err)
	}

	if !strings.HasPrefix(path, dir) {
		t.Errorf("diagnostics written outside %s: %s", dir, path)
	}
	if !strings.Contains(path, "mref-1") {
		t.Errorf("file name should carry the merchant ref: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var d Diagnostics
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("diagnostics are not valid JSON: %v", err)
	}
	if d.Error != "something unexpected" {
		t.Errorf("wrong error detail: %q", d.Error)
	}
	if d.CapturedAt.IsZero() {
		t.Error("captured timestamp missing")
	}
}

func TestWriteDiagnosticsCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir() + "/nested/diagnostics"
	if _, err := WriteDiagnostics(dir, Diagnostics{MerchantRef: "mref-2"}); err != nil {
		t.Fatalf("WriteDiagnostics failed: %v", err)
	}
}
