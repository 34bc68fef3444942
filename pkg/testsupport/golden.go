// Package testsupport holds helpers shared by package tests: golden files
// and JSON comparison.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateEnv names the variable that makes golden helpers rewrite files.
const UpdateEnv = "UPDATE_GOLDENS"

// GoldenPath resolves name inside the calling package's testdata directory.
func GoldenPath(name string) string {
	return filepath.Join("testdata", name)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareJSON decodes both documents and returns a diff of their contents,
// ignoring key order and whitespace.
func CompareJSON(t *testing.T, want, got []byte) string {
	t.Helper()
	var w, g any
	if err := json.Unmarshal(want, &w); err != nil {
		t.Fatalf("decode golden: %v", err)
	}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return cmp.Diff(w, g)
}

// AssertJSONGolden marshals value and compares it with the golden file at
// name under testdata.
func AssertJSONGolden(t *testing.T, name string, value any) {
	t.Helper()
	got, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got = append(got, '\n')
	path := GoldenPath(name)
	if WriteMaybeGolden(t, path, got) {
		return
	}
	if diff := CompareJSON(t, MustReadGolden(t, path), got); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
	}
}
