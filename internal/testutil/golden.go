// Package testutil provides testing utilities for the Nautex CLI.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

// Run tests with -update to rewrite golden files from current output.
var update = flag.Bool("update", false, "update golden files")

// GoldenPath returns the path of a golden file under testdata.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", filename)
}

// AssertGolden compares got against the named golden file, or rewrites the
// file when the -update flag is set.
func AssertGolden(t *testing.T, got, goldenFile string) {
	t.Helper()

	path := GoldenPath(goldenFile)

	if *update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create testdata directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("update golden file %s: %v", path, err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("golden file %s does not exist; run with -update to create it", path)
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	if got != string(want) {
		t.Errorf("output mismatch for %s\n\ngot:\n%s\n\nwant:\n%s\n\nrun with -update to refresh golden files", path, got, string(want))
	}
}

// AssertGoldenBytes is AssertGolden for byte slices.
func AssertGoldenBytes(t *testing.T, got []byte, goldenFile string) {
	t.Helper()
	AssertGolden(t, string(got), goldenFile)
}

// ReadGolden returns the contents of a golden file, or an empty string if
// the file does not exist.
func ReadGolden(t *testing.T, goldenFile string) string {
	t.Helper()

	data, err := os.ReadFile(GoldenPath(goldenFile))
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", goldenFile, err)
	}
	return string(data)
}
