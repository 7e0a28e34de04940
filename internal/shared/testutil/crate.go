// Package testutil writes throwaway crates for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree writes files (slash separated paths relative to a fresh temp
// dir) and returns the dir.
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

// Manifest returns a minimal Cargo.toml for a package called name.
func Manifest(name string) string {
	return "[package]\nname = \"" + name + "\"\nversion = \"0.1.0\"\nedition = \"2021\"\n"
}
