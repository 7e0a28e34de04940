package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePaths(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputDir = "/abs/out"
	cfg.Observability.MetricsFile = "metrics.prom"

	paths, err := ResolvePaths(cfg, root)
	if err != nil {
		t.Fatalf("ResolvePaths failed: %v", err)
	}
	if paths.CallsDir != filepath.Join(root, "rfocxt", "callsandtypes") {
		t.Errorf("unexpected calls dir %s", paths.CallsDir)
	}
	if paths.OutputDir != "/abs/out" {
		t.Errorf("absolute output dir should be kept, got %s", paths.OutputDir)
	}
	if paths.HistoryPath != filepath.Join(root, "rfocxt", "history.db") {
		t.Errorf("unexpected history path %s", paths.HistoryPath)
	}
	if paths.MetricsFile != filepath.Join(root, "metrics.prom") {
		t.Errorf("unexpected metrics file %s", paths.MetricsFile)
	}
	if paths.ConfigFile != filepath.Join(root, DefaultFile) {
		t.Errorf("unexpected config file %s", paths.ConfigFile)
	}

	if _, err := ResolvePaths(cfg, " "); err == nil {
		t.Error("expected error for empty root")
	}
}

func TestProjectRoot_DoesNotClimbToAncestorManifest(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "vendor", "inner")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[package]\nname = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ProjectRoot(nested)
	if err != nil {
		t.Fatalf("ProjectRoot failed: %v", err)
	}
	if got != filepath.Clean(nested) {
		t.Errorf("expected %s, got %s", nested, got)
	}

	if _, err := ProjectRoot("  "); err == nil {
		t.Error("expected error for blank project path")
	}
}
