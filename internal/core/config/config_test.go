// # internal/core/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
version = 1

[paths]
calls_dir = "mir/calls"
output_dir = "out"

[parse]
on_error = "Abort"
cache_entries = 64

[closure]
workers = 3
include = ["demo::api::**"]
exclude = ["**::tests::**"]

[emit]
bodies = "focal"
annotate = true

[history]
enabled = true

[watch]
debounce = "1s"

[observability]
metrics_file = "metrics.prom"
tracing = true
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Paths.CallsDir != "mir/calls" || cfg.Paths.OutputDir != "out" {
		t.Errorf("unexpected paths: %+v", cfg.Paths)
	}
	if cfg.Parse.OnError != OnErrorAbort {
		t.Errorf("expected on_error normalized to abort, got %q", cfg.Parse.OnError)
	}
	if cfg.Parse.CacheEntries != 64 {
		t.Errorf("expected cache_entries 64, got %d", cfg.Parse.CacheEntries)
	}
	if cfg.WorkerCount() != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.WorkerCount())
	}
	if len(cfg.Closure.Include) != 1 || len(cfg.Closure.Exclude) != 1 {
		t.Errorf("unexpected filters: %+v", cfg.Closure)
	}
	if cfg.Emit.Bodies != BodiesFocal || !cfg.Emit.Annotate {
		t.Errorf("unexpected emit: %+v", cfg.Emit)
	}
	if !cfg.History.Enabled || cfg.History.Path != "rfocxt/history.db" {
		t.Errorf("unexpected history: %+v", cfg.History)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected 1s debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.MinInterval != 2*time.Second {
		t.Errorf("expected default min interval, got %v", cfg.Watch.MinInterval)
	}
	if !cfg.Observability.Tracing || cfg.Observability.OTLPEndpoint != "localhost:4317" {
		t.Errorf("unexpected observability: %+v", cfg.Observability)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Paths.CallsDir != "rfocxt/callsandtypes" {
		t.Errorf("unexpected calls dir %q", cfg.Paths.CallsDir)
	}
	if cfg.Paths.OutputDir != "rfocxt/context" {
		t.Errorf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Parse.OnError != OnErrorSkip {
		t.Errorf("expected skip, got %q", cfg.Parse.OnError)
	}
	if cfg.Emit.Bodies != BodiesAll {
		t.Errorf("expected all bodies, got %q", cfg.Emit.Bodies)
	}
	if cfg.WorkerCount() < 1 {
		t.Errorf("expected at least one worker")
	}
	if len(cfg.Watch.Exclude) == 0 {
		t.Errorf("expected default watch excludes")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	if _, err := Load(writeConfig(t, "[paths\ncalls_dir=")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadOptional_MissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("LoadOptional failed: %v", err)
	}
	if cfg.Parse.OnError != OnErrorSkip {
		t.Errorf("expected defaults, got %+v", cfg.Parse)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RFOCXT_CLOSURE_WORKERS", "7")
	t.Setenv("RFOCXT_EMIT_BODIES", "focal")
	t.Setenv("RFOCXT_HISTORY_ENABLED", "true")
	t.Setenv("RFOCXT_WATCH_DEBOUNCE", "250ms")
	t.Setenv("RFOCXT_CLOSURE_EXCLUDE", "a::*, b::*")
	t.Setenv("RFOCXT_PARSE_CACHE_ENTRIES", "not-a-number")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.Closure.Workers != 7 {
		t.Errorf("expected 7 workers, got %d", cfg.Closure.Workers)
	}
	if cfg.Emit.Bodies != BodiesFocal {
		t.Errorf("expected focal, got %q", cfg.Emit.Bodies)
	}
	if !cfg.History.Enabled {
		t.Error("expected history enabled")
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.Watch.Debounce)
	}
	if len(cfg.Closure.Exclude) != 2 || cfg.Closure.Exclude[1] != "b::*" {
		t.Errorf("unexpected exclude %v", cfg.Closure.Exclude)
	}
	if cfg.Parse.CacheEntries != 512 {
		t.Errorf("invalid int override should be ignored, got %d", cfg.Parse.CacheEntries)
	}
}
