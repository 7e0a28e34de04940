package config

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads path, fills defaults, applies RFOCXT_* overrides and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "key", key.String(), "file", path)
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOptional behaves like Load but falls back to defaults when path does
// not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		ApplyEnvOverrides(cfg)
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.CallsDir) == "" {
		cfg.Paths.CallsDir = "rfocxt/callsandtypes"
	}
	if strings.TrimSpace(cfg.Paths.OutputDir) == "" {
		cfg.Paths.OutputDir = "rfocxt/context"
	}

	if strings.TrimSpace(cfg.Parse.OnError) == "" {
		cfg.Parse.OnError = OnErrorSkip
	}
	if cfg.Parse.CacheEntries == 0 {
		cfg.Parse.CacheEntries = 512
	}

	if strings.TrimSpace(cfg.Emit.Bodies) == "" {
		cfg.Emit.Bodies = BodiesAll
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "rfocxt/history.db"
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MinInterval == 0 {
		cfg.Watch.MinInterval = 2 * time.Second
	}
	if len(cfg.Watch.Exclude) == 0 {
		cfg.Watch.Exclude = []string{"target/**", ".git/**", "rfocxt/**"}
	}

	if strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		cfg.Observability.OTLPEndpoint = "localhost:4317"
	}
}

// WorkerCount resolves Closure.Workers.
func (c *Config) WorkerCount() int {
	if c.Closure.Workers > 0 {
		return c.Closure.Workers
	}
	return runtime.NumCPU()
}
