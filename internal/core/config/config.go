package config

import (
	"time"
)

const (
	DefaultFile = "rfocxt.toml"

	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"

	BodiesAll   = "all"
	BodiesFocal = "focal"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Parse         Parse         `toml:"parse"`
	Closure       Closure       `toml:"closure"`
	Emit          Emit          `toml:"emit"`
	History       History       `toml:"history"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	// CallsDir holds the extractor records, one <canonical>.json per function.
	CallsDir  string `toml:"calls_dir"`
	OutputDir string `toml:"output_dir"`
}

type Parse struct {
	OnError      string `toml:"on_error"`
	CacheEntries int    `toml:"cache_entries"`
}

type Closure struct {
	// Workers bounds the closure worker pool; 0 means one per CPU.
	Workers int      `toml:"workers"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type Emit struct {
	Bodies   string `toml:"bodies"`
	Annotate bool   `toml:"annotate"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	MinInterval time.Duration `toml:"min_interval"`
	Exclude     []string      `toml:"exclude"`
}

type Observability struct {
	MetricsFile  string `toml:"metrics_file"`
	Tracing      bool   `toml:"tracing"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
