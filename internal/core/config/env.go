package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: RFOCXT_[SECTION]_[KEY] (e.g., RFOCXT_CLOSURE_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.CallsDir, "RFOCXT_PATHS_CALLS_DIR")
	setEnvString(&cfg.Paths.OutputDir, "RFOCXT_PATHS_OUTPUT_DIR")

	// Parse
	setEnvString(&cfg.Parse.OnError, "RFOCXT_PARSE_ON_ERROR")
	setEnvInt(&cfg.Parse.CacheEntries, "RFOCXT_PARSE_CACHE_ENTRIES")

	// Closure
	setEnvInt(&cfg.Closure.Workers, "RFOCXT_CLOSURE_WORKERS")
	setEnvList(&cfg.Closure.Include, "RFOCXT_CLOSURE_INCLUDE")
	setEnvList(&cfg.Closure.Exclude, "RFOCXT_CLOSURE_EXCLUDE")

	// Emit
	setEnvString(&cfg.Emit.Bodies, "RFOCXT_EMIT_BODIES")
	setEnvBool(&cfg.Emit.Annotate, "RFOCXT_EMIT_ANNOTATE")

	// History
	setEnvBool(&cfg.History.Enabled, "RFOCXT_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "RFOCXT_HISTORY_PATH")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "RFOCXT_WATCH_DEBOUNCE")
	setEnvDuration(&cfg.Watch.MinInterval, "RFOCXT_WATCH_MIN_INTERVAL")

	// Observability
	setEnvString(&cfg.Observability.MetricsFile, "RFOCXT_OBSERVABILITY_METRICS_FILE")
	setEnvBool(&cfg.Observability.Tracing, "RFOCXT_OBSERVABILITY_TRACING")
	setEnvString(&cfg.Observability.OTLPEndpoint, "RFOCXT_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}

// setEnvList splits a comma separated value.
func setEnvList(target *[]string, key string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	slog.Debug("applying env override", "key", key, "value", val)
	*target = out
}
