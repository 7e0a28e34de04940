package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot string
	ConfigFile  string
	CallsDir    string
	OutputDir   string
	HistoryPath string
	MetricsFile string
}

// ResolvePaths anchors every relative path of cfg at projectRoot.
func ResolvePaths(cfg *Config, projectRoot string) (ResolvedPaths, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return ResolvedPaths{}, fmt.Errorf("project root must not be empty")
	}
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return ResolvedPaths{}, err
	}

	resolved := ResolvedPaths{
		ProjectRoot: filepath.Clean(root),
		ConfigFile:  filepath.Join(root, DefaultFile),
		CallsDir:    ResolveRelative(root, cfg.Paths.CallsDir),
		OutputDir:   ResolveRelative(root, cfg.Paths.OutputDir),
		HistoryPath: ResolveRelative(root, cfg.History.Path),
	}
	if metrics := strings.TrimSpace(cfg.Observability.MetricsFile); metrics != "" {
		resolved.MetricsFile = ResolveRelative(root, metrics)
	}
	return resolved, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// ProjectRoot returns the absolute crate directory for candidate. Parent
// directories are never searched, so a directory without Cargo.toml is
// reported by the manifest loader.
func ProjectRoot(candidate string) (string, error) {
	if strings.TrimSpace(candidate) == "" {
		return "", fmt.Errorf("project path must not be empty")
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
