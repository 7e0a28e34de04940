package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks a defaulted configuration.
func Validate(cfg *Config) error {
	validators := []func(*Config) error{
		validateVersion,
		validateParse,
		validateClosure,
		validateEmit,
		validateHistory,
		validateWatch,
	}
	for _, v := range validators {
		if err := v(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateParse(cfg *Config) error {
	mode := strings.ToLower(strings.TrimSpace(cfg.Parse.OnError))
	if mode != OnErrorSkip && mode != OnErrorAbort {
		return fmt.Errorf("parse.on_error must be one of: skip, abort")
	}
	cfg.Parse.OnError = mode
	return nil
}

func validateClosure(cfg *Config) error {
	if cfg.Closure.Workers < 0 {
		return fmt.Errorf("closure.workers must be >= 0, got %d", cfg.Closure.Workers)
	}
	if err := validateGlobs("closure.include", cfg.Closure.Include); err != nil {
		return err
	}
	return validateGlobs("closure.exclude", cfg.Closure.Exclude)
}

func validateEmit(cfg *Config) error {
	mode := strings.ToLower(strings.TrimSpace(cfg.Emit.Bodies))
	if mode != BodiesAll && mode != BodiesFocal {
		return fmt.Errorf("emit.bodies must be one of: all, focal")
	}
	cfg.Emit.Bodies = mode
	return nil
}

func validateHistory(cfg *Config) error {
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be > 0")
	}
	if cfg.Watch.MinInterval <= 0 {
		return fmt.Errorf("watch.min_interval must be > 0")
	}
	return validateGlobs("watch.exclude", cfg.Watch.Exclude)
}

func validateGlobs(field string, patterns []string) error {
	for i, p := range patterns {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%s[%d] must not be empty", field, i)
		}
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("%s[%d] invalid glob %q: %w", field, i, p, err)
		}
	}
	return nil
}
