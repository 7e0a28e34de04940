package app

import (
	"fmt"
	"log/slog"

	"github.com/gobwas/glob"

	"rfocxt/internal/core/config"
	"rfocxt/internal/data/history"
	"rfocxt/internal/engine/focal"
	"rfocxt/internal/engine/modtree"
	"rfocxt/internal/engine/parser"
)

// App wires the pipeline for one project: manifest, module tree, symbol
// tables and the closure worker pool.
type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths
	Logger *slog.Logger

	loader  *parser.Loader
	history *history.Store

	include []glob.Glob
	exclude []glob.Glob
}

func New(cfg *config.Config, paths config.ResolvedPaths, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loader, err := parser.NewLoader(parser.NewParser(), cfg.Parse.CacheEntries)
	if err != nil {
		return nil, err
	}
	include, err := compileGlobs(cfg.Closure.Include, "include")
	if err != nil {
		return nil, err
	}
	exclude, err := compileGlobs(cfg.Closure.Exclude, "exclude")
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		loader:  loader,
		include: include,
		exclude: exclude,
	}
	if cfg.History.Enabled {
		store, err := history.Open(paths.HistoryPath)
		if err != nil {
			return nil, err
		}
		a.history = store
	}
	return a, nil
}

func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}

// compileGlobs compiles function-name patterns. `*` stays within one path
// segment and `**` crosses `::`.
func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, ':')
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// selected applies the include and exclude filters to a canonical name.
func (a *App) selected(canonical string) bool {
	if len(a.include) > 0 {
		matched := false
		for _, g := range a.include {
			if g.Match(canonical) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, g := range a.exclude {
		if g.Match(canonical) {
			return false
		}
	}
	return true
}

func (a *App) resolverOptions() modtree.Options {
	policy := modtree.SkipOnParseError
	if a.Config.Parse.OnError == config.OnErrorAbort {
		policy = modtree.AbortOnParseError
	}
	return modtree.Options{OnParseError: policy, Logger: a.Logger}
}

func (a *App) engineOptions() focal.Options {
	bodies := focal.BodiesAll
	if a.Config.Emit.Bodies == config.BodiesFocal {
		bodies = focal.BodiesFocal
	}
	return focal.Options{Bodies: bodies, Annotate: a.Config.Emit.Annotate}
}
