package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"rfocxt/internal/core/errors"
	"rfocxt/internal/core/watcher"
	"rfocxt/internal/shared/util"
)

// Watch runs once, then rebuilds whenever sources or manifests change until
// ctx is cancelled. Rebuilds are throttled to one per watch.min_interval.
// Errors from rebuilds are logged; only the first run's error is returned.
func (a *App) Watch(ctx context.Context) error {
	if _, err := a.Run(ctx); err != nil {
		return err
	}

	changed := make(chan struct{}, 1)
	w, err := watcher.NewWatcher(a.Paths.ProjectRoot, a.Config.Watch.Debounce, a.watchExcludes(), func(paths []string) {
		a.Logger.Debug("sources changed", "files", len(paths), "first", paths[0])
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "start watcher")
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "watch project")
	}

	limiter := util.NewLimiter(a.Config.Watch.MinInterval)
	limiter.Spend()
	a.Logger.Info("watching for changes", "root", a.Paths.ProjectRoot)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			started := time.Now()
			if _, err := a.Run(ctx); err != nil {
				a.Logger.Error("rebuild failed", "error", err, "exit_code", errors.ExitCode(err))
				continue
			}
			a.Logger.Debug("rebuild finished", "elapsed", time.Since(started).Round(time.Millisecond))
		}
	}
}

// watchExcludes adds the directories and files the pipeline writes to the
// configured patterns, so a rebuild never observes its own output. Paths
// outside the project root are not watched anyway and are skipped.
func (a *App) watchExcludes() []string {
	out := append([]string(nil), a.Config.Watch.Exclude...)
	seen := make(map[string]bool, len(out))
	for _, p := range out {
		seen[p] = true
	}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, owned := range []struct {
		path string
		dir  bool
	}{
		{a.Paths.OutputDir, true},
		{a.Paths.CallsDir, true},
		{a.Paths.HistoryPath, false},
		{a.Paths.MetricsFile, false},
	} {
		if owned.path == "" {
			continue
		}
		rel, err := filepath.Rel(a.Paths.ProjectRoot, owned.path)
		if err != nil {
			continue
		}
		rel = util.NormalizePatternPath(filepath.ToSlash(rel))
		if rel == "" || rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		add(rel)
		if owned.dir {
			add(rel + "/**")
		} else {
			add(rel + "-*")
		}
	}
	return out
}
