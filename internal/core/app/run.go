package app

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"rfocxt/internal/core/manifest"
	"rfocxt/internal/data/callsandtypes"
	"rfocxt/internal/data/history"
	"rfocxt/internal/engine/focal"
	"rfocxt/internal/engine/modtree"
	"rfocxt/internal/engine/symbols"
	"rfocxt/internal/shared/observability"
	"rfocxt/internal/ui/report"
)

// Summary describes one completed run.
type Summary struct {
	RunID     string
	Crate     string
	Modules   int
	Functions int
	Emitted   int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// Run builds every focal context of the project. Configuration failures
// (manifest, entry files, mod paths, and parse errors under the abort
// policy) are returned; per-function failures are logged and counted.
func (a *App) Run(ctx context.Context) (Summary, error) {
	ctx, span := observability.Tracer.Start(ctx, "rfocxt.run")
	defer span.End()
	started := time.Now()

	m, err := manifest.Load(a.Paths.ProjectRoot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "manifest")
		return Summary{}, err
	}
	span.SetAttributes(attribute.String("crate", m.CrateName))

	crate, err := a.resolve(ctx, m)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve")
		return Summary{}, err
	}
	tables := a.tables(ctx, crate)

	targets := make([]*symbols.FunctionEntry, 0, len(tables.Functions))
	for _, fn := range tables.Targets() {
		if a.selected(fn.Canonical) {
			targets = append(targets, fn)
		}
	}

	summary := Summary{Crate: m.CrateName, Modules: len(crate.Nodes), Functions: len(targets)}
	rows, err := a.closures(ctx, tables, targets, &summary)
	summary.Duration = time.Since(started)
	if err != nil {
		return summary, err
	}

	if path, err := report.WriteIndex(a.Paths.OutputDir, rows); err != nil {
		a.Logger.Warn("failed to write context index", "path", path, "error", err)
	}
	if path, err := report.WriteModTrees(a.Paths.OutputDir, a.Paths.ProjectRoot, crate); err != nil {
		a.Logger.Warn("failed to write module trees", "path", path, "error", err)
	}
	summary.RunID = a.record(summary, started, rows)
	heap := observability.HeapAllocMB()
	if err := observability.WriteMetrics(a.Paths.MetricsFile); err != nil {
		a.Logger.Warn("failed to write metrics file", "path", a.Paths.MetricsFile, "error", err)
	}

	a.Logger.Info("focal contexts built",
		"crate", summary.Crate,
		"modules", summary.Modules,
		"functions", summary.Functions,
		"emitted", summary.Emitted,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", summary.Duration.Round(time.Millisecond),
		"heap_mb", heap,
	)
	return summary, nil
}

func (a *App) resolve(ctx context.Context, m *manifest.Manifest) (*modtree.Crate, error) {
	_, span := observability.Tracer.Start(ctx, "rfocxt.resolve")
	defer span.End()
	crate, err := modtree.NewResolver(a.loader, a.resolverOptions()).Build(m.CrateName, m.Entries)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("scopes", len(crate.Nodes)))
	return crate, nil
}

func (a *App) tables(ctx context.Context, crate *modtree.Crate) *symbols.Tables {
	_, span := observability.Tracer.Start(ctx, "rfocxt.tables")
	defer span.End()
	t := symbols.Build(crate, a.Logger)
	span.SetAttributes(
		attribute.Int("functions", len(t.Functions)),
		attribute.Int("types", len(t.Types)),
		attribute.Int("collisions", t.Collisions),
	)
	return t
}

// closures runs the closure stage on a bounded worker pool. Each worker owns
// its closure and writes only under its function's output directory.
func (a *App) closures(ctx context.Context, tables *symbols.Tables, targets []*symbols.FunctionEntry, summary *Summary) ([]report.IndexRow, error) {
	start := time.Now()
	defer func() {
		observability.StageDuration.WithLabelValues("closure").Observe(time.Since(start).Seconds())
	}()

	engine := focal.NewEngine(tables, a.engineOptions())
	store := callsandtypes.NewStore(a.Paths.CallsDir)
	writer := callsandtypes.NewWriter(a.Paths.OutputDir)

	var (
		mu   sync.Mutex
		rows []report.IndexRow
	)
	count := func(outcome string, row *report.IndexRow) {
		observability.FunctionsTotal.WithLabelValues(outcome).Inc()
		mu.Lock()
		defer mu.Unlock()
		switch outcome {
		case observability.OutcomeEmitted:
			summary.Emitted++
			rows = append(rows, *row)
		case observability.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.WorkerCount())
	for _, fn := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rec, ok, err := store.Load(fn.Canonical)
			if err != nil {
				a.Logger.Warn("unreadable calls record", "function", fn.Canonical, "error", err)
				count(observability.OutcomeFailed, nil)
				return nil
			}
			if !ok {
				a.Logger.Debug("no calls record, skipping", "function", fn.Canonical, "path", store.Path(fn.Canonical))
				count(observability.OutcomeSkipped, nil)
				return nil
			}

			res := engine.Run(gctx, fn, rec)
			observability.ClosureSize.Observe(float64(res.Size))
			dir, err := writer.Write(fn.Canonical, res.Source, res.Record)
			if err != nil {
				a.Logger.Warn("failed to write focal context", "function", fn.Canonical, "error", err)
				count(observability.OutcomeFailed, nil)
				return nil
			}
			count(observability.OutcomeEmitted, &report.IndexRow{
				Function:   fn.Canonical,
				Dir:        a.relativeOutput(dir),
				Types:      len(res.Record.Types),
				Functions:  len(res.Record.Calls),
				Unresolved: len(res.Record.Unresolved),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rows, err
	}
	return rows, ctx.Err()
}

// record stores the run in the history database when enabled. History
// failures never fail the run.
func (a *App) record(summary Summary, started time.Time, rows []report.IndexRow) string {
	if a.history == nil {
		return ""
	}
	id, err := a.history.SaveRun(history.Run{
		Project:    a.Paths.ProjectRoot,
		Crate:      summary.Crate,
		StartedAt:  started.UTC(),
		FinishedAt: started.Add(summary.Duration).UTC(),
		Modules:    summary.Modules,
		Functions:  summary.Functions,
		Emitted:    summary.Emitted,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
	})
	if err != nil {
		a.Logger.Warn("failed to record run history", "path", a.history.Path(), "error", err)
		return ""
	}
	contexts := make([]history.Context, 0, len(rows))
	for _, row := range rows {
		contexts = append(contexts, history.Context{
			Function:   row.Function,
			Types:      row.Types,
			Functions:  row.Functions,
			Unresolved: row.Unresolved,
		})
	}
	if err := a.history.SaveContexts(id, contexts); err != nil {
		a.Logger.Warn("failed to record context history", "run", id, "error", err)
	}
	return id
}

func (a *App) relativeOutput(dir string) string {
	rel, err := filepath.Rel(a.Paths.OutputDir, dir)
	if err != nil {
		return filepath.ToSlash(dir)
	}
	return filepath.ToSlash(rel)
}
