package observability

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rfocxt_parse_duration_seconds",
		Help:    "Time spent parsing a Rust source file.",
		Buckets: prometheus.DefBuckets,
	})

	FilesParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rfocxt_files_parsed_total",
		Help: "Source files loaded, by cache result.",
	}, []string{"cache"})

	ModulesResolved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rfocxt_modules_resolved",
		Help: "Module tree nodes built in the last run, function scopes included.",
	})

	SymbolCollisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rfocxt_symbol_collisions_total",
		Help: "Canonical names declared more than once; the last declaration wins.",
	})

	FunctionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rfocxt_functions_total",
		Help: "Functions processed by the closure stage, by outcome.",
	}, []string{"outcome"})

	ClosureSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rfocxt_closure_size",
		Help:    "Declarations emitted per focal context.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rfocxt_stage_seconds",
		Help:    "Time spent in each pipeline stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rfocxt_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	HeapAllocBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rfocxt_heap_alloc_bytes",
		Help: "Heap in use at the end of the last run.",
	})
)

const (
	OutcomeEmitted = "emitted"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// WriteMetrics dumps the default registry in text exposition format.
func WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// HeapAllocMB samples the live heap, records it on HeapAllocBytes and
// returns it in MiB for log lines.
func HeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	HeapAllocBytes.Set(float64(m.Alloc))
	return m.Alloc / 1024 / 1024
}
