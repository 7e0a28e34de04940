package observability

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteMetrics(t *testing.T) {
	HeapAllocMB()
	FunctionsTotal.WithLabelValues(OutcomeEmitted).Inc()

	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := WriteMetrics(path); err != nil {
		t.Fatalf("write metrics: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, name := range []string{"rfocxt_heap_alloc_bytes", `rfocxt_functions_total{outcome="emitted"}`} {
		if !strings.Contains(string(data), name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}

func TestWriteMetrics_EmptyPathIsNoop(t *testing.T) {
	if err := WriteMetrics(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), false, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}

	_, span := Tracer.Start(context.Background(), "rfocxt.test")
	span.End()
}
