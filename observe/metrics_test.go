package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	perrors "github.com/jmgilman/go/errors"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordExecution(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantErrors int64
	}{
		{"success", nil, 0},
		{"failure", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, mp := newTestMeter(t)
			m, err := NewMetrics(mp.Meter("test"))
			if err != nil {
				t.Fatalf("NewMetrics error = %v", err)
			}

			m.RecordExecution(context.Background(), ToolMeta{Namespace: "discogs", Name: "search_releases"}, 100*time.Millisecond, tt.err)

			rm := collect(t, reader)
			if got := sumValue(t, rm, "tool.exec.total"); got != 1 {
				t.Errorf("tool.exec.total = %d, want 1", got)
			}
			if got := sumValue(t, rm, "tool.exec.errors"); got != tt.wantErrors {
				t.Errorf("tool.exec.errors = %d, want %d", got, tt.wantErrors)
			}

			hist := findMetric(rm, "tool.exec.duration_ms")
			if hist == nil {
				t.Fatal("tool.exec.duration_ms not found")
			}
			data, ok := hist.Data.(metricdata.Histogram[float64])
			if !ok || len(data.DataPoints) == 0 || data.DataPoints[0].Sum != 100 {
				t.Errorf("unexpected histogram data: %+v", hist.Data)
			}
		})
	}
}

func TestCatalogMetrics(t *testing.T) {
	reader, mp := newTestMeter(t)
	m, err := NewCatalogMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewCatalogMetrics error = %v", err)
	}
	ctx := context.Background()

	m.RecordCacheLookup(ctx, "search", false)
	m.RecordCacheLookup(ctx, "search", true)
	m.RecordCacheLookup(ctx, "release", true)
	m.RecordUpstreamCall(ctx, "search", 20*time.Millisecond, nil)
	m.RecordUpstreamCall(ctx, "release", 5*time.Millisecond, perrors.New(perrors.CodeRateLimit, "slow down"))

	rm := collect(t, reader)
	checks := map[string]int64{
		"catalog.cache.hits":      2,
		"catalog.cache.misses":    1,
		"catalog.upstream.calls":  2,
		"catalog.upstream.errors": 1,
	}
	for name, want := range checks {
		if got := sumValue(t, rm, name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}

	errs := findMetric(rm, "catalog.upstream.errors").Data.(metricdata.Sum[int64])
	code, ok := errs.DataPoints[0].Attributes.Value("error.code")
	if !ok || code.AsString() != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("error.code = %v, want RATE_LIMIT_EXCEEDED", code.AsString())
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	reader, mp := newTestMeter(t)
	m, _ := NewMetrics(mp.Meter("test"))
	cm, _ := NewCatalogMetrics(mp.Meter("test"))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordExecution(context.Background(), ToolMeta{Name: "concurrent"}, time.Millisecond, nil)
			cm.RecordCacheLookup(context.Background(), "search", false)
		}()
	}
	wg.Wait()

	rm := collect(t, reader)
	if got := sumValue(t, rm, "tool.exec.total"); got != n {
		t.Errorf("tool.exec.total = %d, want %d", got, n)
	}
	if got := sumValue(t, rm, "catalog.cache.misses"); got != n {
		t.Errorf("catalog.cache.misses = %d, want %d", got, n)
	}
}
