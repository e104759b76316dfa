package observe

import (
	"context"
	"time"

	perrors "github.com/jmgilman/go/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records tool calls. Implementations are safe for concurrent use.
type Metrics interface {
	RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error)
}

// CatalogMetrics records what catalog lookups cost: fingerprint hits and
// misses, and the upstream calls the misses make.
type CatalogMetrics interface {
	RecordCacheLookup(ctx context.Context, operation string, hit bool)
	RecordUpstreamCall(ctx context.Context, operation string, duration time.Duration, err error)
}

// instruments creates instruments on one meter and keeps the first error,
// so a constructor checks once at the end.
type instruments struct {
	meter metric.Meter
	err   error
}

func (b *instruments) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if b.err == nil {
		b.err = err
	}
	return c
}

func (b *instruments) millis(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("ms"))
	if b.err == nil {
		b.err = err
	}
	return h
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type toolMetrics struct {
	calls    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the tool.exec.* instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*toolMetrics, error) {
	b := &instruments{meter: meter}
	m := &toolMetrics{
		calls:    b.counter("tool.exec.total", "Tool calls", "{call}"),
		failures: b.counter("tool.exec.errors", "Tool calls that failed or reported an error", "{error}"),
		duration: b.millis("tool.exec.duration_ms", "Tool call duration"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

func (m *toolMetrics) RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)
	m.calls.Add(ctx, 1, opt)
	if err != nil {
		m.failures.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, millis(duration), opt)
}

type catalogMetrics struct {
	hits     metric.Int64Counter
	misses   metric.Int64Counter
	calls    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewCatalogMetrics creates the catalog.cache.* and catalog.upstream.*
// instruments on meter.
func NewCatalogMetrics(meter metric.Meter) (CatalogMetrics, error) {
	b := &instruments{meter: meter}
	m := &catalogMetrics{
		hits:     b.counter("catalog.cache.hits", "Lookups answered from the cache", "{lookup}"),
		misses:   b.counter("catalog.cache.misses", "Lookups that went upstream", "{lookup}"),
		calls:    b.counter("catalog.upstream.calls", "Upstream catalog calls", "{call}"),
		failures: b.counter("catalog.upstream.errors", "Failed upstream catalog calls", "{error}"),
		duration: b.millis("catalog.upstream.duration_ms", "Upstream catalog call duration"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

func (m *catalogMetrics) RecordCacheLookup(ctx context.Context, operation string, hit bool) {
	counter := m.misses
	if hit {
		counter = m.hits
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("catalog.operation", operation)))
}

func (m *catalogMetrics) RecordUpstreamCall(ctx context.Context, operation string, duration time.Duration, err error) {
	op := attribute.String("catalog.operation", operation)
	m.calls.Add(ctx, 1, metric.WithAttributes(op))
	m.duration.Record(ctx, millis(duration), metric.WithAttributes(op))
	if err != nil {
		code := attribute.String("error.code", string(perrors.GetCode(err)))
		m.failures.Add(ctx, 1, metric.WithAttributes(op, code))
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordExecution(context.Context, ToolMeta, time.Duration, error)  {}
func (noopMetrics) RecordCacheLookup(context.Context, string, bool)                  {}
func (noopMetrics) RecordUpstreamCall(context.Context, string, time.Duration, error) {}

// NoopMetrics records nothing.
func NoopMetrics() Metrics { return noopMetrics{} }

// NoopCatalogMetrics records nothing.
func NoopCatalogMetrics() CatalogMetrics { return noopMetrics{} }
