package observe

import (
	"context"
	"time"
)

// ExecuteFunc runs one tool call.
type ExecuteFunc func(ctx context.Context, tool ToolMeta, input any) (any, error)

// Failure is implemented by results that carry their own failure state. A
// result reporting IsError is recorded as failed even when the call returned
// a nil error.
type Failure interface {
	IsError() bool
}

// Middleware instruments tool calls with a span, execution metrics and a
// completion log line. The wrapped function's result and error are passed
// through unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware builds a Middleware. Nil arguments become no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	m := &Middleware{tracer: tracer, metrics: metrics, logger: logger}
	if m.tracer == nil {
		m.tracer = NewTracer(nil)
	}
	if m.metrics == nil {
		m.metrics = NoopMetrics()
	}
	if m.logger == nil {
		m.logger = NopLogger()
	}
	return m
}

// Wrap returns fn instrumented. The returned function is safe for
// concurrent use when fn is.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, tool ToolMeta, input any) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, tool)
		start := time.Now()
		out, err := fn(ctx, tool, input)
		elapsed := time.Since(start)

		recorded := err
		if f, ok := out.(Failure); ok && err == nil && f.IsError() {
			recorded = ErrToolReported
		}
		m.tracer.EndSpan(span, recorded)
		m.metrics.RecordExecution(ctx, tool, elapsed, recorded)
		m.log(ctx, tool, elapsed, recorded)
		return out, err
	}
}

func (m *Middleware) log(ctx context.Context, tool ToolMeta, elapsed time.Duration, err error) {
	logger := m.logger.WithTool(tool)
	took := Field{Key: "duration_ms", Value: float64(elapsed.Milliseconds())}
	switch {
	case err == ErrToolReported:
		logger.Warn(ctx, "tool call reported an error", took)
	case err != nil:
		logger.Error(ctx, "tool call failed", took, Err(err))
	default:
		logger.Info(ctx, "tool call completed", took)
	}
}

// MiddlewareFromObserver builds a Middleware on obs's tracer, meter and
// logger.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// CatalogMetricsFromObserver builds catalog metrics on obs's meter.
func CatalogMetricsFromObserver(obs Observer) (CatalogMetrics, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewCatalogMetrics(obs.Meter())
}
