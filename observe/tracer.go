package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Span name prefixes.
const (
	toolSpanPrefix     = "tool.exec."
	upstreamSpanPrefix = "catalog.upstream."
)

// ToolMeta names a tool in spans, metrics and log fields.
type ToolMeta struct {
	Namespace string
	Name      string
}

// ToolID is namespace.name, or just the name when there is no namespace.
func (m ToolMeta) ToolID() string {
	if m.Namespace == "" {
		return m.Name
	}
	return m.Namespace + "." + m.Name
}

// SpanName is the tool ID under the tool.exec. prefix.
func (m ToolMeta) SpanName() string {
	return toolSpanPrefix + m.ToolID()
}

func (m ToolMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("tool.id", m.ToolID()),
		attribute.String("tool.name", m.Name),
	}
	if m.Namespace != "" {
		attrs = append(attrs, attribute.String("tool.namespace", m.Namespace))
	}
	return attrs
}

// Tracer starts the spans for tool executions and the catalog calls they
// make upstream. Implementations are safe for concurrent use and EndSpan
// never panics.
type Tracer interface {
	// StartSpan starts an internal span for one tool execution.
	StartSpan(ctx context.Context, meta ToolMeta) (context.Context, trace.Span)

	// StartUpstream starts a client span for one upstream catalog call.
	StartUpstream(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span)

	// EndSpan ends the span, recording err when non-nil.
	EndSpan(span trace.Span, err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps t. A nil tracer starts non-recording spans.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &otelTracer{tracer: t}
}

func (t *otelTracer) StartSpan(ctx context.Context, meta ToolMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(meta.attributes()...),
	)
}

func (t *otelTracer) StartUpstream(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{attribute.String("catalog.op", op)}, attrs...)
	return t.tracer.Start(ctx, upstreamSpanPrefix+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func (t *otelTracer) EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
