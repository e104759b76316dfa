package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

// TestLogger_IncludesToolFields verifies tool fields are present in log output.
func TestLogger_IncludesToolFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.WithTool(ToolMeta{Namespace: "discogs", Name: "search_releases"}).
		Info(context.Background(), "test message")

	entry := decodeEntry(t, &buf)
	want := map[string]string{
		"tool.id":        "discogs.search_releases",
		"tool.namespace": "discogs",
		"tool.name":      "search_releases",
		"level":          "info",
		"message":        "test message",
	}
	for k, v := range want {
		if got, _ := entry[k].(string); got != v {
			t.Errorf("%s = %v, want %q", k, entry[k], v)
		}
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected time field")
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Error(context.Background(), "execution failed",
		Field{Key: "duration_ms", Value: 50.5},
		Field{Key: "criteria", Value: 2},
		Err(errors.New("connection timeout")),
	)

	entry := decodeEntry(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}
	if entry["duration_ms"] != 50.5 {
		t.Errorf("duration_ms = %v, want 50.5", entry["duration_ms"])
	}
	if entry["criteria"] != float64(2) {
		t.Errorf("criteria = %v, want 2", entry["criteria"])
	}
	if entry["error"] != "connection timeout" {
		t.Errorf("error = %v, want %q", entry["error"], "connection timeout")
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf).With(Field{Key: "consumer_secret", Value: "s3cr3t"})

	logger.Info(context.Background(), "configured",
		Field{Key: "token", Value: "abc"},
		Field{Key: "Authorization", Value: "Bearer xyz"},
		Field{Key: "artist", Value: "Nirvana"},
	)

	out := buf.String()
	if strings.Contains(out, "s3cr3t") || strings.Contains(out, "abc") || strings.Contains(out, "xyz") {
		t.Fatalf("sensitive values leaked: %s", out)
	}
	entry := decodeEntry(t, &buf)
	if entry["consumer_secret"] != redactedValue || entry["token"] != redactedValue || entry["Authorization"] != redactedValue {
		t.Errorf("expected redaction, got %v", entry)
	}
	if entry["artist"] != "Nirvana" {
		t.Errorf("artist = %v, want Nirvana", entry["artist"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		emit    func(Logger)
		written bool
	}{
		{"info", func(l Logger) { l.Debug(context.Background(), "x") }, false},
		{"info", func(l Logger) { l.Info(context.Background(), "x") }, true},
		{"warn", func(l Logger) { l.Info(context.Background(), "x") }, false},
		{"warn", func(l Logger) { l.Warn(context.Background(), "x") }, true},
		{"error", func(l Logger) { l.Warn(context.Background(), "x") }, false},
		{"debug", func(l Logger) { l.Debug(context.Background(), "x") }, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		tt.emit(NewLoggerWithWriter(tt.level, &buf))
		if got := buf.Len() > 0; got != tt.written {
			t.Errorf("level %s: written = %v, want %v", tt.level, got, tt.written)
		}
	}
}

func TestLogger_AttachesTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(ctx, "traced")

	entry := decodeEntry(t, &buf)
	if entry["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v, want %s", entry["trace_id"], span.SpanContext().TraceID())
	}
}

func TestLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLogger("info", &buf).Info(context.Background(), "hello console")
	if !strings.Contains(buf.String(), "hello console") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"trace":   "trace",
		"debug":   "debug",
		"INFO":    "info",
		"warning": "warn",
		"error":   "error",
		"bogus":   "info",
		"":        "info",
	}
	for in, want := range tests {
		if got := ParseLogLevel(in).String(); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
