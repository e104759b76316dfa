package observe

import (
	"errors"

	"github.com/jonwraymond/discogstools/observe/exporters"
)

// Config.Validate errors.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be between 0.0 and 1.0")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
	ErrInvalidLogFormat       = errors.New("observe: invalid log format")
)

// ErrEndpointNotConfigured is returned by NewObserver when an OTLP exporter
// is selected without its endpoint variable.
var ErrEndpointNotConfigured = exporters.ErrEndpointNotConfigured

// ErrNilObserver is returned by the FromObserver constructors.
var ErrNilObserver = errors.New("observe: observer is nil")

// ErrToolReported is recorded on spans and metrics for a tool call whose
// result reports a failure without returning an error.
var ErrToolReported = errors.New("observe: tool reported an error")

// RedactedFields are log field keys whose values are replaced before
// writing. Matching is case-insensitive.
var RedactedFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"authorization",
	"consumer_key",
	"consumer_secret",
	"credential",
}
