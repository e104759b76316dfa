// Package observe provides logging, tracing and metrics for tool execution
// and catalog lookups.
//
// Logging is structured and backed by zerolog. Tracing and metrics use the
// OpenTelemetry SDK with pluggable exporters; when the prometheus exporter is
// selected, metrics are gathered into the Observer's own registry so a host
// can serve them.
package observe
