package observe

import (
	"fmt"
	"io"
	"slices"
)

// Exporter and logging names accepted by Config.Validate. The empty string
// is accepted everywhere and selects the default.
var (
	TracingExporters = []string{"", "none", "stdout", "otlp", "jaeger"}
	MetricsExporters = []string{"", "none", "stdout", "otlp", "prometheus"}
	LogLevels        = []string{"", "trace", "debug", "info", "warn", "error"}
	LogFormats       = []string{"", "json", "console"}
)

// Config selects the signals NewObserver sets up. A disabled signal gets a
// no-op implementation and its settings are not checked.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig selects the span exporter and head sampling ratio.
type TracingConfig struct {
	Enabled   bool
	Exporter  string
	SamplePct float64 // in [0, 1]
}

// MetricsConfig selects the metric reader.
type MetricsConfig struct {
	Enabled  bool
	Exporter string
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Enabled bool
	Level   string
	Format  string
	Output  io.Writer // nil means os.Stderr
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if t := c.Tracing; t.Enabled {
		if err := oneOf(ErrInvalidTracingExporter, t.Exporter, TracingExporters); err != nil {
			return err
		}
		if t.SamplePct < 0 || t.SamplePct > 1 {
			return fmt.Errorf("%w: got %g", ErrInvalidSamplePct, t.SamplePct)
		}
	}
	if m := c.Metrics; m.Enabled {
		if err := oneOf(ErrInvalidMetricsExporter, m.Exporter, MetricsExporters); err != nil {
			return err
		}
	}
	if l := c.Logging; l.Enabled {
		if err := oneOf(ErrInvalidLogLevel, l.Level, LogLevels); err != nil {
			return err
		}
		if err := oneOf(ErrInvalidLogFormat, l.Format, LogFormats); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(sentinel error, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%w: %q", sentinel, value)
}
