package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/jonwraymond/discogstools/auth"
	"github.com/jonwraymond/discogstools/discogs"
	"github.com/jonwraymond/discogstools/resilience"
	"github.com/jonwraymond/discogstools/server"
)

// DefaultServiceName names the process in logs and telemetry.
const DefaultServiceName = "discogs-tools"

// setDefaults registers every key so AutomaticEnv can see it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("discogs.consumer_key", "")
	v.SetDefault("discogs.consumer_secret", "")
	v.SetDefault("discogs.base_url", discogs.DefaultBaseURL)
	v.SetDefault("discogs.timeout", discogs.DefaultTimeout)

	v.SetDefault("server.addr", server.DefaultAddr)
	v.SetDefault("server.shutdown_timeout", server.DefaultShutdownTimeout)

	v.SetDefault("auth.api_keys", []string{})
	v.SetDefault("auth.api_key_header", auth.DefaultAPIKeyHeader)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "")
	v.SetDefault("auth.jwt_audience", "")
	v.SetDefault("auth.jwt_leeway", time.Duration(0))

	v.SetDefault("dispatch.workers", resilience.DefaultMaxConcurrent)
	v.SetDefault("dispatch.max_wait", time.Duration(-1))
	v.SetDefault("dispatch.single_flight", false)

	v.SetDefault("observe.service_name", DefaultServiceName)
	v.SetDefault("observe.log_level", "info")
	v.SetDefault("observe.log_format", "json")
	v.SetDefault("observe.tracing_exporter", "none")
	v.SetDefault("observe.sample_pct", 1.0)
	v.SetDefault("observe.metrics_exporter", "prometheus")
}

// Default returns the configuration Load produces with an empty environment.
func Default() *Config {
	return &Config{
		Discogs: DiscogsConfig{
			BaseURL: discogs.DefaultBaseURL,
			Timeout: discogs.DefaultTimeout,
		},
		Server: ServerConfig{
			Addr:            server.DefaultAddr,
			ShutdownTimeout: server.DefaultShutdownTimeout,
		},
		Auth: AuthConfig{
			APIKeyHeader: auth.DefaultAPIKeyHeader,
		},
		Dispatch: DispatchConfig{
			Workers: resilience.DefaultMaxConcurrent,
			MaxWait: -1,
		},
		Observe: ObserveConfig{
			ServiceName:     DefaultServiceName,
			LogLevel:        "info",
			LogFormat:       "json",
			TracingExporter: "none",
			SamplePct:       1.0,
			MetricsExporter: "prometheus",
		},
	}
}
