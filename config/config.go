// Package config loads discogs-tools settings from a .env file, the process
// environment and an optional config file, with Viper integration.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonwraymond/discogstools/observe"
	"github.com/jonwraymond/discogstools/secret"
)

const (
	envPrefix      = "DISCOGS_TOOLS"
	configName     = "discogs-tools"
	defaultEnvFile = ".env"
)

// Config is the complete runtime configuration.
type Config struct {
	Discogs  DiscogsConfig  `mapstructure:"discogs"`
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Observe  ObserveConfig  `mapstructure:"observe"`
}

// DiscogsConfig holds the upstream connection settings. Both credentials
// empty means anonymous mode.
type DiscogsConfig struct {
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Anonymous reports whether no consumer credentials are configured.
func (d DiscogsConfig) Anonymous() bool {
	return d.ConsumerKey == "" && d.ConsumerSecret == ""
}

// ServerConfig holds the HTTP host settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig holds the optional caller authentication settings.
type AuthConfig struct {
	APIKeys      []string      `mapstructure:"api_keys"`
	APIKeyHeader string        `mapstructure:"api_key_header"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTIssuer    string        `mapstructure:"jwt_issuer"`
	JWTAudience  string        `mapstructure:"jwt_audience"`
	JWTLeeway    time.Duration `mapstructure:"jwt_leeway"`
}

// Enabled reports whether any authentication method is configured.
func (a AuthConfig) Enabled() bool {
	return len(a.APIKeys) > 0 || a.JWTSecret != ""
}

// DispatchConfig sizes the upstream worker pool.
type DispatchConfig struct {
	Workers      int           `mapstructure:"workers"`
	MaxWait      time.Duration `mapstructure:"max_wait"`
	SingleFlight bool          `mapstructure:"single_flight"`
}

// ObserveConfig holds logging, tracing and metrics settings.
type ObserveConfig struct {
	ServiceName     string  `mapstructure:"service_name"`
	LogLevel        string  `mapstructure:"log_level"`
	LogFormat       string  `mapstructure:"log_format"`
	TracingExporter string  `mapstructure:"tracing_exporter"`
	SamplePct       float64 `mapstructure:"sample_pct"`
	MetricsExporter string  `mapstructure:"metrics_exporter"`
}

// Observer converts the settings into an observe.Config. An exporter of
// "none" or "" disables that signal.
func (o ObserveConfig) Observer(version string) observe.Config {
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   o.TracingExporter != "" && o.TracingExporter != "none",
			Exporter:  o.TracingExporter,
			SamplePct: o.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.MetricsExporter != "" && o.MetricsExporter != "none",
			Exporter: o.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   o.LogLevel,
			Format:  o.LogFormat,
		},
	}
}

type loadOptions struct {
	configFile string
	envFile    string
	resolver   *secret.Resolver
}

// Option configures Load.
type Option func(*loadOptions)

// WithConfigFile reads settings from path. The file must exist.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) {
		o.configFile = path
	}
}

// WithEnvFile loads variables from path instead of ./.env. The file must
// exist.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithResolver sets the resolver used for secret values.
func WithResolver(r *secret.Resolver) Option {
	return func(o *loadOptions) {
		o.resolver = r
	}
}

// Load builds a Config. Precedence, highest first: process environment,
// .env file, config file, defaults. Secret-bearing values may use ${VAR}
// expansion and secretref:<provider>:<ref> references.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = secret.NewDefaultResolver()
	}

	if err := loadEnvFile(o.envFile); err != nil {
		return nil, err
	}

	v := newViper()
	if err := readConfigFile(v, o.configFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()

	if err := cfg.resolveSecrets(ctx, o.resolver); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		// A missing ./.env is normal outside development.
		if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", defaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The upstream credentials keep their conventional unprefixed names.
	_ = v.BindEnv("discogs.consumer_key", "DISCOGS_CONSUMER_KEY", envPrefix+"_DISCOGS_CONSUMER_KEY")
	_ = v.BindEnv("discogs.consumer_secret", "DISCOGS_CONSUMER_SECRET", envPrefix+"_DISCOGS_CONSUMER_SECRET")

	setDefaults(v)
	return v
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: read: %w", err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.Discogs.ConsumerKey = strings.TrimSpace(c.Discogs.ConsumerKey)
	c.Discogs.ConsumerSecret = strings.TrimSpace(c.Discogs.ConsumerSecret)

	keys := c.Auth.APIKeys[:0]
	for _, k := range c.Auth.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		keys = nil
	}
	c.Auth.APIKeys = keys
}

func (c *Config) resolveSecrets(ctx context.Context, r *secret.Resolver) error {
	targets := []*string{&c.Discogs.ConsumerKey, &c.Discogs.ConsumerSecret, &c.Auth.JWTSecret}
	for i := range c.Auth.APIKeys {
		targets = append(targets, &c.Auth.APIKeys[i])
	}
	for _, t := range targets {
		if *t == "" {
			continue
		}
		v, err := r.ResolveValue(ctx, *t)
		if err != nil {
			return fmt.Errorf("config: resolve secret: %w", err)
		}
		*t = v
	}
	return nil
}
