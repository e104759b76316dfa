// Package app assembles the catalog, tools, health checks and host from a
// loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonwraymond/discogstools/auth"
	"github.com/jonwraymond/discogstools/cache"
	"github.com/jonwraymond/discogstools/catalog"
	"github.com/jonwraymond/discogstools/config"
	"github.com/jonwraymond/discogstools/discogs"
	"github.com/jonwraymond/discogstools/health"
	"github.com/jonwraymond/discogstools/observe"
	"github.com/jonwraymond/discogstools/resilience"
	"github.com/jonwraymond/discogstools/server"
	"github.com/jonwraymond/discogstools/tools"
)

// RateLimitLowWater is the remaining-request count at which the upstream
// check reports degraded.
const RateLimitLowWater = 5

// App is the assembled process.
type App struct {
	Config        *config.Config
	Version       string
	Observer      observe.Observer
	Logger        observe.Logger
	Cache         *cache.MemoryCache
	Dispatcher    *resilience.Dispatcher
	Client        *discogs.HTTPClient
	Catalog       *catalog.Service
	Tools         *tools.Registry
	Health        *health.Aggregator
	Authenticator auth.Authenticator
}

type options struct {
	logOutput  io.Writer
	httpClient *http.Client
}

// Option configures New.
type Option func(*options)

// WithLogOutput sends logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithHTTPClient sets the client used for upstream requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New builds every component. The cache is created once here and lives as
// long as the App.
func New(ctx context.Context, cfg *config.Config, version string, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	obsCfg := cfg.Observe.Observer(version)
	obsCfg.Logging.Output = o.logOutput
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("app: observer: %w", err)
	}
	a := &App{Config: cfg, Version: version, Observer: obs, Logger: obs.Logger()}

	if err := a.build(o); err != nil {
		_ = obs.Shutdown(context.WithoutCancel(ctx))
		return nil, err
	}
	return a, nil
}

func (a *App) build(o options) error {
	cfg := a.Config

	catalogMetrics, err := observe.CatalogMetricsFromObserver(a.Observer)
	if err != nil {
		return fmt.Errorf("app: catalog metrics: %w", err)
	}
	toolMW, err := observe.MiddlewareFromObserver(a.Observer)
	if err != nil {
		return fmt.Errorf("app: tool middleware: %w", err)
	}

	policy := cache.DefaultPolicy()
	a.Cache = cache.NewMemoryCache(policy)

	dispatchOpts := []resilience.DispatcherOption{
		resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: cfg.Dispatch.Workers,
			MaxWait:       cfg.Dispatch.MaxWait,
		})),
	}
	if cfg.Dispatch.SingleFlight {
		dispatchOpts = append(dispatchOpts, resilience.WithSingleFlight())
	}
	a.Dispatcher = resilience.NewDispatcher(dispatchOpts...)

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Discogs.Timeout}
	}
	clientOpts := []discogs.Option{
		discogs.WithBaseURL(cfg.Discogs.BaseURL),
		discogs.WithHTTPClient(hc),
		discogs.WithLogger(a.Logger),
	}
	if !cfg.Discogs.Anonymous() {
		clientOpts = append(clientOpts, discogs.WithCredentials(cfg.Discogs.ConsumerKey, cfg.Discogs.ConsumerSecret))
	}
	a.Client = discogs.NewHTTPClient(clientOpts...)
	if !a.Client.Authenticated() {
		a.Logger.Warn(context.Background(), "no Discogs consumer credentials; running with the anonymous rate limit")
	}

	a.Catalog = catalog.NewService(a.Client,
		catalog.WithCache(cache.NewCacheMiddleware(a.Cache, nil, policy)),
		catalog.WithDispatcher(a.Dispatcher),
		catalog.WithLogger(a.Logger),
		catalog.WithMetrics(catalogMetrics),
		catalog.WithTracer(observe.NewTracer(a.Observer.Tracer())),
	)
	a.Tools = tools.NewRegistry(tools.NewToolset(a.Catalog, tools.WithLogger(a.Logger)), toolMW)

	a.Health = health.NewAggregator()
	a.Health.Register("cache", health.NewCacheChecker(a.Cache))
	a.Health.Register("dispatcher", health.NewDispatcherChecker(a.Dispatcher))
	a.Health.Register("upstream", health.NewRateLimitChecker(a.Client, RateLimitLowWater))

	a.Authenticator, err = newAuthenticator(cfg.Auth)
	return err
}

// newAuthenticator returns nil when authentication is not configured.
func newAuthenticator(cfg config.AuthConfig) (auth.Authenticator, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	var auths []auth.Authenticator
	if len(cfg.APIKeys) > 0 {
		a, err := auth.NewAPIKeyAuthenticator(cfg.APIKeyHeader, cfg.APIKeys...)
		if err != nil {
			return nil, fmt.Errorf("app: api keys: %w", err)
		}
		auths = append(auths, a)
	}
	if cfg.JWTSecret != "" {
		a, err := auth.NewJWTAuthenticator(auth.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   cfg.JWTLeeway,
		})
		if err != nil {
			return nil, fmt.Errorf("app: jwt: %w", err)
		}
		auths = append(auths, a)
	}
	return auth.NewCompositeAuthenticator(auths...), nil
}

// Server builds the HTTP host over the App's components.
func (a *App) Server() (*server.Server, error) {
	deps := server.Deps{
		Tools:         a.Tools,
		Health:        a.Health,
		Authenticator: a.Authenticator,
		Logger:        a.Logger,
		Gatherer:      a.Observer.Gatherer(),
		Registerer:    a.Observer.Registerer(),
	}
	return server.New(server.Config{
		Addr:            a.Config.Server.Addr,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		Info:            server.Info{Name: a.Config.Observe.ServiceName, Version: a.Version},
	}, deps)
}

// Close flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	return a.Observer.Shutdown(ctx)
}
