package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/jmgilman/go/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/discogstools/cache"
	"github.com/jonwraymond/discogstools/discogs"
	"github.com/jonwraymond/discogstools/observe"
	"github.com/jonwraymond/discogstools/resilience"
)

const (
	namespaceSearch  = "search"
	namespaceRelease = "release"
)

// Service is the non-blocking facade over the upstream catalog.
type Service struct {
	client     discogs.Client
	cache      *cache.CacheMiddleware
	dispatcher *resilience.Dispatcher
	logger     observe.Logger
	metrics    observe.CatalogMetrics
	tracer     observe.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the cache middleware. It should be built once at startup
// and shared for the life of the process.
func WithCache(m *cache.CacheMiddleware) Option {
	return func(s *Service) {
		s.cache = m
	}
}

// WithDispatcher sets the worker dispatcher.
func WithDispatcher(d *resilience.Dispatcher) Option {
	return func(s *Service) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the catalog metrics recorder.
func WithMetrics(m observe.CatalogMetrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer for upstream call spans.
func WithTracer(t observe.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewService creates a Service around client. Without WithCache it builds
// its own MemoryCache with the default policy, whose purge goroutine lives
// for the rest of the process; long-lived callers should pass a shared cache.
func NewService(client discogs.Client, opts ...Option) *Service {
	s := &Service{
		client:  client,
		logger:  observe.NopLogger(),
		metrics: observe.NoopCatalogMetrics(),
		tracer:  observe.NewTracer(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		policy := cache.DefaultPolicy()
		s.cache = cache.NewCacheMiddleware(cache.NewMemoryCache(policy), nil, policy)
	}
	if s.dispatcher == nil {
		s.dispatcher = resilience.NewDispatcher()
	}
	return s
}

// Cache returns the cache middleware.
func (s *Service) Cache() *cache.CacheMiddleware {
	return s.cache
}

// Dispatcher returns the worker dispatcher.
func (s *Service) Dispatcher() *resilience.Dispatcher {
	return s.dispatcher
}

// Search returns the first page of releases matching params. Absent
// parameters are dropped before fingerprinting and forwarding.
func (s *Service) Search(ctx context.Context, params discogs.SearchParams) ([]discogs.ReleaseSummary, error) {
	fields := params.Fields()
	s.logger.Info(ctx, "catalog search", observe.Field{Key: "criteria", Value: len(fields)})

	if cached, ok := lookup[[]discogs.ReleaseSummary](ctx, s, namespaceSearch, fields); ok {
		s.logger.Debug(ctx, "catalog search completed", observe.Field{Key: "results", Value: len(cached)})
		return cached, nil
	}

	results, err := resilience.Dispatch(ctx, s.dispatcher, s.flightKey(namespaceSearch, fields), func(ctx context.Context) ([]discogs.ReleaseSummary, error) {
		out, outcome, err := cache.Fetch(ctx, s.cache, namespaceSearch, fields, func(ctx context.Context) ([]discogs.ReleaseSummary, error) {
			out, err := upstreamCall(ctx, s, namespaceSearch, nil, func(ctx context.Context) ([]discogs.ReleaseSummary, error) {
				return s.client.Search(ctx, params)
			})
			if discogs.IsNotFound(err) {
				return []discogs.ReleaseSummary{}, nil
			}
			if out == nil && err == nil {
				out = []discogs.ReleaseSummary{}
			}
			return out, err
		})
		s.recordOutcome(ctx, namespaceSearch, outcome)
		return out, err
	})
	if err != nil {
		return nil, s.translate(ctx, namespaceSearch, 0, err)
	}
	if results == nil {
		results = []discogs.ReleaseSummary{}
	}

	s.logger.Debug(ctx, "catalog search completed", observe.Field{Key: "results", Value: len(results)})
	return results, nil
}

// Release returns the full record of the release with the given ID. The ID
// is not validated here.
func (s *Service) Release(ctx context.Context, id int) (*discogs.ReleaseDetail, error) {
	s.logger.Info(ctx, "catalog release", observe.Field{Key: "release_id", Value: id})

	input := map[string]any{"id": id}
	if cached, ok := lookup[*discogs.ReleaseDetail](ctx, s, namespaceRelease, input); ok && cached != nil {
		return cached, nil
	}

	detail, err := resilience.Dispatch(ctx, s.dispatcher, s.flightKey(namespaceRelease, input), func(ctx context.Context) (*discogs.ReleaseDetail, error) {
		out, outcome, err := cache.Fetch(ctx, s.cache, namespaceRelease, input, func(ctx context.Context) (*discogs.ReleaseDetail, error) {
			out, err := upstreamCall(ctx, s, namespaceRelease, []attribute.KeyValue{attribute.Int("release.id", id)}, func(ctx context.Context) (*discogs.ReleaseDetail, error) {
				return s.client.Release(ctx, id)
			})
			if out == nil && err == nil {
				err = perrors.Newf(perrors.CodeSchemaFailed, "release %d: empty upstream response", id)
			}
			return out, err
		})
		s.recordOutcome(ctx, namespaceRelease, outcome)
		return out, err
	})
	if err != nil {
		return nil, s.translate(ctx, namespaceRelease, id, err)
	}
	return detail, nil
}

// lookup answers from the cache on the caller's goroutine, so a hit never
// waits for a worker slot. Misses and undecodable entries go to the worker,
// which checks again before fetching and owns the store.
func lookup[T any](ctx context.Context, s *Service, op string, input any) (T, bool) {
	out, ok, err := cache.Lookup[T](ctx, s.cache, op, input)
	if err != nil {
		s.logger.Warn(ctx, "catalog cache entry unreadable", observe.Field{Key: "op", Value: op}, observe.Err(err))
		return out, false
	}
	if ok {
		s.recordOutcome(ctx, op, cache.OutcomeHit)
	}
	return out, ok
}

// flightKey is the dispatcher key for a call. It is only used when the
// dispatcher shares in-flight calls; an empty key disables sharing.
func (s *Service) flightKey(namespace string, input any) string {
	key, err := s.cache.Key(namespace, input)
	if err != nil {
		return ""
	}
	return key
}

// upstreamCall calls fn inside an upstream span and records its duration
// and outcome.
func upstreamCall[T any](ctx context.Context, s *Service, op string, attrs []attribute.KeyValue, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := s.tracer.StartUpstream(ctx, op, attrs...)
	start := time.Now()
	out, err := fn(ctx)
	s.metrics.RecordUpstreamCall(ctx, op, time.Since(start), err)
	s.tracer.EndSpan(span, err)
	return out, err
}

func (s *Service) recordOutcome(ctx context.Context, op string, outcome cache.Outcome) {
	switch outcome {
	case cache.OutcomeHit:
		s.metrics.RecordCacheLookup(ctx, op, true)
	case cache.OutcomeMiss:
		s.metrics.RecordCacheLookup(ctx, op, false)
	}
	s.logger.Debug(ctx, "catalog cache lookup",
		observe.Field{Key: "op", Value: op},
		observe.Field{Key: "outcome", Value: outcome.String()},
	)
}

// translate maps an upstream failure to the catalog error kinds. Caller
// cancellation and local failures (worker panics, undecodable cache entries)
// are returned wrapped but untranslated.
func (s *Service) translate(ctx context.Context, op string, id int, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}

	fields := []observe.Field{{Key: "op", Value: op}, observe.Err(err)}
	if op == namespaceRelease {
		fields = append(fields, observe.Field{Key: "release_id", Value: id})
	}

	if op == namespaceRelease && discogs.IsNotFound(err) {
		s.logger.Warn(ctx, "release not found", fields...)
		return &NotFoundError{ID: id}
	}
	if perrors.GetCode(err) != perrors.CodeUnknown {
		s.logger.Error(ctx, "catalog upstream error", fields...)
		return &APIError{Op: op, Err: err}
	}

	s.logger.Error(ctx, "catalog call failed", fields...)
	return fmt.Errorf("catalog: %s: %w", op, err)
}
