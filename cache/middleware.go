package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// ExecutorFunc produces the encoded value on a cache miss.
// A nil value with a nil error is returned to the caller but not stored.
type ExecutorFunc func(ctx context.Context) ([]byte, error)

// Outcome reports how a middleware call was served.
type Outcome int

const (
	// OutcomeBypass means caching was disabled or no key could be derived.
	OutcomeBypass Outcome = iota
	// OutcomeHit means the value came from the cache.
	OutcomeHit
	// OutcomeMiss means the executor ran.
	OutcomeMiss
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	default:
		return "bypass"
	}
}

// CacheMiddleware wraps a fetch with an explicit check/fetch/store sequence.
type CacheMiddleware struct {
	cache  Cache
	keyer  Keyer
	policy Policy
}

// NewCacheMiddleware creates a new cache middleware.
// If keyer is nil, DefaultKeyer is used.
func NewCacheMiddleware(cache Cache, keyer Keyer, policy Policy) *CacheMiddleware {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &CacheMiddleware{
		cache:  cache,
		keyer:  keyer,
		policy: policy,
	}
}

// Cache returns the underlying cache.
func (m *CacheMiddleware) Cache() Cache {
	return m.cache
}

// Key returns the fingerprint Execute would use for namespace and input.
func (m *CacheMiddleware) Key(namespace string, input any) (string, error) {
	if m == nil {
		return "", ErrNilCache
	}
	return m.keyer.Key(namespace, input)
}

// Get returns the cached value for namespace and input without running
// anything. It reports false on a miss, when caching is off, or when no key
// can be derived.
func (m *CacheMiddleware) Get(ctx context.Context, namespace string, input any) ([]byte, bool) {
	if m == nil || m.cache == nil || !m.policy.ShouldCache() {
		return nil, false
	}
	key, err := m.keyer.Key(namespace, input)
	if err != nil {
		return nil, false
	}
	return m.cache.Get(ctx, key)
}

// Execute runs the executor with caching.
// On cache hit, returns cached result without calling executor.
// On cache miss, calls executor and caches the result.
// Errors are NOT cached.
func (m *CacheMiddleware) Execute(
	ctx context.Context,
	namespace string,
	input any,
	executor ExecutorFunc,
) ([]byte, Outcome, error) {
	if m == nil {
		return nil, OutcomeBypass, ErrNilCache
	}

	if m.cache == nil || !m.policy.ShouldCache() {
		result, err := executor(ctx)
		return result, OutcomeBypass, err
	}

	key, err := m.keyer.Key(namespace, input)
	if err != nil {
		// Key generation failed - execute without caching
		result, err := executor(ctx)
		return result, OutcomeBypass, err
	}

	if cached, ok := m.cache.Get(ctx, key); ok {
		return cached, OutcomeHit, nil
	}

	result, err := executor(ctx)
	if err != nil {
		return result, OutcomeMiss, err
	}

	if result != nil {
		_ = m.cache.Set(ctx, key, result)
	}

	return result, OutcomeMiss, nil
}

// Fetch is the typed form of Execute. Values are stored as JSON; a fresh
// value is returned as produced by fetch, a cached one is decoded into a new T.
func Fetch[T any](
	ctx context.Context,
	m *CacheMiddleware,
	namespace string,
	input any,
	fetch func(context.Context) (T, error),
) (T, Outcome, error) {
	var (
		zero    T
		fresh   T
		fetched bool
	)

	data, outcome, err := m.Execute(ctx, namespace, input, func(ctx context.Context) ([]byte, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		fresh, fetched = v, true

		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, nil
		}
		return encoded, nil
	})
	if err != nil {
		return zero, outcome, err
	}
	if fetched {
		return fresh, outcome, nil
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, outcome, fmt.Errorf("cache: failed to decode cached value: %w", err)
	}
	return out, outcome, nil
}

// Lookup is the typed form of Get. A cached value that does not decode into
// T is reported as an error with ok false.
func Lookup[T any](ctx context.Context, m *CacheMiddleware, namespace string, input any) (T, bool, error) {
	var zero T
	data, ok := m.Get(ctx, namespace, input)
	if !ok {
		return zero, false, nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, false, fmt.Errorf("cache: failed to decode cached value: %w", err)
	}
	return out, true, nil
}
