package cache

import (
	"context"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is a bounded in-memory cache with a single TTL for all entries.
//
// Recency is access-ordered: Get on a live entry marks it most recently used.
//
// With a positive TTL the underlying expirable LRU runs a purge goroutine
// that cannot be stopped and lives as long as the process. Build one
// MemoryCache at startup and share it rather than creating one per request.
type MemoryCache struct {
	lru       *expirable.LRU[string, []byte]
	policy    Policy
	evictions atomic.Int64
}

// Stats reports the cache occupancy and eviction count.
type Stats struct {
	Entries   int
	Capacity  int
	Evictions int64
}

// NewMemoryCache creates a new in-memory cache with the given policy.
func NewMemoryCache(policy Policy) *MemoryCache {
	return &MemoryCache{
		lru:    expirable.NewLRU[string, []byte](policy.Capacity(), nil, policy.TTL),
		policy: policy,
	}
}

// Get retrieves a value from the cache. Returns (nil, false) on miss, expiry
// or eviction.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	if !c.policy.ShouldCache() {
		return nil, false
	}
	return c.lru.Get(key)
}

// Set stores a value stamped with the current time. A disabled policy makes
// Set a no-op.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	if !c.policy.ShouldCache() {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	if c.lru.Add(key, value) {
		c.evictions.Add(1)
	}
	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of held entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// Policy returns the policy the cache was built with.
func (c *MemoryCache) Policy() Policy {
	return c.policy
}

// Stats returns a snapshot of cache statistics.
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Entries:   c.lru.Len(),
		Capacity:  c.policy.Capacity(),
		Evictions: c.evictions.Load(),
	}
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
