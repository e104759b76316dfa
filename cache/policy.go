package cache

import "time"

// Default sizing for the process-wide lookup cache.
const (
	DefaultMaxEntries = 1024
	DefaultTTL        = 30 * 24 * time.Hour
)

// Policy configures caching behavior.
type Policy struct {
	// MaxEntries bounds the number of live entries. Inserting a new key at
	// capacity evicts the least recently used entry.
	// If zero or negative, DefaultMaxEntries is used.
	MaxEntries int

	// TTL is the age after which an entry reads as absent.
	// If zero, caching is disabled.
	TTL time.Duration
}

// DefaultPolicy returns the default caching policy.
// MaxEntries: 1024, TTL: 30 days
func DefaultPolicy() Policy {
	return Policy{
		MaxEntries: DefaultMaxEntries,
		TTL:        DefaultTTL,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{
		MaxEntries: DefaultMaxEntries,
		TTL:        0,
	}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.TTL > 0
}

// Capacity returns the effective entry bound.
func (p Policy) Capacity() int {
	if p.MaxEntries <= 0 {
		return DefaultMaxEntries
	}
	return p.MaxEntries
}
