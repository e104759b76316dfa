// Package cache provides deterministic, bounded caching for catalog lookups.
//
// It provides a Cache interface with a size-bounded, time-expiring memory
// implementation, SHA-256 fingerprint derivation over normalized parameters,
// and a memoizing middleware that composes check, fetch and store around a
// fetch function.
package cache
