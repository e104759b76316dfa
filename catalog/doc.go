// Package catalog offloads blocking upstream catalog calls onto bounded worker
// goroutines and memoizes their results.
//
// A Service owns one discogs.Client, one cache middleware and one
// resilience.Dispatcher for the life of the process. Each call fingerprints
// its non-absent inputs and checks the cache on the caller's goroutine; a hit
// returns without touching the worker pool. On a miss the fetch and store run
// on a worker, so a caller that gives up never tears a store: the worker
// finishes and either stores a complete entry or stores nothing.
//
// Upstream failures are translated once, here:
//
//   - Search: NOT_FOUND is an empty result.
//   - Release: NOT_FOUND is a *NotFoundError (errors.Is ErrNotFound).
//   - Anything else from upstream is an *APIError (errors.Is ErrAPI).
//
// Nothing is retried.
package catalog
