// Package discogs is the upstream catalog collaborator: a small client for
// the Discogs database API that normalizes responses into fixed records and
// classifies failures.
//
// Every raw response shape is mapped exactly once, here, into
// ReleaseSummary and ReleaseDetail. Errors carry a github.com/jmgilman/go/errors
// code (NOT_FOUND, RATE_LIMIT_EXCEEDED, SERVICE_UNAVAILABLE, ...) and wrap an
// *HTTPError when the upstream answered with a status.
//
// Calls are synchronous; callers that must not block dispatch them through
// the resilience package.
package discogs
