// Package health reports the state of the server's in-process components.
//
// A Checker inspects one component and returns a Result with a Status of
// Healthy, Degraded or Unhealthy. The Aggregator runs every registered
// checker under a shared timeout and folds the results into one status.
//
// The checkers in this package watch the release cache, the worker
// dispatcher and the upstream rate-limit budget:
//
//	agg := health.NewAggregator()
//	agg.Register("cache", health.NewCacheChecker(mem))
//	agg.Register("dispatcher", health.NewDispatcherChecker(d))
//	agg.Register("upstream", health.NewRateLimitChecker(client, 5))
//
// RegisterRoutes mounts /healthz (liveness), /readyz (readiness) and
// /health (JSON detail) on an echo router.
package health
