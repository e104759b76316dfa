package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/discogstools/cache"
	"github.com/jonwraymond/discogstools/discogs"
	"github.com/jonwraymond/discogstools/resilience"
)

// CacheStatser exposes cache occupancy.
type CacheStatser interface {
	Stats() cache.Stats
}

// NewCacheChecker reports cache occupancy. A cache with zero capacity is
// reported as degraded since every call goes upstream.
func NewCacheChecker(c CacheStatser) Checker {
	return NewCheckerFunc("cache", func(context.Context) Result {
		s := c.Stats()
		details := map[string]any{
			"entries":   s.Entries,
			"capacity":  s.Capacity,
			"evictions": s.Evictions,
		}
		if s.Capacity <= 0 {
			return Degraded("cache disabled").WithDetails(details)
		}
		return Healthy(fmt.Sprintf("%d/%d entries", s.Entries, s.Capacity)).WithDetails(details)
	})
}

// DispatcherMetricser exposes worker pool metrics.
type DispatcherMetricser interface {
	Metrics() resilience.DispatcherMetrics
}

// NewDispatcherChecker reports worker saturation. All slots busy with
// callers queued is degraded.
func NewDispatcherChecker(d DispatcherMetricser) Checker {
	return NewCheckerFunc("dispatcher", func(context.Context) Result {
		m := d.Metrics()
		details := map[string]any{
			"active":     m.Bulkhead.Active,
			"max_active": m.Bulkhead.MaxActive,
			"waiting":    m.Bulkhead.Waiting,
			"capacity":   m.Bulkhead.MaxConcurrent,
			"rejected":   m.Bulkhead.Rejected,
			"dispatched": m.Dispatched,
			"abandoned":  m.Abandoned,
			"panics":     m.Panics,
		}
		if m.Bulkhead.Available == 0 && m.Bulkhead.Waiting > 0 {
			return Degraded(fmt.Sprintf("all %d workers busy, %d waiting",
				m.Bulkhead.MaxConcurrent, m.Bulkhead.Waiting)).WithDetails(details)
		}
		return Healthy(fmt.Sprintf("%d/%d workers busy",
			m.Bulkhead.Active, m.Bulkhead.MaxConcurrent)).WithDetails(details)
	})
}

// RateLimiter exposes the last upstream rate-limit report.
type RateLimiter interface {
	RateLimit() discogs.RateLimit
}

// rateLimitWindow is how long the upstream moving window lasts. Older
// reports no longer describe the current budget.
const rateLimitWindow = time.Minute

// NewRateLimitChecker reports the upstream request budget. Remaining at or
// below lowWater is degraded; an exhausted budget is unhealthy.
func NewRateLimitChecker(r RateLimiter, lowWater int) Checker {
	return NewCheckerFunc("upstream", func(context.Context) Result {
		rl := r.RateLimit()
		if !rl.Known() || time.Since(rl.UpdatedAt) > rateLimitWindow {
			return Healthy("no recent upstream traffic")
		}

		details := map[string]any{
			"limit":     rl.Limit,
			"used":      rl.Used,
			"remaining": rl.Remaining,
			"updated":   rl.UpdatedAt.UTC().Format(time.RFC3339),
		}
		switch {
		case rl.Remaining <= 0:
			return Unhealthy("upstream rate limit exhausted", ErrCheckFailed).WithDetails(details)
		case rl.Remaining <= lowWater:
			return Degraded(fmt.Sprintf("upstream rate limit low: %d left", rl.Remaining)).WithDetails(details)
		default:
			return Healthy(fmt.Sprintf("%d/%d requests left", rl.Remaining, rl.Limit)).WithDetails(details)
		}
	})
}
