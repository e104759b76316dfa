package discogs

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Rate-limit headers sent by the upstream API on every response.
const (
	headerRateLimit          = "X-Discogs-Ratelimit"
	headerRateLimitUsed      = "X-Discogs-Ratelimit-Used"
	headerRateLimitRemaining = "X-Discogs-Ratelimit-Remaining"
)

// RateLimit is the last moving-window budget reported by the upstream.
type RateLimit struct {
	Limit     int
	Used      int
	Remaining int
	UpdatedAt time.Time
}

// Known reports whether any response has reported a budget yet.
func (r RateLimit) Known() bool {
	return !r.UpdatedAt.IsZero()
}

type rateLimitTracker struct {
	mu    sync.RWMutex
	state RateLimit
	now   func() time.Time
}

func (t *rateLimitTracker) observe(h http.Header) {
	limit, okLimit := headerInt(h, headerRateLimit)
	remaining, okRemaining := headerInt(h, headerRateLimitRemaining)
	if !okLimit && !okRemaining {
		return
	}
	used, _ := headerInt(h, headerRateLimitUsed)

	t.mu.Lock()
	t.state = RateLimit{
		Limit:     limit,
		Used:      used,
		Remaining: remaining,
		UpdatedAt: t.now(),
	}
	t.mu.Unlock()
}

func (t *rateLimitTracker) snapshot() RateLimit {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func headerInt(h http.Header, key string) (int, bool) {
	v := h.Get(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
