package resilience

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxConcurrent is the number of worker slots when none is configured.
const DefaultMaxConcurrent = 10

// BulkheadConfig sizes a Bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of slots. Zero or less selects
	// DefaultMaxConcurrent.
	MaxConcurrent int

	// MaxWait bounds how long Acquire queues for a slot. Zero rejects at
	// once when every slot is taken; a negative value queues until the
	// context ends.
	MaxWait time.Duration
}

// Bulkhead is a counting semaphore over upstream worker slots.
type Bulkhead struct {
	wait  time.Duration
	slots chan struct{}

	mu    sync.Mutex
	stats BulkheadMetrics
}

// NewBulkhead creates a bulkhead with every slot free.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	size := cfg.MaxConcurrent
	if size <= 0 {
		size = DefaultMaxConcurrent
	}
	return &Bulkhead{
		wait:  cfg.MaxWait,
		slots: make(chan struct{}, size),
		stats: BulkheadMetrics{MaxConcurrent: size},
	}
}

// MaxWait returns the configured queueing bound.
func (b *Bulkhead) MaxWait() time.Duration {
	return b.wait
}

// Acquire takes a slot. It fails with ErrBulkheadFull when MaxWait elapses
// first and with the context's error when ctx ends first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if b.tryAcquire() {
		return nil
	}
	if b.wait == 0 {
		b.update(reject)
		return ErrBulkheadFull
	}

	b.update(func(m *BulkheadMetrics) { m.Waiting++ })
	defer b.update(func(m *BulkheadMetrics) { m.Waiting-- })

	// nil never fires
	var deadline <-chan time.Time
	if b.wait > 0 {
		timer := time.NewTimer(b.wait)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case b.slots <- struct{}{}:
		b.update(admit)
		return nil
	case <-deadline:
		b.update(reject)
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bulkhead) tryAcquire() bool {
	select {
	case b.slots <- struct{}{}:
		b.update(admit)
		return true
	default:
		return false
	}
}

// Release frees a slot. A Release without a matching Acquire is ignored.
func (b *Bulkhead) Release() {
	select {
	case <-b.slots:
		b.update(func(m *BulkheadMetrics) { m.Active-- })
	default:
	}
}

func (b *Bulkhead) update(fn func(*BulkheadMetrics)) {
	b.mu.Lock()
	fn(&b.stats)
	b.mu.Unlock()
}

func admit(m *BulkheadMetrics) {
	m.Active++
	m.MaxActive = max(m.MaxActive, m.Active)
}

func reject(m *BulkheadMetrics) {
	m.Rejected++
}

// Metrics returns a snapshot of slot usage.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.stats
	m.Available = m.MaxConcurrent - m.Active
	return m
}

// BulkheadMetrics is a snapshot of slot usage.
type BulkheadMetrics struct {
	Active        int // slots held
	MaxActive     int // high-water mark of Active
	Waiting       int // callers queued in Acquire
	Available     int
	MaxConcurrent int
	Rejected      int64 // Acquire calls that ended in ErrBulkheadFull
}
