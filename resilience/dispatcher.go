package resilience

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Dispatcher runs blocking functions on worker goroutines bounded by a
// bulkhead.
type Dispatcher struct {
	bulkhead *Bulkhead
	group    *singleflight.Group

	dispatched atomic.Int64
	abandoned  atomic.Int64
	shared     atomic.Int64
	panics     atomic.Int64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBulkhead sets the bulkhead that bounds worker concurrency.
func WithBulkhead(b *Bulkhead) DispatcherOption {
	return func(d *Dispatcher) {
		d.bulkhead = b
	}
}

// WithSingleFlight makes concurrent dispatches with the same key share one
// execution.
func WithSingleFlight() DispatcherOption {
	return func(d *Dispatcher) {
		d.group = &singleflight.Group{}
	}
}

// NewDispatcher creates a dispatcher. Without WithBulkhead it uses
// DefaultMaxConcurrent slots and waits for a slot until the caller gives up.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.bulkhead == nil {
		d.bulkhead = NewBulkhead(BulkheadConfig{
			MaxConcurrent: DefaultMaxConcurrent,
			MaxWait:       -1,
		})
	}
	return d
}

type result struct {
	val any
	err error
}

// Do runs fn on a worker goroutine and waits for its result.
//
// If ctx is done before fn returns, Do returns ctx.Err() and fn keeps
// running; its context carries ctx's values but not its cancellation.
// The key is only consulted when single-flight is enabled.
func (d *Dispatcher) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if d.group != nil && key != "" {
		return d.doShared(ctx, key, fn)
	}

	if err := d.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}

	d.dispatched.Add(1)
	done := make(chan result, 1)
	go func() {
		defer d.bulkhead.Release()
		val, err := d.run(context.WithoutCancel(ctx), fn)
		done <- result{val: val, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		d.abandoned.Add(1)
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) doShared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := d.group.DoChan(key, func() (any, error) {
		// The slot wait is detached too; the shared call outlives any
		// single waiter.
		if err := d.bulkhead.Acquire(detached); err != nil {
			return nil, err
		}
		defer d.bulkhead.Release()
		d.dispatched.Add(1)
		return d.run(detached, fn)
	})

	select {
	case r := <-ch:
		if r.Shared {
			d.shared.Add(1)
		}
		return r.Val, r.Err
	case <-ctx.Done():
		d.abandoned.Add(1)
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) run(ctx context.Context, fn func(context.Context) (any, error)) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.panics.Add(1)
			val, err = nil, fmt.Errorf("%w: %v", ErrWorkerPanic, r)
		}
	}()
	return fn(ctx)
}

// Bulkhead returns the bulkhead bounding the workers.
func (d *Dispatcher) Bulkhead() *Bulkhead {
	return d.bulkhead
}

// SingleFlight reports whether concurrent same-key dispatches are shared.
func (d *Dispatcher) SingleFlight() bool {
	return d.group != nil
}

// Metrics returns current dispatcher metrics.
func (d *Dispatcher) Metrics() DispatcherMetrics {
	return DispatcherMetrics{
		Bulkhead:   d.bulkhead.Metrics(),
		Dispatched: d.dispatched.Load(),
		Abandoned:  d.abandoned.Load(),
		Shared:     d.shared.Load(),
		Panics:     d.panics.Load(),
	}
}

// DispatcherMetrics contains dispatcher statistics.
type DispatcherMetrics struct {
	Bulkhead   BulkheadMetrics
	Dispatched int64
	Abandoned  int64
	Shared     int64
	Panics     int64
}

// Dispatch is the typed form of Dispatcher.Do.
func Dispatch[T any](ctx context.Context, d *Dispatcher, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	val, err := d.Do(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}
	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnexpectedResult, val)
	}
	return typed, nil
}
