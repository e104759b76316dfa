// Package resilience moves blocking upstream calls off the caller's
// goroutine onto a bounded pool of workers.
//
// # Patterns
//
//   - Bulkhead: limits concurrent operations. MaxWait controls admission:
//     zero rejects immediately when full, a positive duration waits that
//     long, and a negative value waits until the caller's context ends.
//
//   - Dispatcher: runs a blocking function on a worker goroutine inside a
//     bulkhead slot and suspends the caller until the result arrives or the
//     caller's context is done. A caller giving up never aborts the worker;
//     the function runs to completion with a context detached from the
//     caller's cancellation.
//
//   - Single-flight: when enabled, concurrent dispatches with the same key
//     share one execution. It is off by default.
//
// # Usage
//
//	d := resilience.NewDispatcher(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
//	        MaxConcurrent: 8,
//	        MaxWait:       -1,
//	    })),
//	)
//
//	releases, err := resilience.Dispatch(ctx, d, key, func(ctx context.Context) ([]Release, error) {
//	    return client.Search(ctx, params)
//	})
package resilience
