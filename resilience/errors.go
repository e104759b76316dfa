package resilience

import "errors"

var (
	// ErrBulkheadFull is returned by Acquire when no slot frees up within
	// the bulkhead's wait.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrWorkerPanic wraps the value recovered from a panicking job.
	ErrWorkerPanic = errors.New("resilience: worker panicked")

	// ErrUnexpectedResult means a shared in-flight result did not have the
	// caller's type. Callers sharing a key must agree on the result type.
	ErrUnexpectedResult = errors.New("resilience: unexpected result type")
)
