package catalog

import (
	"errors"
	"fmt"

	perrors "github.com/jmgilman/go/errors"
)

var (
	// ErrNotFound is matched by a *NotFoundError.
	ErrNotFound = errors.New("catalog: release not found")

	// ErrAPI is matched by an *APIError.
	ErrAPI = errors.New("catalog: upstream api error")
)

// NotFoundError reports that the upstream has no release with the given ID.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Release %d not found", e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// APIError is any upstream failure other than not-found, rate limiting
// included.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrAPI.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// Code returns the upstream error code, e.g. RATE_LIMIT_EXCEEDED.
func (e *APIError) Code() perrors.ErrorCode {
	return perrors.GetCode(e.Err)
}
