package auth

import (
	"context"
	"net/http"
)

// Authenticator validates the credentials carried by request headers.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a rejected caller is reported as (nil, ErrXxx); Supports
//   must be cheap and must not validate.
type Authenticator interface {
	Name() string

	// Supports reports whether h carries credentials of this kind.
	Supports(h http.Header) bool

	// Authenticate validates the credentials and returns the caller.
	Authenticate(ctx context.Context, h http.Header) (*Identity, error)
}
