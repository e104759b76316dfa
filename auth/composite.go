package auth

import (
	"context"
	"net/http"
)

// CompositeAuthenticator tries each authenticator that supports the request,
// in order, and returns the first success.
type CompositeAuthenticator struct {
	auths []Authenticator
}

// NewCompositeAuthenticator creates a composite. Nil entries are dropped.
func NewCompositeAuthenticator(auths ...Authenticator) *CompositeAuthenticator {
	c := &CompositeAuthenticator{}
	for _, a := range auths {
		if a != nil {
			c.auths = append(c.auths, a)
		}
	}
	return c
}

func (c *CompositeAuthenticator) Name() string { return "composite" }

// Len returns the number of authenticators.
func (c *CompositeAuthenticator) Len() int { return len(c.auths) }

func (c *CompositeAuthenticator) Supports(h http.Header) bool {
	for _, a := range c.auths {
		if a.Supports(h) {
			return true
		}
	}
	return false
}

// Authenticate returns the first success, or the last rejection when every
// supporting authenticator refused.
func (c *CompositeAuthenticator) Authenticate(ctx context.Context, h http.Header) (*Identity, error) {
	lastErr := ErrMissingCredentials
	for _, a := range c.auths {
		if !a.Supports(h) {
			continue
		}
		id, err := a.Authenticate(ctx, h)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

var _ Authenticator = (*CompositeAuthenticator)(nil)
