package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
)

// DefaultAPIKeyHeader carries the caller's API key.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyAuthenticator accepts any key from a fixed set. Keys are kept as
// SHA-256 digests and compared in constant time.
type APIKeyAuthenticator struct {
	header  string
	digests [][sha256.Size]byte
}

// NewAPIKeyAuthenticator creates an authenticator for keys. Blank keys are
// ignored; at least one key is required.
func NewAPIKeyAuthenticator(header string, keys ...string) (*APIKeyAuthenticator, error) {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	a := &APIKeyAuthenticator{header: header}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			a.digests = append(a.digests, sha256.Sum256([]byte(k)))
		}
	}
	if len(a.digests) == 0 {
		return nil, ErrNoKeys
	}
	return a, nil
}

func (a *APIKeyAuthenticator) Name() string { return string(MethodAPIKey) }

func (a *APIKeyAuthenticator) Supports(h http.Header) bool {
	return h.Get(a.header) != ""
}

func (a *APIKeyAuthenticator) Authenticate(_ context.Context, h http.Header) (*Identity, error) {
	key := strings.TrimSpace(h.Get(a.header))
	if key == "" {
		return nil, ErrMissingCredentials
	}

	got := sha256.Sum256([]byte(key))
	match := 0
	for i, want := range a.digests {
		if subtle.ConstantTimeCompare(got[:], want[:]) == 1 {
			match = i + 1
		}
	}
	if match == 0 {
		return nil, ErrInvalidCredentials
	}

	return &Identity{
		Principal: "api-key-" + strconv.Itoa(match),
		Method:    MethodAPIKey,
		Claims:    map[string]any{"key_index": match - 1},
	}, nil
}

var _ Authenticator = (*APIKeyAuthenticator)(nil)
