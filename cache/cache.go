package cache

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

// MaxKeyLength bounds the keys MemoryCache accepts. Fingerprints are far
// shorter: a namespace, a colon and 64 hex digits.
const MaxKeyLength = 256

var (
	// ErrNilCache is returned when a nil middleware is used.
	ErrNilCache = errors.New("cache: nil cache middleware")

	// ErrInvalidKey is returned for blank keys and keys with control characters.
	ErrInvalidKey = errors.New("cache: invalid key")

	// ErrKeyTooLong is returned for keys over MaxKeyLength.
	ErrKeyTooLong = errors.New("cache: key too long")
)

// Cache stores encoded lookup results by fingerprint. Implementations must
// be safe for concurrent use. A missing, expired or evicted entry reads as
// (nil, false).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set replaces any value held for key and restarts its age.
	Set(ctx context.Context, key string, value []byte) error

	// Delete is a no-op for an absent key.
	Delete(ctx context.Context, key string) error

	// Len counts held entries. Expired entries may be counted until reaped.
	Len() int
}

// ValidateKey rejects blank keys, keys over MaxKeyLength and keys holding
// control characters.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return ErrInvalidKey
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	case strings.IndexFunc(key, unicode.IsControl) >= 0:
		return ErrInvalidKey
	}
	return nil
}
