package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidNamespace is returned for a blank namespace.
var ErrInvalidNamespace = errors.New("cache: namespace is required")

// Keyer derives the fingerprint of an operation and its parameters. Inputs
// that differ only in map order or in absent (null) entries must map to the
// same key. Implementations are safe for concurrent use.
type Keyer interface {
	Key(namespace string, input any) (string, error)
}

// DefaultKeyer fingerprints with SHA-256 over canonical JSON. Keys have the
// form "<namespace>:<64 hex digits>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key returns the fingerprint of input under namespace. input must encode
// as JSON.
func (*DefaultKeyer) Key(namespace string, input any) (string, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return "", ErrInvalidNamespace
	}
	doc, err := canonicalJSON(input)
	if err != nil {
		return "", fmt.Errorf("cache: fingerprint %s: %w", namespace, err)
	}
	sum := sha256.Sum256(doc)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}

// canonicalJSON round-trips v through the generic JSON model, prunes null
// object members and re-encodes. encoding/json writes object keys sorted,
// so equal documents encode identically.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return json.Marshal(prune(doc))
}

func prune(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, member := range val {
			if member == nil {
				delete(val, k)
				continue
			}
			val[k] = prune(member)
		}
	case []any:
		for i, elem := range val {
			val[i] = prune(elem)
		}
	}
	return v
}

var _ Keyer = (*DefaultKeyer)(nil)
