package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in       string
		provider string
		ref      string
		ok       bool
	}{
		{"secretref:env:KEY", "env", "KEY", true},
		{"secretref:file:/a:b", "file", "/a:b", true},
		{"secretref:env:", "", "", false},
		{"secretref::KEY", "", "", false},
		{"plain", "", "", false},
	}
	for _, tt := range tests {
		p, r, ok := ParseRef(tt.in)
		if p != tt.provider || r != tt.ref || ok != tt.ok {
			t.Errorf("ParseRef(%q) = %q, %q, %v", tt.in, p, r, ok)
		}
	}
}

func TestResolver_ResolveValue(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "secret"), []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	env := NewEnvProvider(mapLookup(map[string]string{"TOKEN": "t0k", "BLANK": ""}))
	r := NewResolver(true, env, NewFileProvider(dir))
	ctx := context.Background()

	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"literal", "literal", nil},
		{"secretref:env:TOKEN", "t0k", nil},
		{"secretref:file:secret", "from-file", nil},
		{"Bearer secretref:env:TOKEN", "Bearer t0k", nil},
		{"secretref:env:MISSING", "", ErrNotFound},
		{"secretref:file:missing", "", ErrNotFound},
		{"secretref:vault:x", "", ErrUnknownProvider},
		{"secretref:env:BLANK", "", ErrEmpty},
		{"x secretref:vault:y", "", ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := r.ResolveValue(ctx, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolver_NonStrictAllowsEmpty(t *testing.T) {
	r := NewResolver(false, NewEnvProvider(mapLookup(map[string]string{"BLANK": ""})))
	got, err := r.ResolveValue(context.Background(), "secretref:env:BLANK")
	if err != nil || got != "" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestResolver_ExpandsBeforeResolving(t *testing.T) {
	t.Setenv("DISCOGS_SECRET_NAME", "TOKEN")
	r := NewResolver(true, NewEnvProvider(mapLookup(map[string]string{"TOKEN": "t0k"})))

	got, err := r.ResolveValue(context.Background(), "secretref:env:${DISCOGS_SECRET_NAME}")
	if err != nil || got != "t0k" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestNewDefaultResolver(t *testing.T) {
	t.Setenv("DISCOGS_TEST_SECRET", "s")
	got, err := NewDefaultResolver().ResolveValue(context.Background(), "secretref:env:DISCOGS_TEST_SECRET")
	if err != nil || got != "s" {
		t.Errorf("got %q, %v", got, err)
	}
}
