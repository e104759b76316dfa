package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func bearer(token string) http.Header {
	return header("Authorization", "Bearer "+token)
}

func TestNewJWTAuthenticator_RequiresSecret(t *testing.T) {
	if _, err := NewJWTAuthenticator(JWTConfig{}); !errors.Is(err, ErrNoSecret) {
		t.Errorf("err = %v, want ErrNoSecret", err)
	}
}

func TestJWTAuthenticator_Supports(t *testing.T) {
	a, _ := NewJWTAuthenticator(JWTConfig{Secret: testSecret})

	tests := []struct {
		h    http.Header
		want bool
	}{
		{header("", ""), false},
		{header("Authorization", "Basic abc"), false},
		{header("Authorization", "Bearer abc"), true},
		{header("X-API-Key", "abc"), false},
	}
	for _, tt := range tests {
		if got := a.Supports(tt.h); got != tt.want {
			t.Errorf("Supports(%v) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestJWTAuthenticator_Authenticate(t *testing.T) {
	a, err := NewJWTAuthenticator(JWTConfig{Secret: testSecret, Issuer: "discogs-tools", Audience: "mcp"})
	if err != nil {
		t.Fatal(err)
	}
	exp := time.Now().Add(time.Hour).Unix()

	valid := jwt.MapClaims{"sub": "agent-7", "iss": "discogs-tools", "aud": "mcp", "exp": exp}

	tests := []struct {
		name    string
		h       http.Header
		wantErr error
	}{
		{"valid", bearer(sign(t, jwt.SigningMethodHS256, testSecret, valid)), nil},
		{"empty token", header("Authorization", "Bearer  "), ErrMissingCredentials},
		{"garbage", bearer("not.a.jwt"), ErrTokenMalformed},
		{"wrong secret", bearer(sign(t, jwt.SigningMethodHS256, []byte("other"), valid)), ErrInvalidCredentials},
		{"wrong alg", bearer(sign(t, jwt.SigningMethodHS512, testSecret, valid)), ErrInvalidCredentials},
		{"expired", bearer(sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "a", "iss": "discogs-tools", "aud": "mcp", "exp": time.Now().Add(-time.Hour).Unix(),
		})), ErrTokenExpired},
		{"no exp", bearer(sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "a", "iss": "discogs-tools", "aud": "mcp",
		})), ErrInvalidCredentials},
		{"wrong issuer", bearer(sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "a", "iss": "someone", "aud": "mcp", "exp": exp,
		})), ErrInvalidCredentials},
		{"wrong audience", bearer(sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "a", "iss": "discogs-tools", "aud": "web", "exp": exp,
		})), ErrInvalidCredentials},
		{"no subject", bearer(sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"iss": "discogs-tools", "aud": "mcp", "exp": exp,
		})), ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Authenticate(context.Background(), tt.h)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if id.Principal != "agent-7" || id.Method != MethodJWT {
				t.Errorf("identity = %+v", id)
			}
			if id.ExpiresAt.Unix() != exp {
				t.Errorf("ExpiresAt = %v", id.ExpiresAt)
			}
			if id.Expired() {
				t.Error("Expired() = true")
			}
		})
	}
}
