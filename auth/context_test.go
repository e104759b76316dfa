package auth

import (
	"context"
	"testing"
)

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if IdentityFromContext(ctx) != nil || PrincipalFromContext(ctx) != "" {
		t.Fatal("empty context carries an identity")
	}

	ctx = WithIdentity(ctx, &Identity{Principal: "agent"})
	if got := PrincipalFromContext(ctx); got != "agent" {
		t.Errorf("PrincipalFromContext() = %q", got)
	}
}
