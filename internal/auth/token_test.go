package auth

import (
	"context"
	"testing"
	"time"

	"quizhunt-service/internal/domain"
)

func TestSignAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Sign(domain.Principal{ID: "p1", Role: domain.RolePlayer})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	p, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.ID != "p1" || p.Role != domain.RolePlayer {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	raw, _ := NewTokens("other", time.Hour).Sign(domain.Principal{ID: "p1", Role: domain.RolePlayer})
	if _, err := NewTokens("secret", time.Hour).Parse(raw); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}

	tokens := NewTokens("secret", time.Minute)
	issued := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }
	raw, _ = tokens.Sign(domain.Principal{ID: "s1", Role: domain.RoleSociety})
	tokens.now = func() time.Time { return issued.Add(time.Hour) }
	if _, err := tokens.Parse(raw); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestSignRejectsUnknownRole(t *testing.T) {
	if _, err := NewTokens("", 0).Sign(domain.Principal{ID: "x", Role: "admin"}); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := WithPrincipal(context.Background(), domain.Principal{ID: "s1", Role: domain.RoleSociety})
	if got := PrincipalFrom(ctx); got.ID != "s1" {
		t.Fatalf("expected principal from context, got %+v", got)
	}
	if got := PrincipalFrom(context.Background()); got.ID != "" {
		t.Fatalf("expected zero principal, got %+v", got)
	}
}
