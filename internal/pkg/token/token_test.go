package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	iss, err := NewIssuer(testSecret, WithIssuer("backoffice"))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	raw, err := iss.Issue(NewClaims("u-1", "alice", "a@x.com", "user"), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := iss.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "u-1" || claims.Username != "alice" || claims.Email != "a@x.com" || claims.Role != "user" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Use != UseAccess {
		t.Errorf("expected access use, got %q", claims.Use)
	}
	if claims.Issuer != "backoffice" {
		t.Errorf("expected issuer backoffice, got %q", claims.Issuer)
	}
}

func TestVerify_Expired(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	iss, _ := NewIssuer(testSecret, WithClock(func() time.Time { return now }))

	raw, err := iss.Issue(NewClaims("u-1", "alice", "a@x.com", "user"), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now = t0.Add(30 * time.Minute)
	if _, err := iss.Verify(raw); err != nil {
		t.Fatalf("expected token valid before expiry, got %v", err)
	}

	now = t0.Add(2 * time.Hour)
	if _, err := iss.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	iss, _ := NewIssuer(testSecret)
	raw, _ := iss.Issue(NewClaims("u-1", "alice", "a@x.com", "user"), time.Hour)

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}
	// Swap the payload for one claiming admin while keeping the old signature.
	forged, _ := iss.Issue(NewClaims("u-1", "alice", "a@x.com", "admin"), time.Hour)
	parts[1] = strings.Split(forged, ".")[1]
	if _, err := iss.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered payload, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	a, _ := NewIssuer("secret-a")
	b, _ := NewIssuer("secret-b")

	raw, _ := a.Issue(NewClaims("u-1", "alice", "a@x.com", "user"), time.Hour)
	if _, err := b.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	iss, _ := NewIssuer(testSecret)
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := iss.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	if _, err := NewIssuer(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssue_NonPositiveTTL(t *testing.T) {
	iss, _ := NewIssuer(testSecret)
	if _, err := iss.Issue(NewClaims("u-1", "alice", "a@x.com", "user"), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestIssuePair(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	iss, _ := NewIssuer(testSecret, WithClock(fixedClock(t0)), WithTTLs(time.Hour, 24*time.Hour))

	pair, err := iss.IssuePair(NewClaims("u-1", "alice", "a@x.com", "broker"))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}
	if !pair.AccessExpiresAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("unexpected access expiry %v", pair.AccessExpiresAt)
	}
	if !pair.RefreshExpiresAt.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("unexpected refresh expiry %v", pair.RefreshExpiresAt)
	}

	access, err := iss.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("Verify access: %v", err)
	}
	refresh, err := iss.Verify(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Verify refresh: %v", err)
	}
	if access.Use != UseAccess || refresh.Use != UseRefresh {
		t.Errorf("unexpected uses: access=%q refresh=%q", access.Use, refresh.Use)
	}
	if access.Role != "broker" || refresh.Role != "broker" {
		t.Errorf("identity claims must match across the pair")
	}
}
