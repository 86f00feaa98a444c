package auth_test

import (
	"testing"
	"time"

	"quantumshield/internal/auth"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := auth.NewJWTVerifier([]byte("test-secret"))

	token, err := v.Issue(10, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 10 || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTVerifier_RejectsExpired(t *testing.T) {
	v := auth.NewJWTVerifier([]byte("test-secret"))

	token, err := v.Issue(10, "alice", -time.Second)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := v.Verify(token); err != auth.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTVerifier_RejectsWrongSecret(t *testing.T) {
	v := auth.NewJWTVerifier([]byte("test-secret"))
	other := auth.NewJWTVerifier([]byte("other-secret"))

	token, err := v.Issue(10, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := other.Verify(token); err != auth.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestKeyedLimiter_PerUserIsolation(t *testing.T) {
	l := auth.NewKeyedLimiter(1, 2)

	if !l.Allow(1) || !l.Allow(1) {
		t.Fatal("expected burst of 2 to succeed for user 1")
	}
	if l.Allow(1) {
		t.Fatal("expected 3rd call for user 1 to be rate limited")
	}
	if !l.Allow(2) {
		t.Fatal("expected user 2 to have an independent budget")
	}
}
