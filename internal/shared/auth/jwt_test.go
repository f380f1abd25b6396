package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s, err := NewSigner("secret", true)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	token, err := s.Sign(Claims{Email: "ada@example.com", Name: "Ada", StandardClaims: jwt.StandardClaims{Subject: "google:123"}})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "google:123" || claims.Email != "ada@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt-claims.IssuedAt != int64(defaultTTL/time.Second) {
		t.Fatalf("expected default ttl, got %d", claims.ExpiresAt-claims.IssuedAt)
	}
}

func TestVerifyRejects(t *testing.T) {
	s, _ := NewSigner("secret", false)
	other, _ := NewSigner("other", false)

	foreign, _ := other.Sign(Claims{StandardClaims: jwt.StandardClaims{Subject: "x"}})
	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _ := s.Sign(Claims{StandardClaims: jwt.StandardClaims{Subject: "x"}})
	s.now = time.Now

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      expired,
	} {
		if _, err := s.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestNewSignerSecret(t *testing.T) {
	if _, err := NewSigner("", true); err == nil {
		t.Fatalf("expected production signer to require a secret")
	}
	s, err := NewSigner(" ", false)
	if err != nil {
		t.Fatalf("expected dev fallback, got %v", err)
	}
	if string(s.secret) != devSecret {
		t.Fatalf("expected dev secret, got %q", s.secret)
	}
}
