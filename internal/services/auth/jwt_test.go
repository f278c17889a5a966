package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute)

	token, expiresAt, err := manager.GenerateAccessToken(7, "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("expected signed token with expiry")
	}

	claims, err := manager.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.Role != "user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", 15*time.Minute)
	verifier := NewJWTManager("secret-b", 15*time.Minute)

	token, _, err := issuer.GenerateAccessToken(7, "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)
	manager.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := manager.GenerateAccessToken(7, "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	manager.now = time.Now
	if _, err := manager.ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)

	if _, err := manager.ParseAccessToken(""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for empty token, got %v", err)
	}
	if _, err := manager.ParseAccessToken("not.a.token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for malformed token, got %v", err)
	}
}
