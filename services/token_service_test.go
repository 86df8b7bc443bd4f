package services

import (
	"errors"
	"testing"
	"time"

	"qa-release-api/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:   "test-secret",
		Issuer:   "qa-release-api",
		Audience: "qa-release-portal",
		TTL:      8 * time.Hour,
	}
}

func newTestTokenService(now time.Time) *TokenService {
	svc := NewTokenService(testJWTConfig())
	svc.now = func() time.Time { return now }
	return svc
}

func TestIssueAndValidateCarriesIdentity(t *testing.T) {
	issuedAt := time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)
	svc := newTestTokenService(issuedAt)

	token, expiresAt, err := svc.Issue("1001", "ANITA RAO")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if want := issuedAt.Add(8 * time.Hour); !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiresAt)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if claims.EmpCode != "1001" {
		t.Fatalf("expected emp code 1001, got %q", claims.EmpCode)
	}
	if claims.EmpName != "ANITA RAO" {
		t.Fatalf("expected emp name ANITA RAO, got %q", claims.EmpName)
	}
	if claims.Name != "ANITA RAO" {
		t.Fatalf("expected standard name claim ANITA RAO, got %q", claims.Name)
	}
	if claims.Subject != "1001" {
		t.Fatalf("expected subject 1001, got %q", claims.Subject)
	}
	if claims.ID == "" {
		t.Fatal("expected a unique token id claim")
	}
}

func TestValidateExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)
	svc := newTestTokenService(issuedAt)

	token, _, err := svc.Issue("1001", "ANITA RAO")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(8*time.Hour - time.Minute) }
	if _, err := svc.Validate(token); err != nil {
		t.Fatalf("token should still be valid just before expiry: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(8*time.Hour + time.Minute) }
	if _, err := svc.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired just after expiry, got %v", err)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	now := time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)
	svc := newTestTokenService(now)

	token, _, err := svc.Issue("1001", "ANITA RAO")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	other := newTestTokenService(now)
	other.secret = []byte("a different secret")
	if _, err := other.Validate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong key, got %v", err)
	}
}

func TestValidateRejectsWrongIssuerAndAudience(t *testing.T) {
	now := time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)
	svc := newTestTokenService(now)

	token, _, err := svc.Issue("1001", "ANITA RAO")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	wrongIssuer := newTestTokenService(now)
	wrongIssuer.issuer = "someone-else"
	if _, err := wrongIssuer.Validate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong issuer, got %v", err)
	}

	wrongAudience := newTestTokenService(now)
	wrongAudience.audience = "another-portal"
	if _, err := wrongAudience.Validate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong audience, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(time.Now())
	if _, err := svc.Validate("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
