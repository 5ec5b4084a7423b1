package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ErlanBelekov/geoquiz/internal/auth"
	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const testKey = "auth-test-secret-at-least-32-chars!!"

var alice = domain.Identity{UserID: "user-1", Email: "alice@example.com"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc := auth.NewTokenService([]byte(testKey), 0)

	tok, err := svc.Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != alice {
		t.Errorf("identity = %+v, want %+v", got, alice)
	}
}

func TestVerify_ExpiredAfterTTL(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewTokenService([]byte(testKey), 24*time.Hour, auth.WithClock(fixedClock(issuedAt)))

	tok, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	justBefore := auth.NewTokenService([]byte(testKey), 24*time.Hour,
		auth.WithClock(fixedClock(issuedAt.Add(24*time.Hour-time.Second))))
	if _, err := justBefore.Verify(tok); err != nil {
		t.Errorf("token should still be valid one second before expiry: %v", err)
	}

	after := auth.NewTokenService([]byte(testKey), 24*time.Hour,
		auth.WithClock(fixedClock(issuedAt.Add(24*time.Hour+time.Second))))
	if _, err := after.Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid after 24h, got %v", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	tok, err := auth.NewTokenService([]byte("another-secret-that-is-32-chars!!"), 0).Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = auth.NewTokenService([]byte(testKey), 0).Verify(tok)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
	if domain.KindOf(err) != domain.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", domain.KindOf(err))
	}
}

func TestVerify_Garbage(t *testing.T) {
	_, err := auth.NewTokenService([]byte(testKey), 0).Verify("not.a.jwt")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   "geoquiz",
		"sub":   "user-1",
		"email": "alice@example.com",
	}).SignedString([]byte(testKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := auth.NewTokenService([]byte(testKey), 0).Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid for token without exp, got %v", err)
	}
}

func TestVerify_MissingEmail(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "geoquiz",
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := auth.NewTokenService([]byte(testKey), 0).Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid for token without email, got %v", err)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"iss":   "geoquiz",
		"sub":   "user-1",
		"email": "alice@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := auth.NewTokenService([]byte(testKey), 0).Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid for alg=none, got %v", err)
	}
}
