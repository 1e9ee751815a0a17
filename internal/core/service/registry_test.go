package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
)

func signRefreshToken(t *testing.T, secret, userID string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := domain.RefreshClaims{
		UserID:    userID,
		Username:  "user-" + userID,
		TokenType: domain.RefreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    domain.TokenIssuer,
			Audience:  jwt.ClaimStrings{domain.TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRegistry_RegisterRevoke(t *testing.T) {
	reg := NewRefreshTokenRegistry("secret", zerolog.Nop())
	token := signRefreshToken(t, "secret", "u1", time.Hour)

	if reg.IsValid(token) {
		t.Fatalf("token valid before registration")
	}

	reg.Register(token)
	reg.Register(token) // idempotent
	if !reg.IsValid(token) {
		t.Fatalf("registered token not valid")
	}

	reg.Revoke(token)
	if reg.IsValid(token) {
		t.Fatalf("revoked token still valid")
	}

	// Revoking an absent token is a no-op, not an error.
	reg.Revoke(token)
	reg.Revoke("never-registered")
}

func TestRegistry_RevokeAllForUser(t *testing.T) {
	reg := NewRefreshTokenRegistry("secret", zerolog.Nop())

	alice1 := signRefreshToken(t, "secret", "u-alice", time.Hour)
	alice2 := signRefreshToken(t, "secret", "u-alice", 2*time.Hour)
	bob := signRefreshToken(t, "secret", "u-bob", time.Hour)
	reg.Register(alice1)
	reg.Register(alice2)
	reg.Register(bob)
	reg.Register("garbage-entry")

	// Garbage that cannot even be decoded is purged along with the
	// user's tokens.
	if n := reg.RevokeAllForUser("u-alice"); n != 3 {
		t.Fatalf("expected 3 revoked, got %d", n)
	}
	if reg.IsValid(alice1) || reg.IsValid(alice2) {
		t.Fatalf("alice tokens survived revoke-all")
	}
	if !reg.IsValid(bob) {
		t.Fatalf("bob token removed by alice revoke-all")
	}
	if reg.IsValid("garbage-entry") {
		t.Fatalf("garbage entry survived revoke-all")
	}
}

func TestRegistry_SweepExpired(t *testing.T) {
	reg := NewRefreshTokenRegistry("secret", zerolog.Nop())

	live := signRefreshToken(t, "secret", "u1", time.Hour)
	expired := signRefreshToken(t, "secret", "u1", -time.Minute)
	forged := signRefreshToken(t, "other-secret", "u1", time.Hour)
	reg.Register(live)
	reg.Register(expired)
	reg.Register(forged)

	if n := reg.SweepExpired(); n != 2 {
		t.Fatalf("expected 2 swept, got %d", n)
	}
	if !reg.IsValid(live) {
		t.Fatalf("live token swept")
	}
	if reg.IsValid(expired) || reg.IsValid(forged) {
		t.Fatalf("dead tokens survived sweep")
	}

	if n := reg.SweepExpired(); n != 0 {
		t.Fatalf("second sweep removed %d tokens", n)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRefreshTokenRegistry("secret", zerolog.Nop())
	token := signRefreshToken(t, "secret", "u1", time.Hour)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			reg.Register(token)
			reg.Revoke(token)
		}
		close(done)
	}()
	for i := 0; i < 500; i++ {
		reg.IsValid(token)
		reg.SweepExpired()
	}
	<-done
}
