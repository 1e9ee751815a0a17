package service

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/voicedesk/callcenter-api/internal/api/metrics"
	"github.com/voicedesk/callcenter-api/internal/core/domain"
)

// RefreshTokenRegistry is the in-process set of refresh tokens that are
// still honored. It is constructed once at startup and injected wherever
// revocation state is needed; it does not survive a restart, which is an
// accepted tradeoff for a single-instance deployment (after a restart every
// client simply has to log in again).
type RefreshTokenRegistry struct {
	mu     sync.Mutex
	tokens map[string]struct{}
	secret []byte
	log    zerolog.Logger
}

func NewRefreshTokenRegistry(secret string, log zerolog.Logger) *RefreshTokenRegistry {
	return &RefreshTokenRegistry{
		tokens: make(map[string]struct{}),
		secret: []byte(secret),
		log:    log,
	}
}

// Register adds a token to the registry. Idempotent.
func (r *RefreshTokenRegistry) Register(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = struct{}{}
	metrics.RefreshRegistrySize.Set(float64(len(r.tokens)))
}

// IsValid reports whether the token is still honored.
func (r *RefreshTokenRegistry) IsValid(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tokens[token]
	return ok
}

// Revoke removes a single token. No-op if it was never registered.
func (r *RefreshTokenRegistry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; ok {
		delete(r.tokens, token)
		metrics.TokensRevokedTotal.WithLabelValues("logout").Inc()
		metrics.RefreshRegistrySize.Set(float64(len(r.tokens)))
	}
}

// RevokeAllForUser removes every registered token whose embedded userId
// matches. The match is a best-effort decode without signature or expiry
// checks; entries that fail to decode at all are garbage and are removed
// too. Returns the number of tokens removed.
func (r *RefreshTokenRegistry) RevokeAllForUser(userID string) int {
	parser := jwt.NewParser()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token := range r.tokens {
		claims := &domain.RefreshClaims{}
		if _, _, err := parser.ParseUnverified(token, claims); err != nil {
			delete(r.tokens, token)
			removed++
			continue
		}
		if claims.UserID == userID {
			delete(r.tokens, token)
			removed++
		}
	}

	if removed > 0 {
		metrics.TokensRevokedTotal.WithLabelValues("logout_all").Add(float64(removed))
		metrics.RefreshRegistrySize.Set(float64(len(r.tokens)))
	}
	return removed
}

// SweepExpired fully verifies every registered token and drops the ones
// that no longer pass (expired, or garbage that never should have been
// there). Housekeeping only: an expired token is already rejected at
// refresh time whether or not it has been swept.
func (r *RefreshTokenRegistry) SweepExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token := range r.tokens {
		claims := &domain.RefreshClaims{}
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return r.secret, nil
		}, jwt.WithExpirationRequired())
		if err != nil {
			delete(r.tokens, token)
			removed++
		}
	}

	if removed > 0 {
		metrics.TokensRevokedTotal.WithLabelValues("sweep").Add(float64(removed))
		metrics.RefreshRegistrySize.Set(float64(len(r.tokens)))
	}
	return removed
}

// StartSweeper runs SweepExpired on a fixed interval until ctx is
// cancelled. Sweep outcomes are logged, never surfaced to requests.
func (r *RefreshTokenRegistry) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.SweepExpired(); n > 0 {
					r.log.Info().Int("removed", n).Msg("swept expired refresh tokens")
				}
			}
		}
	}()
}
