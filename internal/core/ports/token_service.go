package ports

import "github.com/voicedesk/callcenter-api/internal/core/domain"

// TokenService issues and verifies the two token kinds.
//
// IssueRefreshToken registers the token with the registry before returning
// it, so no caller can ever hold a refresh token that is not revocable.
//
// Verification failures of any cause (signature, expiry, issuer, audience,
// malformed input, wrong token kind) collapse to domain.ErrInvalidToken;
// callers never learn why a token was rejected.
type TokenService interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(user *domain.User) (string, error)
	VerifyAccessToken(token string) (*domain.AccessClaims, error)
	VerifyRefreshToken(token string) (*domain.RefreshClaims, error)
}

// TokenRegistry is the process-wide authority on which refresh tokens are
// still honored. A refresh token absent from the registry is dead even if
// its signature and expiry still check out; that is what makes logout work.
type TokenRegistry interface {
	Register(token string)
	IsValid(token string) bool
	Revoke(token string)
	RevokeAllForUser(userID string) int
	SweepExpired() int
}
