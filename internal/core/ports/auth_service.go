package ports

import (
	"context"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
)

// LoginResult is the successful outcome of a credential login.
type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// RefreshResult is the successful outcome of a token refresh. The refresh
// token itself is reused, not rotated, so only the access token is new.
type RefreshResult struct {
	User        *domain.User
	AccessToken string
}

// AuthService orchestrates the session lifecycle.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Logout(refreshToken string)
	LogoutAll(userID string) int
	Profile(ctx context.Context, userID string) (*domain.User, error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
}

// PasswordHasher hides the at-rest credential hashing scheme.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
