package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/voicedesk/callcenter-api/internal/api/metrics"
	"github.com/voicedesk/callcenter-api/internal/core/domain"
	"github.com/voicedesk/callcenter-api/internal/core/ports"
)

// AuthService implements the session lifecycle: login, refresh, logout,
// logout-all, profile and password change.
type AuthService struct {
	repo     ports.UserRepository
	tokens   ports.TokenService
	registry ports.TokenRegistry
	hasher   ports.PasswordHasher
	log      zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, registry ports.TokenRegistry, hasher ports.PasswordHasher, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		registry: registry,
		hasher:   hasher,
		log:      log,
	}
}

// Login verifies the credentials and mints both tokens. An unknown or
// inactive username and a wrong password are indistinguishable to the
// caller: both come back as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, username); err != nil {
		// The session is already established; losing the timestamp is not
		// worth failing the login over.
		s.log.Warn().Err(err).Str("username", username).Msg("could not update last login")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", username).Msg("login successful")

	return &ports.LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a refresh token for a fresh access token. The refresh
// token must verify, still be present in the registry, and belong to a user
// that is still active; any shortfall collapses to ErrInvalidRefreshToken.
// The refresh token is reused, not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.RefreshResult, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidRefreshToken
	}

	if !s.registry.IsValid(refreshToken) {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		s.log.Debug().Str("username", claims.Username).Msg("refresh token not in registry")
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	return &ports.RefreshResult{User: user, AccessToken: accessToken}, nil
}

// Logout revokes a single refresh token. Revoking a token that is absent is
// a no-op, so double logout succeeds from the client's point of view.
func (s *AuthService) Logout(refreshToken string) {
	s.registry.Revoke(refreshToken)
}

// LogoutAll revokes every refresh token bound to the user and returns how
// many were removed.
func (s *AuthService) LogoutAll(userID string) int {
	n := s.registry.RevokeAllForUser(userID)
	s.log.Info().Str("user_id", userID).Int("revoked", n).Msg("logged out from all devices")
	return n
}

// Profile returns the active user record for the given id.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// ChangePassword overwrites the stored hash after verifying the current
// password. Outstanding refresh tokens deliberately stay valid; sessions on
// other devices survive a password change.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrWrongPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePasswordHash(ctx, username, hash); err != nil {
		return err
	}

	s.log.Info().Str("username", username).Msg("password changed; existing sessions kept")
	return nil
}
