package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
	"github.com/voicedesk/callcenter-api/internal/core/ports"
)

// emptyAPIKeys returns the named key slots every account starts with.
func emptyAPIKeys() map[string]string {
	return map[string]string{
		domain.KeyTypeVapi:       "",
		domain.KeyTypeOpenAI:     "",
		domain.KeyTypeElevenLabs: "",
		domain.KeyTypeDeepgram:   "",
	}
}

// UserService implements account management.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log}
}

// Create hashes the password and inserts the account with its defaults:
// role User unless stated otherwise, notifications on, 2FA off, all api-key
// slots present but empty. Duplicate username/email surface as the Conflict
// errors raised by the repository's unique indexes.
func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	settings := domain.Settings{NotificationsEnabled: true}
	if input.Settings != nil {
		settings = *input.Settings
	}

	features := domain.Features{}
	if input.Features != nil {
		features = *input.Features
	}

	apiKeys := emptyAPIKeys()
	for k, v := range input.APIKeys {
		apiKeys[k] = v
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     input.Username,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Settings:     settings,
		Features:     features,
		APIKeys:      apiKeys,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Str("role", created.Role).Msg("user created")
	return created, nil
}

func (s *UserService) Get(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.FindAllActive(ctx)
}

func (s *UserService) Update(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error) {
	if update.IsEmpty() {
		return s.repo.FindByUsername(ctx, username)
	}
	return s.repo.Update(ctx, username, update)
}

// Delete soft-deletes: the record stays (and keeps holding its username and
// email under the unique indexes) but disappears from every lookup.
func (s *UserService) Delete(ctx context.Context, username string) error {
	if err := s.repo.Deactivate(ctx, username); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("user deactivated")
	return nil
}

func (s *UserService) SetAPIKey(ctx context.Context, username, keyType, apiKey string) error {
	return s.repo.SetAPIKey(ctx, username, keyType, apiKey)
}

// GetAPIKey returns the stored key for the slot, or "" when the slot was
// never filled.
func (s *UserService) GetAPIKey(ctx context.Context, username, keyType string) (string, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return user.APIKeys[keyType], nil
}

func (s *UserService) SetTwoFA(ctx context.Context, username string, enabled bool) error {
	return s.repo.SetTwoFA(ctx, username, enabled)
}

func (s *UserService) GetTwoFA(ctx context.Context, username string) (bool, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return user.Settings.TwoFAEnabled, nil
}

func (s *UserService) TouchLastLogin(ctx context.Context, username string) error {
	return s.repo.UpdateLastLogin(ctx, username)
}
