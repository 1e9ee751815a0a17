package ports

import (
	"context"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
)

// CreateUserInput is the normalized payload for account creation.
// Optional fields left nil receive the defaults every account starts with.
type CreateUserInput struct {
	Username string
	Password string
	Name     string
	Email    string
	Role     string
	Settings *domain.Settings
	Features *domain.Features
	APIKeys  map[string]string
}

// UserService implements account management on top of the repository.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, username string) error
	SetAPIKey(ctx context.Context, username, keyType, apiKey string) error
	GetAPIKey(ctx context.Context, username, keyType string) (string, error)
	SetTwoFA(ctx context.Context, username string, enabled bool) error
	GetTwoFA(ctx context.Context, username string) (bool, error)
	TouchLastLogin(ctx context.Context, username string) error
}
