package ports

import (
	"context"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
//
// Find* methods only see active users; Deactivate is the soft delete that
// hides a record from them. Username/email uniqueness is enforced by the
// storage layer across active and inactive records alike.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindAllActive(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error)
	Deactivate(ctx context.Context, username string) error
	SetAPIKey(ctx context.Context, username, keyType, apiKey string) error
	SetTwoFA(ctx context.Context, username string, enabled bool) error
	UpdateLastLogin(ctx context.Context, username string) error
	UpdatePasswordHash(ctx context.Context, username, hash string) error
}
