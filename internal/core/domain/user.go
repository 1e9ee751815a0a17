package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// API key slots a user may store for the external call/SMS providers.
// The core never validates or uses these values, it only stores them.
const (
	KeyTypeVapi       = "vapi_key"
	KeyTypeOpenAI     = "openai_key"
	KeyTypeElevenLabs = "elevenlabs_key"
	KeyTypeDeepgram   = "deepgram_key"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid or expired token")
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
var ErrRefreshTokenMissing = errors.New("refresh token required")
var ErrWrongPassword = errors.New("current password is incorrect")
var ErrUserNotFound = errors.New("user not found")
var ErrUsernameExists = errors.New("username already exists")
var ErrEmailExists = errors.New("email already exists")

// Settings are per-user dashboard preferences.
type Settings struct {
	TwoFAEnabled         bool `json:"two_fa_enabled"`
	NotificationsEnabled bool `json:"notifications_enabled"`
}

// Features are the optional dashboard capabilities an admin can grant.
type Features struct {
	SMSCampaigns       bool `json:"smsCampaigns"`
	ChatbotTranscripts bool `json:"chatbotTranscripts"`
	AIVideoGeneration  bool `json:"aiVideoGeneration"`
}

// User models a dashboard account. PasswordHash never serializes; every
// endpoint returns users through this type so the hash cannot leak.
type User struct {
	ID           string            `json:"_id"`
	Username     string            `json:"username"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	Role         string            `json:"userType"`
	IsActive     bool              `json:"is_active"`
	Settings     Settings          `json:"settings"`
	Features     Features          `json:"features"`
	APIKeys      map[string]string `json:"apiKeys"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	LastLoginAt  *time.Time        `json:"last_login"`
}

// UserUpdate carries a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Role     *string
	Settings *Settings
	Features *Features
	APIKeys  map[string]string
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Role == nil &&
		u.Settings == nil && u.Features == nil && u.APIKeys == nil
}
