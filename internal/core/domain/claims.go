package domain

import "github.com/golang-jwt/jwt/v5"

const (
	TokenIssuer   = "voice-agent-control"
	TokenAudience = "voice-agent-users"

	// RefreshTokenType is the value of the "type" claim that marks a token
	// as a refresh token. Access tokens carry no "type" claim at all.
	RefreshTokenType = "refresh"
)

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"userType"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a long-lived refresh token. It is a
// distinct type so a refresh token can never be handed to code expecting
// access claims.
type RefreshClaims struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}
