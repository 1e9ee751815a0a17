package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voicedesk/callcenter-api/internal/core/ports"
)

// Context keys set by Auth for downstream middleware and handlers.
const (
	CtxUserID   = "userId"
	CtxUsername = "username"
	CtxRole     = "userType"
	CtxEmail    = "email"
)

type authError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Auth requires a verifiable bearer access token and injects its claims
// into the request context. A missing token and an invalid one are
// distinguished here (TOKEN_MISSING vs TOKEN_INVALID) even though the
// verifier itself never says why a token failed.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, authError{
					Error: "Access token required",
					Code:  "TOKEN_MISSING",
				})
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, authError{
					Error: "Access token required",
					Code:  "TOKEN_MISSING",
				})
			}

			claims, err := tokens.VerifyAccessToken(parts[1])
			if err != nil {
				return c.JSON(http.StatusForbidden, authError{
					Error: "Invalid or expired token",
					Code:  "TOKEN_INVALID",
				})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxUsername, claims.Username)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxEmail, claims.Email)

			return next(c)
		}
	}
}
