package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
)

// RequireAdmin allows the request through only when the authenticated
// claims carry the Admin role. Must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role != domain.RoleAdmin {
				return c.JSON(http.StatusForbidden, authError{
					Error: "Admin access required",
					Code:  "ADMIN_REQUIRED",
				})
			}
			return next(c)
		}
	}
}

// RequireOwnershipOrAdmin allows admins through unconditionally and other
// users only when the :username route parameter is their own. Must run
// after Auth.
func RequireOwnershipOrAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			username, _ := c.Get(CtxUsername).(string)

			if role == domain.RoleAdmin || (username != "" && username == c.Param("username")) {
				return next(c)
			}

			return c.JSON(http.StatusForbidden, authError{
				Error: "Access denied. You can only access your own data.",
				Code:  "ACCESS_DENIED",
			})
		}
	}
}
