package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// RequireRole admits callers whose freshly loaded role is one of roles.
// It must run after LoadCaller; a request without a caller is rejected.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := c.Get(KeyCaller).(domain.Caller)
			if !ok {
				return domain.ErrUnauthenticated
			}
			for _, r := range roles {
				if caller.Role == r {
					return next(c)
				}
			}
			return domain.ErrForbidden
		}
	}
}

// AdminOnly guards management routes.
func AdminOnly() echo.MiddlewareFunc {
	return RequireRole(domain.RoleAdmin)
}
