package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// Context keys populated by Auth and LoadCaller.
const (
	KeyUserID = "user_id"
	KeyCaller = "caller"
	KeyRole   = "role"
)

// CallerLoader resolves the current role of an authenticated user.
type CallerLoader interface {
	Caller(ctx context.Context, userID string) (domain.Caller, error)
}

// Auth validates the JWT and injects the user id into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, _ := claims[KeyUserID].(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
			}
			c.Set(KeyUserID, userID)

			return next(c)
		}
	}
}

// LoadCaller fetches the caller's role from the identity store on every
// request. Must run after Auth.
func LoadCaller(users CallerLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(KeyUserID).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			caller, err := users.Caller(c.Request().Context(), userID)
			if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrUserNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "user no longer exists")
			}
			if err != nil {
				return err
			}

			c.Set(KeyCaller, caller)
			c.Set(KeyRole, string(caller.Role))
			return next(c)
		}
	}
}
