package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// UserService covers identity operations beyond credentials.
type UserService interface {
	// Caller loads the current role of userID; stale token claims are never trusted.
	Caller(ctx context.Context, userID string) (domain.Caller, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)
	// EnsureAdmin creates an admin account or promotes the existing one with that email.
	EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error)
}
