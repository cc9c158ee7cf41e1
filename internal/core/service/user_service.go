package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) Caller(ctx context.Context, userID string) (domain.Caller, error) {
	if userID == "" {
		return domain.Caller{}, domain.ErrUnauthenticated
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Caller{}, domain.ErrUnauthenticated
		}
		return domain.Caller{}, fmt.Errorf("load caller: %w", err)
	}
	return domain.Caller{UserID: user.ID, Role: user.Role}, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) UpdateRole(ctx context.Context, id, role string) (*domain.User, error) {
	r := domain.Role(role)
	if !r.Valid() {
		return nil, domain.Invalid("role must be one of: user admin")
	}
	user, err := s.repo.UpdateRole(ctx, id, r)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Str("role", role).Msg("user role updated")
	return user, nil
}

func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.Invalid("email is required")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == domain.RoleAdmin {
			return existing, nil
		}
		return s.repo.UpdateRole(ctx, existing.ID, domain.RoleAdmin)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	if strings.TrimSpace(name) == "" || password == "" {
		return nil, domain.Invalid("name and password are required to create an admin")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", email).Msg("admin account created")
	return created, nil
}
