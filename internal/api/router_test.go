package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const testSecret = "router-secret"

// roleStore answers Caller from a fixed id → role table.
type roleStore struct {
	ports.UserService
	roles map[string]domain.Role
}

func (s roleStore) Caller(_ context.Context, id string) (domain.Caller, error) {
	role, ok := s.roles[id]
	if !ok {
		return domain.Caller{}, domain.ErrUnauthenticated
	}
	return domain.Caller{UserID: id, Role: role}, nil
}

func (s roleStore) ListUsers(context.Context) ([]*domain.User, error) {
	return []*domain.User{}, nil
}

type listOnlyWorkflows struct {
	ports.WorkflowService
}

func (listOnlyWorkflows) List(context.Context) ([]*domain.Workflow, error) {
	return nil, nil
}

type listOnlyTaskTypes struct {
	ports.TaskTypeService
}

func (listOnlyTaskTypes) List(context.Context) ([]*domain.TaskType, error) {
	return nil, nil
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func newTestRouter() http.Handler {
	return NewRouter(Deps{
		Logger:      zerolog.Nop(),
		JWTSecret:   testSecret,
		Users:       roleStore{roles: map[string]domain.Role{"admin-1": domain.RoleAdmin, "user-1": domain.RoleUser}},
		Workflows:   listOnlyWorkflows{},
		TaskTypes:   listOnlyTaskTypes{},
		MaxUploadMB: 1,
		Registry:    prometheus.NewRegistry(),
	})
}

func TestRouter_Gating(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		code   int
	}{
		{"liveness is public", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics are public", http.MethodGet, "/metrics", "", http.StatusOK},
		{"tasks need a token", http.MethodGet, "/tasks", "", http.StatusUnauthorized},
		{"unknown user is rejected", http.MethodGet, "/task-types", "ghost", http.StatusUnauthorized},
		{"task types readable by users", http.MethodGet, "/task-types", "user-1", http.StatusOK},
		{"task type writes are admin only", http.MethodPost, "/task-types", "user-1", http.StatusForbidden},
		{"workflows are admin only", http.MethodGet, "/workflows", "user-1", http.StatusForbidden},
		{"admin lists workflows", http.MethodGet, "/workflows", "admin-1", http.StatusOK},
		{"user list is admin only", http.MethodGet, "/users", "user-1", http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/users", "admin-1", http.StatusOK},
		{"test email is admin only", http.MethodPost, "/email/test", "user-1", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
			if tc.user != "" {
				req.Header.Set("Authorization", bearer(t, tc.user))
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_UploadBodyLimit(t *testing.T) {
	router := newTestRouter()

	body := strings.Repeat("x", 2<<20)
	req := httptest.NewRequest(http.MethodPost, "/tasks/task-1/files", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}
