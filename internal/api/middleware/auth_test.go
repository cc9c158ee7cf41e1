package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
)

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, "secret")

	rec, c, called := runAuth(t, "Bearer "+token)

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.Get(KeyUserID) != "user-1" {
		t.Fatalf("user_id not set")
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := signToken(t, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}, "secret")
	wrongSecret := signToken(t, jwt.MapClaims{"user_id": "user-1"}, "other")
	noSubject := signToken(t, jwt.MapClaims{"role": "admin"}, "secret")

	cases := map[string]string{
		"missing header":      "",
		"wrong scheme":        "Token abc",
		"garbage token":       "Bearer not-a-token",
		"expired":             "Bearer " + expired,
		"wrong secret":        "Bearer " + wrongSecret,
		"no user id in token": "Bearer " + noSubject,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _, called := runAuth(t, header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

type loaderFunc func(ctx context.Context, userID string) (domain.Caller, error)

func (f loaderFunc) Caller(ctx context.Context, userID string) (domain.Caller, error) {
	return f(ctx, userID)
}

func TestLoadCaller_SetsFreshRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(KeyUserID, "user-1")

	loader := loaderFunc(func(_ context.Context, id string) (domain.Caller, error) {
		return domain.Caller{UserID: id, Role: domain.RoleAdmin}, nil
	})

	err := LoadCaller(loader)(func(c echo.Context) error {
		caller, _ := c.Get(KeyCaller).(domain.Caller)
		if caller.UserID != "user-1" || !caller.IsAdmin() {
			t.Fatalf("unexpected caller %+v", caller)
		}
		if c.Get(KeyRole) != "admin" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestLoadCaller_DeletedUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(KeyUserID, "gone")

	loader := loaderFunc(func(context.Context, string) (domain.Caller, error) {
		return domain.Caller{}, domain.ErrUnauthenticated
	})

	err := LoadCaller(loader)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestLoadCaller_StoreFailurePropagates(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(KeyUserID, "user-1")
	boom := errors.New("mongo down")

	err := LoadCaller(loaderFunc(func(context.Context, string) (domain.Caller, error) {
		return domain.Caller{}, boom
	}))(func(echo.Context) error { return nil })(c)

	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
