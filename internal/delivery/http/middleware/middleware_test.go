package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/domain/user"
	"careerhub/internal/pkg/jwt"
	"careerhub/internal/pkg/response"
)

func newTestApp(logger *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{StructValidator: NewStructValidator()})
	app.Use(NewErrorMiddleware(logger).Middleware())
	return app
}

func decode(t *testing.T, resp *http.Response) response.SemanticResponse {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body response.SemanticResponse
	require.NoError(t, json.Unmarshal(b, &body))
	return body
}

type expiredJWT struct{ jwt.Service }

func (expiredJWT) ValidateAccessToken(string) (jwt.Claims, error) {
	return jwt.Claims{}, jwt.ErrTokenExpired
}

func TestAuthMiddleware(t *testing.T) {
	svc := jwt.NewHMACService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()
	access, err := svc.GenerateAccessToken(userID, "s@example.com", string(user.RoleStudent))
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)

	app := newTestApp(nil)
	auth := NewAuthMiddleware(svc)
	app.Get("/me", auth.Middleware(), func(c fiber.Ctx) error {
		actor, _ := ActorFrom(c)
		return c.SendString(actor.UserID.String() + "|" + string(actor.Role))
	})
	expired := NewAuthMiddleware(expiredJWT{})
	app.Get("/expired", expired.Middleware(), func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	tests := []struct {
		name    string
		path    string
		header  string
		status  int
		message string
	}{
		{"missing", "/me", "", fiber.StatusUnauthorized, "Unauthorized"},
		{"wrong scheme", "/me", "Basic " + access, fiber.StatusUnauthorized, "Unauthorized"},
		{"garbage", "/me", "Bearer not-a-token", fiber.StatusUnauthorized, "Invalid token"},
		{"refresh token", "/me", "Bearer " + refresh, fiber.StatusUnauthorized, "Invalid token"},
		{"expired", "/expired", "Bearer whatever", fiber.StatusUnauthorized, "Token expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.message, decode(t, resp).Message)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+access)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, userID.String()+"|student", string(b))
}

func TestOptionalAuth(t *testing.T) {
	svc := jwt.NewHMACService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	app := newTestApp(nil)
	app.Get("/jobs", NewAuthMiddleware(svc).Optional(), func(c fiber.Ctx) error {
		_, ok := ActorFrom(c)
		if ok {
			return c.SendString("user")
		}
		return c.SendString("anonymous")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "anonymous", string(b))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer broken")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app := newTestApp(nil)
	as := func(role user.Role) fiber.Handler {
		return func(c fiber.Ctx) error {
			if role != "" {
				c.Locals(CtxUserIDKey, uuid.New())
				c.Locals(CtxRoleKey, string(role))
			}
			return c.Next()
		}
	}
	ok := func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	app.Get("/student", as(user.RoleStudent), RequireRole(user.RoleEmployer, user.RoleUniversity), ok)
	app.Get("/employer", as(user.RoleEmployer), RequireRole(user.RoleEmployer, user.RoleUniversity), ok)
	app.Get("/anon", as(""), RequireRole(user.RoleEmployer), ok)

	for path, want := range map[string]int{
		"/student":  fiber.StatusForbidden,
		"/employer": fiber.StatusNoContent,
		"/anon":     fiber.StatusUnauthorized,
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestErrorMiddleware_HidesServerErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := newTestApp(logger)
	app.Get("/app500", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "pq: relation missing", nil, errors.New("boom"))
	})
	app.Get("/plain", func(fiber.Ctx) error { return errors.New("dial tcp: refused") })
	app.Get("/panic", func(fiber.Ctx) error { panic("nil map") })
	app.Get("/unavailable", func(fiber.Ctx) error {
		return NewAppError(fiber.StatusServiceUnavailable, "model offline", nil, nil)
	})

	for _, path := range []string{"/app500", "/plain", "/panic"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode, path)
		body := decode(t, resp)
		assert.Equal(t, response.MessageInternalServerError, body.Message, path)
		assert.Nil(t, body.Data, path)
	}
	assert.Len(t, hook.AllEntries(), 3)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/unavailable", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, response.MessageUnavailable, decode(t, resp).Message)
}

func TestErrorMiddleware_ClientErrors(t *testing.T) {
	app := newTestApp(nil)
	app.Get("/conflict", func(fiber.Ctx) error {
		return NewAppError(fiber.StatusConflict, "", fiber.Map{"field": "email"}, nil)
	})
	app.Get("/fiber404", func(fiber.Ctx) error { return fiber.ErrNotFound })

	type body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"min=8"`
	}
	app.Post("/bind", func(c fiber.Ctx) error {
		var in body
		if err := c.Bind().JSON(&in); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	got := decode(t, resp)
	assert.Equal(t, response.MessageConflict, got.Message)
	assert.Equal(t, map[string]any{"field": "email"}, got.Data)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/fiber404", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{"email":"nope","password":"short"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	got = decode(t, resp)
	assert.Equal(t, map[string]any{"email": "email", "password": "min=8"}, got.Data)
}

func TestAccessLog_SetsRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(logger).Middleware())
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "abc", hook.AllEntries()[0].Data["rid"])
	assert.Equal(t, fiber.StatusNoContent, hook.AllEntries()[0].Data["status"])
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("  Bearer   abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer", "Bearer  ", "Token abc"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
