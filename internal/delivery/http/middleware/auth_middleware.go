package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"careerhub/internal/domain/user"
	"careerhub/internal/pkg/jwt"
	"careerhub/internal/usecase"
)

const (
	CtxUserIDKey = "user_id"
	CtxEmailKey  = "email"
	CtxRoleKey   = "role"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

// Middleware rejects requests without a valid access token.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		if err := m.authenticate(c, token); err != nil {
			return err
		}
		return c.Next()
	}
}

// Optional authenticates when a token is present and lets anonymous
// requests through. A malformed or expired token is still an error.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get("Authorization"))
		if !ok {
			return c.Next()
		}
		if err := m.authenticate(c, token); err != nil {
			return err
		}
		return c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c fiber.Ctx, token string) error {
	claims, err := m.jwt.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
		}
		return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
	}

	c.Locals(CtxUserIDKey, claims.UserID)
	c.Locals(CtxEmailKey, claims.Email)
	c.Locals(CtxRoleKey, claims.Role)
	return nil
}

// RequireRole must run after Middleware.
func RequireRole(roles ...user.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		for _, r := range roles {
			if actor.Is(r) {
				return c.Next()
			}
		}
		return NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
	}
}

// ActorFrom returns the authenticated caller, if any.
func ActorFrom(c fiber.Ctx) (usecase.Actor, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return usecase.Actor{}, false
	}
	role, _ := c.Locals(CtxRoleKey).(string)
	return usecase.Actor{UserID: id, Role: user.Role(role)}, true
}

func BearerToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
