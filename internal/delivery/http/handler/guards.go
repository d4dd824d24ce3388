package handler

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/middleware"
	"careerhub/internal/domain/user"
)

// Guards are attached per route rather than per group so public and
// protected routes can share a prefix.
type Guards struct {
	Auth     fiber.Handler
	Optional fiber.Handler

	Student    fiber.Handler
	Employer   fiber.Handler
	University fiber.Handler
	// Recruiter admits employers and university staff.
	Recruiter fiber.Handler
	// Member admits the roles that can hold connections.
	Member fiber.Handler
}

func NewGuards(authMw *middleware.AuthMiddleware) Guards {
	return Guards{
		Auth:       authMw.Middleware(),
		Optional:   authMw.Optional(),
		Student:    middleware.RequireRole(user.RoleStudent),
		Employer:   middleware.RequireRole(user.RoleEmployer),
		University: middleware.RequireRole(user.RoleUniversity),
		Recruiter:  middleware.RequireRole(user.RoleEmployer, user.RoleUniversity),
		Member:     middleware.RequireRole(user.RoleStudent, user.RoleEmployer),
	}
}
