package routes

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/handler"
	v1 "careerhub/internal/delivery/http/routes/v1"
)

type Registry struct {
	handlers v1.Handlers
	guards   handler.Guards
}

func NewRegistry(handlers v1.Handlers, guards handler.Guards) *Registry {
	return &Registry{handlers: handlers, guards: guards}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

// registerHealth keeps an unversioned health check for load balancers.
func (r *Registry) registerHealth(app *fiber.App) {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.handlers, r.guards)
}
