package v1

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/handler"
)

// RegisterUsers covers accounts, profiles, the public directory and
// employer-student connections.
func RegisterUsers(r fiber.Router, h Handlers, g handler.Guards) {
	if r == nil {
		return
	}

	if h.Users != nil {
		h.Users.RegisterRoutes(r, g)
	}
	if h.Directory != nil {
		h.Directory.RegisterRoutes(r)
	}
	if h.Connections != nil {
		h.Connections.RegisterRoutes(r, g)
	}
}
