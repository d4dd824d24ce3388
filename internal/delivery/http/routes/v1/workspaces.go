package v1

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/handler"
)

func RegisterCareerFairs(r fiber.Router, h Handlers, g handler.Guards) {
	if r == nil || h.CareerFairs == nil {
		return
	}
	h.CareerFairs.RegisterRoutes(r, g)
}

func RegisterWorkspaces(r fiber.Router, h Handlers, g handler.Guards) {
	if r == nil {
		return
	}

	if h.Employer != nil {
		h.Employer.RegisterRoutes(r, g)
	}
	if h.University != nil {
		h.University.RegisterRoutes(r, g)
	}
}
