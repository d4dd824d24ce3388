package routes

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/handler"
	v1 "careerhub/internal/delivery/http/routes/v1"
)

func RegisterV1(r fiber.Router, handlers v1.Handlers, guards handler.Guards) {
	if r == nil {
		return
	}

	v1.Register(r, handlers, guards)
}
