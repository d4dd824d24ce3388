package handler

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type HealthHandler struct {
	uc usecase.HealthUsecase
}

func NewHealthHandler(uc usecase.HealthUsecase) *HealthHandler {
	return &HealthHandler{uc: uc}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/health", h.Check)
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	st := h.uc.Check(c.Context())
	if !st.Healthy() {
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageUnavailable, st)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}
