package handler

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type AnalysisHandler struct {
	uc usecase.AnalysisUsecase
}

func NewAnalysisHandler(uc usecase.AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

func (h *AnalysisHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Get("/jobs/:id/analysis", g.Auth, g.Student, h.JobAnalysis)
	r.Get("/employer/applications/:id/analysis", g.Auth, g.Employer, h.ApplicationAnalysis)
}

func (h *AnalysisHandler) JobAnalysis(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	rep, err := h.uc.JobAnalysis(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, rep)
}

func (h *AnalysisHandler) ApplicationAnalysis(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	rep, err := h.uc.ApplicationAnalysis(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, rep)
}
