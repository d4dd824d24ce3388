package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type ApplicationHandler struct {
	apps       usecase.ApplicationUsecase
	interviews usecase.InterviewUsecase
}

type applyRequest struct {
	JobID       uuid.UUID  `json:"job_id" validate:"required"`
	ResumeID    *uuid.UUID `json:"resume_id"`
	CoverLetter string     `json:"cover_letter" validate:"max=10000"`
}

type applicationStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type answerRequest struct {
	Text string `json:"text" validate:"required"`
}

func NewApplicationHandler(apps usecase.ApplicationUsecase, interviews usecase.InterviewUsecase) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, interviews: interviews}
}

func (h *ApplicationHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Post("/applications", g.Auth, g.Student, h.Apply)
	r.Get("/applications", g.Auth, g.Student, h.ListMine)
	r.Get("/applications/:id", g.Auth, h.Get)
	r.Patch("/applications/:id/status", g.Auth, g.Employer, h.UpdateStatus)

	r.Post("/applications/:id/interview/start", g.Auth, g.Student, h.StartInterview)
	r.Get("/applications/:id/interview", g.Auth, g.Student, h.GetInterview)
	r.Post("/applications/:id/interview/answers", g.Auth, g.Student, h.Answer)
	r.Post("/applications/:id/interview/report", g.Auth, g.Student, h.GenerateReport)
	r.Get("/applications/:id/interview/report", g.Auth, g.Member, h.GetReport)
}

func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req applyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	app, err := h.apps.Apply(c.Context(), actor, usecase.ApplyInput{
		JobID:       req.JobID,
		ResumeID:    req.ResumeID,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, app)
}

func (h *ApplicationHandler) ListMine(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.apps.ListMine(c.Context(), actor, c.Query("status"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ApplicationHandler) Get(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	app, err := h.apps.Get(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, app)
}

func (h *ApplicationHandler) UpdateStatus(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req applicationStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	app, err := h.apps.UpdateStatus(c.Context(), actor, id, req.Status)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, app)
}

func (h *ApplicationHandler) StartInterview(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	iv, err := h.interviews.Start(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, iv)
}

func (h *ApplicationHandler) GetInterview(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	iv, err := h.interviews.Get(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, iv)
}

func (h *ApplicationHandler) Answer(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req answerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	res, err := h.interviews.Answer(c.Context(), actor, id, req.Text)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *ApplicationHandler) GenerateReport(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	rep, err := h.interviews.GenerateReport(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, rep)
}

func (h *ApplicationHandler) GetReport(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	rep, err := h.interviews.GetReport(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, rep)
}
