package handler

import (
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/middleware"
	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type ResumeHandler struct {
	uc usecase.ResumeUsecase
}

func NewResumeHandler(uc usecase.ResumeUsecase) *ResumeHandler {
	return &ResumeHandler{uc: uc}
}

func (h *ResumeHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Post("/resumes", g.Auth, g.Student, h.Upload)
	r.Get("/resumes", g.Auth, g.Student, h.List)
	r.Get("/resumes/primary", g.Auth, g.Student, h.Primary)
	r.Put("/resumes/:id/primary", g.Auth, g.Student, h.SetPrimary)
	r.Get("/resumes/:id/download", g.Auth, g.Member, h.Download)
	r.Delete("/resumes/:id", g.Auth, g.Student, h.Delete)
	r.Post("/resumes/:id/analyze", g.Auth, g.Student, h.Analyze)
	r.Get("/resumes/:id/analysis", g.Auth, g.Student, h.Analysis)
}

func (h *ResumeHandler) Upload(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing file", nil, err)
	}
	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable file", nil, err)
	}
	defer f.Close()

	res, err := h.uc.Upload(c.Context(), actor, usecase.UploadInput{
		FileName:     filepath.Base(fh.Filename),
		DeclaredType: fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Body:         f,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, res)
}

func (h *ResumeHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ResumeHandler) Primary(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	res, err := h.uc.Primary(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *ResumeHandler) SetPrimary(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.uc.SetPrimary(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

// Download streams the stored file rather than the JSON envelope.
func (h *ResumeHandler) Download(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	res, body, err := h.uc.Download(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	c.Set(fiber.HeaderContentType, res.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.FileName))
	return c.Status(fiber.StatusOK).Send(body)
}

func (h *ResumeHandler) Delete(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), actor, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Resume deleted", nil)
}

func (h *ResumeHandler) Analyze(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.uc.Analyze(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusAccepted, "Analysis queued", res)
}

func (h *ResumeHandler) Analysis(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	a, err := h.uc.Analysis(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, a)
}
