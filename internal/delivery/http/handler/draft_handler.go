package handler

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/domain/job"
	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

// DraftHandler serves the employer's job-creation wizard.
type DraftHandler struct {
	uc usecase.DraftUsecase
}

type createDraftRequest struct {
	Step int       `json:"step" validate:"gte=0,lte=20"`
	Data job.Draft `json:"data"`
}

type patchDraftRequest struct {
	Step *int      `json:"step" validate:"omitempty,gte=0,lte=20"`
	Data job.Draft `json:"data"`
}

type importDraftRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func NewDraftHandler(uc usecase.DraftUsecase) *DraftHandler {
	return &DraftHandler{uc: uc}
}

func (h *DraftHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Post("/employer/job-drafts/import", g.Auth, g.Employer, h.Import)
	r.Post("/employer/job-drafts", g.Auth, g.Employer, h.Create)
	r.Get("/employer/job-drafts", g.Auth, g.Employer, h.List)
	r.Get("/employer/job-drafts/:id", g.Auth, g.Employer, h.Get)
	r.Patch("/employer/job-drafts/:id", g.Auth, g.Employer, h.Patch)
	r.Delete("/employer/job-drafts/:id", g.Auth, g.Employer, h.Delete)
	r.Post("/employer/job-drafts/:id/publish", g.Auth, g.Employer, h.Publish)
}

func (h *DraftHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req createDraftRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	d, err := h.uc.Create(c.Context(), actor, req.Step, req.Data)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, d)
}

func (h *DraftHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	if items == nil {
		items = []usecase.JobDraft{}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *DraftHandler) Get(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	d, err := h.uc.Get(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, d)
}

func (h *DraftHandler) Patch(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req patchDraftRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	d, err := h.uc.Patch(c.Context(), actor, id, usecase.DraftPatch{Step: req.Step, Data: req.Data})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, d)
}

func (h *DraftHandler) Delete(c fiber.Ctx) error {
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
	return response.Success(c, fiber.StatusOK, "Draft deleted", nil)
}

func (h *DraftHandler) Publish(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	j, err := h.uc.Publish(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Job published", j)
}

func (h *DraftHandler) Import(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req importDraftRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	d, err := h.uc.Import(c.Context(), actor, req.URL)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, d)
}
