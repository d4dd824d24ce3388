package handler

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/middleware"
	"careerhub/internal/domain/job"
	"careerhub/internal/domain/matching"
	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type JobsHandler struct {
	uc usecase.JobUsecase
}

func NewJobsHandler(uc usecase.JobUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

// RegisterRoutes registers the static /jobs paths ahead of /jobs/:id.
func (h *JobsHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Get("/jobs", g.Optional, h.HandleListJobs)
	r.Post("/jobs", g.Auth, g.Employer, h.Create)
	r.Get("/jobs/saved", g.Auth, g.Student, h.ListSaved)
	r.Get("/jobs/recommendations", g.Auth, g.Student, h.Recommendations)

	r.Get("/jobs/:id", g.Optional, h.Get)
	r.Put("/jobs/:id", g.Auth, g.Employer, h.Update)
	r.Delete("/jobs/:id", g.Auth, g.Employer, h.Delete)
	r.Put("/jobs/:id/matching-weights", g.Auth, g.Employer, h.UpdateWeights)

	r.Get("/jobs/:id/save", g.Auth, g.Student, h.IsSaved)
	r.Post("/jobs/:id/save", g.Auth, g.Student, h.Save)
	r.Delete("/jobs/:id/save", g.Auth, g.Student, h.Unsave)
	r.Get("/jobs/:id/vector-score", g.Auth, g.Student, h.VectorScore)
}

func (h *JobsHandler) HandleListJobs(c fiber.Ctx) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	companyID, err := queryUUID(c, "company_id")
	if err != nil {
		return err
	}
	salaryMin, err := queryIntPtr(c, "salary_min")
	if err != nil {
		return err
	}
	salaryMax, err := queryIntPtr(c, "salary_max")
	if err != nil {
		return err
	}

	items, total, err := h.uc.List(c.Context(), optionalActor(c), usecase.JobListParams{
		Keyword:      c.Query("keyword"),
		Types:        parseListQuery(c.Query("job_type")),
		Industry:     c.Query("industry"),
		CompanySize:  c.Query("company_size"),
		RemoteOption: c.Query("remote_option"),
		Location:     c.Query("location"),
		CompanyID:    companyID,
		SalaryMin:    salaryMin,
		SalaryMax:    salaryMax,
		SortBy:       c.Query("sort_by"),
		PageParams:   p,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return paged(c, items, total, p, 20)
}

func (h *JobsHandler) Get(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	d, err := h.uc.Get(c.Context(), optionalActor(c), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, d)
}

func (h *JobsHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req job.Draft
	if err := bindBody(c, &req); err != nil {
		return err
	}

	j, err := h.uc.Create(c.Context(), actor, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, j)
}

func (h *JobsHandler) Update(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req job.Draft
	if err := bindBody(c, &req); err != nil {
		return err
	}

	j, err := h.uc.Update(c.Context(), actor, id, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, j)
}

func (h *JobsHandler) Delete(c fiber.Ctx) error {
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
	return response.Success(c, fiber.StatusOK, "Job deactivated", nil)
}

func (h *JobsHandler) UpdateWeights(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req matching.PartialWeights
	if err := bindBody(c, &req); err != nil {
		return err
	}

	w, err := h.uc.UpdateWeights(c.Context(), actor, id, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, w)
}

func (h *JobsHandler) ListSaved(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c)
	if err != nil {
		return err
	}

	items, total, err := h.uc.ListSaved(c.Context(), actor, p)
	if err != nil {
		return mapUsecaseError(err)
	}
	return paged(c, items, total, p, 20)
}

func (h *JobsHandler) IsSaved(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	saved, err := h.uc.IsSaved(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"saved": saved})
}

func (h *JobsHandler) Save(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Save(c.Context(), actor, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"saved": true})
}

func (h *JobsHandler) Unsave(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Unsave(c.Context(), actor, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"saved": false})
}

func (h *JobsHandler) Recommendations(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, err := parseQueryIntStrict(c, "limit", 10)
	if err != nil {
		return err
	}
	if limit < 1 || limit > 50 {
		return middleware.NewAppError(fiber.StatusBadRequest, "limit must be between 1 and 50", nil, nil)
	}

	items, err := h.uc.Recommendations(c.Context(), actor, limit)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *JobsHandler) VectorScore(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	resumeID, err := queryUUID(c, "resume_id")
	if err != nil {
		return err
	}

	score, err := h.uc.VectorScore(c.Context(), actor, id, resumeID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, score)
}
