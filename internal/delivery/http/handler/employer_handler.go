package handler

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type EmployerHandler struct {
	uc usecase.EmployerUsecase
}

type companyRequest struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string           `json:"description"`
	Industry    *string           `json:"industry" validate:"omitempty,max=100"`
	Website     *string           `json:"website" validate:"omitempty,url"`
	LogoURL     *string           `json:"logo_url" validate:"omitempty,url"`
	Location    *string           `json:"location"`
	Size        *string           `json:"size"`
	FoundedYear *int              `json:"founded_year"`
	SocialLinks map[string]string `json:"social_links"`
	GalleryURLs []string          `json:"gallery_urls" validate:"omitempty,dive,url"`
}

func NewEmployerHandler(uc usecase.EmployerUsecase) *EmployerHandler {
	return &EmployerHandler{uc: uc}
}

func (h *EmployerHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Get("/employer/dashboard", g.Auth, g.Employer, h.Dashboard)
	r.Get("/employer/jobs", g.Auth, g.Employer, h.Jobs)
	r.Get("/employer/jobs/:id/applicants", g.Auth, g.Employer, h.JobApplicants)
	r.Get("/employer/candidates", g.Auth, g.Employer, h.Candidates)
	r.Get("/employer/candidates/:id", g.Auth, g.Employer, h.Candidate)
	r.Get("/employer/resume-bank", g.Auth, g.Employer, h.ResumeBank)
	r.Get("/employer/team", g.Auth, g.Employer, h.Team)
	r.Get("/employer/company", g.Auth, g.Employer, h.Company)
	r.Put("/employer/company", g.Auth, g.Employer, h.UpdateCompany)
	r.Get("/employer/join-requests", g.Auth, g.Employer, h.JoinRequests)
	r.Post("/employer/join-requests/:id/approve", g.Auth, g.Employer, h.decide(true))
	r.Post("/employer/join-requests/:id/reject", g.Auth, g.Employer, h.decide(false))
}

func (h *EmployerHandler) Dashboard(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	d, err := h.uc.Dashboard(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, d)
}

func (h *EmployerHandler) Jobs(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.Jobs(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *EmployerHandler) JobApplicants(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.uc.JobApplicants(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *EmployerHandler) Candidates(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	jobID, err := queryUUID(c, "job_id")
	if err != nil {
		return err
	}

	items, total, err := h.uc.Candidates(c.Context(), actor, usecase.CandidateQuery{
		JobID:      jobID,
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		PageParams: p,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return paged(c, items, total, p, 20)
}

func (h *EmployerHandler) Candidate(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	d, err := h.uc.Candidate(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, d)
}

func (h *EmployerHandler) ResumeBank(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	uniID, err := queryUUID(c, "university_id")
	if err != nil {
		return err
	}

	items, total, err := h.uc.ResumeBank(c.Context(), actor, usecase.ResumeBankQuery{
		Search:       c.Query("search"),
		UniversityID: uniID,
		Major:        c.Query("major"),
		Skill:        c.Query("skill"),
		PageParams:   p,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return paged(c, items, total, p, 20)
}

func (h *EmployerHandler) Team(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.Team(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *EmployerHandler) Company(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	co, err := h.uc.Company(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, co)
}

func (h *EmployerHandler) UpdateCompany(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req companyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	co, err := h.uc.UpdateCompany(c.Context(), actor, usecase.CompanyInput{
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
		Website:     req.Website,
		LogoURL:     req.LogoURL,
		Location:    req.Location,
		Size:        req.Size,
		FoundedYear: req.FoundedYear,
		SocialLinks: req.SocialLinks,
		GalleryURLs: req.GalleryURLs,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, co)
}

func (h *EmployerHandler) JoinRequests(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.JoinRequests(c.Context(), actor, c.Query("status"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *EmployerHandler) decide(approve bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, err := currentActor(c)
		if err != nil {
			return err
		}
		id, err := paramUUID(c, "id")
		if err != nil {
			return err
		}

		jr, err := h.uc.DecideJoinRequest(c.Context(), actor, id, approve)
		if err != nil {
			return mapUsecaseError(err)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, jr)
	}
}
