package handler

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

// DirectoryHandler serves the public university, company and skill lookups.
type DirectoryHandler struct {
	uc usecase.DirectoryUsecase
}

func NewDirectoryHandler(uc usecase.DirectoryUsecase) *DirectoryHandler {
	return &DirectoryHandler{uc: uc}
}

func (h *DirectoryHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/universities", h.ListUniversities)
	r.Get("/universities/:id", h.GetUniversity)
	r.Get("/companies", h.ListCompanies)
	r.Get("/companies/:id", h.GetCompany)
	r.Get("/skills", h.SearchSkills)
}

func (h *DirectoryHandler) ListUniversities(c fiber.Ctx) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}

	items, total, err := h.uc.ListUniversities(c.Context(), c.Query("search"), p)
	if err != nil {
		return mapUsecaseError(err)
	}
	return paged(c, items, total, p, 20)
}

func (h *DirectoryHandler) GetUniversity(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	uni, err := h.uc.GetUniversity(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, uni)
}

func (h *DirectoryHandler) ListCompanies(c fiber.Ctx) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}

	items, total, err := h.uc.ListCompanies(c.Context(), usecase.CompanyQuery{
		Search:     c.Query("search"),
		Industry:   c.Query("industry"),
		Size:       c.Query("size"),
		PageParams: p,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return paged(c, items, total, p, 20)
}

func (h *DirectoryHandler) GetCompany(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	co, err := h.uc.GetCompany(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, co)
}

func (h *DirectoryHandler) SearchSkills(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 20)
	if err != nil {
		return err
	}

	items, err := h.uc.SearchSkills(c.Context(), c.Query("search"), limit)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}
