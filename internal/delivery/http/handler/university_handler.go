package handler

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type UniversityHandler struct {
	uc usecase.UniversityUsecase
}

func NewUniversityHandler(uc usecase.UniversityUsecase) *UniversityHandler {
	return &UniversityHandler{uc: uc}
}

func (h *UniversityHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Get("/university/dashboard", g.Auth, g.University, h.Dashboard)
	r.Get("/university/career-fairs", g.Auth, g.University, h.CareerFairs)
	r.Get("/university/students", g.Auth, g.University, h.Students)
	r.Get("/university/staff", g.Auth, g.University, h.Staff)
	r.Get("/university/join-requests", g.Auth, g.University, h.JoinRequests)
	r.Post("/university/join-requests/:id/approve", g.Auth, g.University, h.decide(true))
	r.Post("/university/join-requests/:id/reject", g.Auth, g.University, h.decide(false))
}

func (h *UniversityHandler) Dashboard(c fiber.Ctx) error {
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

func (h *UniversityHandler) CareerFairs(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c)
	if err != nil {
		return err
	}

	items, total, err := h.uc.CareerFairs(c.Context(), actor, p)
	if err != nil {
		return mapUsecaseError(err)
	}
	return paged(c, items, total, p, 20)
}

func (h *UniversityHandler) Students(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c)
	if err != nil {
		return err
	}

	items, total, err := h.uc.Students(c.Context(), actor, usecase.StudentQuery{
		Search:     c.Query("search"),
		Major:      c.Query("major"),
		PageParams: p,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return paged(c, items, total, p, 20)
}

func (h *UniversityHandler) Staff(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.Staff(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *UniversityHandler) JoinRequests(c fiber.Ctx) error {
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

func (h *UniversityHandler) decide(approve bool) fiber.Handler {
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
