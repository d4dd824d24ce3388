package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"careerhub/internal/domain/network"
	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type ConnectionHandler struct {
	uc usecase.ConnectionUsecase
}

type connectionRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	Message   string    `json:"message" validate:"max=2000"`
}

func NewConnectionHandler(uc usecase.ConnectionUsecase) *ConnectionHandler {
	return &ConnectionHandler{uc: uc}
}

func (h *ConnectionHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Post("/connections", g.Auth, g.Employer, h.Request)
	r.Get("/connections", g.Auth, g.Member, h.List)
	r.Post("/connections/:id/accept", g.Auth, g.Student, h.decide(network.Accepted))
	r.Post("/connections/:id/reject", g.Auth, g.Student, h.decide(network.Rejected))
	r.Post("/connections/:id/withdraw", g.Auth, g.Employer, h.decide(network.Withdrawn))
}

func (h *ConnectionHandler) Request(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req connectionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	conn, err := h.uc.Request(c.Context(), actor, req.StudentID, req.Message)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, conn)
}

func (h *ConnectionHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), actor, c.Query("status"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ConnectionHandler) decide(to network.Status) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, err := currentActor(c)
		if err != nil {
			return err
		}
		id, err := paramUUID(c, "id")
		if err != nil {
			return err
		}

		conn, err := h.uc.Decide(c.Context(), actor, id, to)
		if err != nil {
			return mapUsecaseError(err)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, conn)
	}
}
