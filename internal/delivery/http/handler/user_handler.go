package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"careerhub/internal/delivery/http/middleware"
	"careerhub/internal/domain/user"
	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type UserHandler struct {
	uc usecase.UserUsecase
}

type updateMeRequest struct {
	FullName          *string `json:"full_name" validate:"omitempty,max=200"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,url"`
}

type studentProfileRequest struct {
	UniversityID      *uuid.UUID             `json:"university_id"`
	Major             string                 `json:"major" validate:"max=200"`
	GraduationYear    *int                   `json:"graduation_year"`
	GPA               *float64               `json:"gpa" validate:"omitempty,gte=0,lte=4"`
	Bio               string                 `json:"bio"`
	Interests         []string               `json:"interests"`
	Skills            []string               `json:"skills"`
	CareerPreferences user.CareerPreferences `json:"career_preferences"`
}

func NewUserHandler(uc usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Get("/users/me", g.Auth, h.GetMe)
	r.Put("/users/me", g.Auth, h.UpdateMe)
	r.Delete("/users/me", g.Auth, h.DeleteMe)
	r.Get("/users/me/profile", g.Auth, g.Student, h.GetProfile)
	r.Put("/users/me/profile", g.Auth, g.Student, h.UpdateProfile)
	r.Get("/students/:id", g.Auth, g.Recruiter, h.GetStudent)
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	me, err := h.uc.Me(c.Context(), actor.UserID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, me)
}

func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.FullName == nil && req.ProfilePictureURL == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, nil)
	}

	usr, err := h.uc.UpdateMe(c.Context(), actor.UserID, usecase.UpdateMeInput{
		FullName:          req.FullName,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, usr)
}

func (h *UserHandler) DeleteMe(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.uc.DeleteMe(c.Context(), actor.UserID); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Account deleted", nil)
}

func (h *UserHandler) GetProfile(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	p, err := h.uc.StudentProfile(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *UserHandler) UpdateProfile(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var req studentProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.uc.UpdateStudentProfile(c.Context(), actor, usecase.StudentProfileInput{
		UniversityID:      req.UniversityID,
		Major:             req.Major,
		GraduationYear:    req.GraduationYear,
		GPA:               req.GPA,
		Bio:               req.Bio,
		Interests:         req.Interests,
		Skills:            req.Skills,
		CareerPreferences: req.CareerPreferences,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *UserHandler) GetStudent(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	s, err := h.uc.PublicStudent(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, s)
}
