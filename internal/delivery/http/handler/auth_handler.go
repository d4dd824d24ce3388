package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"careerhub/internal/delivery/http/middleware"
	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
	ucauth "careerhub/internal/usecase/auth"
)

type AuthHandler struct {
	uc usecase.AuthUsecase
}

type registerRequest struct {
	Email        string     `json:"email" validate:"required,email"`
	Password     string     `json:"password" validate:"required,min=8"`
	FullName     string     `json:"full_name" validate:"required"`
	UserType     string     `json:"user_type" validate:"required,oneof=student employer university"`
	UniversityID *uuid.UUID `json:"university_id"`
	CompanyID    *uuid.UUID `json:"company_id"`
	CompanyName  string     `json:"company_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func NewAuthHandler(uc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router, authMw fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/password", authMw, h.ChangePassword)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, access, refresh, err := h.uc.Register(c.Context(), ucauth.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		Role:         req.UserType,
		UniversityID: req.UniversityID,
		CompanyID:    req.CompanyID,
		CompanyName:  req.CompanyName,
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	data := map[string]any{
		"user":          usr,
		"access_token":  access,
		"refresh_token": refresh,
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, data)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, access, refresh, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	data := map[string]any{
		"user":          usr,
		"access_token":  access,
		"refresh_token": refresh,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := middleware.BearerToken(c.Get("Authorization"))
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	access, refresh, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		return mapUsecaseError(err)
	}

	data := map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) ChangePassword(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	err = h.uc.ChangePassword(c.Context(), ucauth.ChangePasswordInput{
		UserID:          actor.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		if errors.Is(err, ucauth.ErrInvalidCredentials) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Current password is incorrect", nil, err)
		}
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Password updated", nil)
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucauth.ErrEmailAlreadyRegistered):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	case errors.Is(err, ucauth.ErrCompanyNameTaken):
		return middleware.NewAppError(fiber.StatusConflict, "Company name already registered", nil, err)
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid email or password", nil, err)
	case errors.Is(err, ucauth.ErrOrgNotFound):
		return middleware.NewAppError(fiber.StatusBadRequest, "Organisation not found", nil, err)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return mapUsecaseError(err)
	}
}
