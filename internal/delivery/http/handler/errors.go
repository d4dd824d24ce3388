package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/middleware"
	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

// mapUsecaseError turns usecase sentinels into an AppError for the error
// middleware.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		return middleware.NewAppError(fiber.StatusBadRequest, "Validation failed", verr.Fields, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, detail(err, usecase.ErrInvalidInput, "Bad request"), nil, err)
	case errors.Is(err, usecase.ErrRefreshTokenExpired):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
	case errors.Is(err, usecase.ErrInvalidRefreshToken):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, detail(err, usecase.ErrForbidden, "Forbidden"), nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, detail(err, usecase.ErrNotFound, "Not found"), nil, err)
	case errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, detail(err, usecase.ErrConflict, "Conflict"), nil, err)
	case errors.Is(err, usecase.ErrTooLarge):
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "File too large", nil, err)
	case errors.Is(err, usecase.ErrUnsupportedMedia):
		return middleware.NewAppError(fiber.StatusUnsupportedMediaType, "Unsupported file type", nil, err)
	case errors.Is(err, usecase.ErrProcessing):
		return middleware.NewAppError(fiber.StatusAccepted, "Resume is still being processed", fiber.Map{"processing": true}, err)
	case errors.Is(err, usecase.ErrUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

// detail returns the context after the sentinel prefix, so "not found: job"
// reads "Job not found".
func detail(err, sentinel error, fallback string) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if !strings.HasPrefix(msg, prefix) {
		return fallback
	}
	rest := strings.TrimSpace(strings.TrimPrefix(msg, prefix))
	if rest == "" {
		return fallback
	}
	switch sentinel {
	case usecase.ErrNotFound:
		return capitalize(rest) + " not found"
	default:
		return capitalize(rest)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
