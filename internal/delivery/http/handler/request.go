package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"careerhub/internal/delivery/http/middleware"
	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

// bindBody decodes and validates a JSON body.
func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		if fields := middleware.ValidationFields(err); fields != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Validation failed", fields, err)
		}
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	return nil
}

func currentActor(c fiber.Ctx) (usecase.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return usecase.Actor{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return a, nil
}

// optionalActor is nil for anonymous requests.
func optionalActor(c fiber.Ctx) *usecase.Actor {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return nil
	}
	return &a
}

func paramUUID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func queryUUID(c fiber.Ctx, key string) (*uuid.UUID, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return &id, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return v, nil
}

func queryIntPtr(c fiber.Ctx, key string) (*int, error) {
	if strings.TrimSpace(c.Query(key)) == "" {
		return nil, nil
	}
	v, err := parseQueryIntStrict(c, key, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func queryBoolPtr(c fiber.Ctx, key string) (*bool, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return &v, nil
}

func pageParams(c fiber.Ctx) (usecase.PageParams, error) {
	page, err := parseQueryIntStrict(c, "page", 1)
	if err != nil {
		return usecase.PageParams{}, err
	}
	size, err := parseQueryIntStrict(c, "page_size", 0)
	if err != nil {
		return usecase.PageParams{}, err
	}
	if page < 1 || size < 0 {
		return usecase.PageParams{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid pagination", nil, errors.New("negative page"))
	}
	return usecase.PageParams{Page: page, PageSize: size}, nil
}

func parseListQuery(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func paged[T any](c fiber.Ctx, items []T, total int, p usecase.PageParams, defSize int) error {
	p = p.Normalize(defSize, 100)
	return response.Success(c, fiber.StatusOK, response.MessageOK, response.NewPaged(items, total, p.Page, p.PageSize))
}
