package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"careerhub/internal/delivery/http/middleware"
	"careerhub/internal/pkg/response"
	"careerhub/internal/usecase"
)

type CareerFairHandler struct {
	uc usecase.CareerFairUsecase
}

type fairRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=255"`
	Description  *string `json:"description"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	Location     *string `json:"location"`
	Website      *string `json:"website" validate:"omitempty,url"`
	IsActive     *bool   `json:"is_active"`
	BannerURL    *string `json:"banner_url" validate:"omitempty,url"`
	FloorPlanURL *string `json:"floor_plan_url" validate:"omitempty,url"`
	GridWidth    *int    `json:"grid_width" validate:"omitempty,gte=1,lte=100"`
	GridHeight   *int    `json:"grid_height" validate:"omitempty,gte=1,lte=100"`
}

type boothRequest struct {
	X           *int         `json:"x"`
	Y           *int         `json:"y"`
	Width       *int         `json:"width" validate:"omitempty,gte=1"`
	Height      *int         `json:"height" validate:"omitempty,gte=1"`
	BoothNumber *string      `json:"booth_number" validate:"omitempty,max=20"`
	Label       *string      `json:"label" validate:"omitempty,max=255"`
	JobIDs      *[]uuid.UUID `json:"job_ids"`
}

func NewCareerFairHandler(uc usecase.CareerFairUsecase) *CareerFairHandler {
	return &CareerFairHandler{uc: uc}
}

func (h *CareerFairHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Get("/career-fairs", h.List)
	r.Post("/career-fairs", g.Auth, g.University, h.Create)
	r.Get("/career-fairs/discover", g.Auth, g.Employer, h.Discover)
	r.Get("/career-fairs/registered", g.Auth, g.Employer, h.Registered)

	r.Get("/career-fairs/:id", h.Get)
	r.Put("/career-fairs/:id", g.Auth, g.University, h.Update)
	r.Delete("/career-fairs/:id", g.Auth, g.University, h.Delete)
	r.Get("/career-fairs/:id/floor-plan", h.FloorPlan)
	r.Post("/career-fairs/:id/register", g.Auth, g.Employer, h.Register)
	r.Post("/career-fairs/:id/unregister", g.Auth, g.Employer, h.Unregister)
	r.Post("/career-fairs/:id/booth", g.Auth, g.Employer, h.EnsureBooth)

	r.Get("/booths/:id", h.GetBooth)
	r.Put("/booths/:id", g.Auth, g.Recruiter, h.UpdateBooth)
	r.Post("/booths/:id/interest", g.Auth, g.Student, h.AddInterest)
	r.Delete("/booths/:id/interest", g.Auth, g.Student, h.RemoveInterest)
	r.Get("/booths/:id/interests", g.Auth, g.Recruiter, h.BoothInterests)
	r.Get("/students/me/interests", g.Auth, g.Student, h.MyInterests)
}

func (h *CareerFairHandler) List(c fiber.Ctx) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	active, err := queryBoolPtr(c, "active")
	if err != nil {
		return err
	}

	items, total, err := h.uc.List(c.Context(), usecase.FairQuery{Search: c.Query("search"), Active: active, PageParams: p})
	if err != nil {
		return mapUsecaseError(err)
	}
	return paged(c, items, total, p, 10)
}

func (h *CareerFairHandler) Get(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	d, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, d)
}

func (h *CareerFairHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	in, err := h.fairInput(c)
	if err != nil {
		return err
	}

	f, err := h.uc.Create(c.Context(), actor, in)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, f)
}

func (h *CareerFairHandler) Update(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	in, err := h.fairInput(c)
	if err != nil {
		return err
	}

	f, err := h.uc.Update(c.Context(), actor, id, in)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, f)
}

func (h *CareerFairHandler) fairInput(c fiber.Ctx) (usecase.FairInput, error) {
	var req fairRequest
	if err := bindBody(c, &req); err != nil {
		return usecase.FairInput{}, err
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return usecase.FairInput{}, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return usecase.FairInput{}, err
	}
	return usecase.FairInput{
		Title:        req.Title,
		Description:  req.Description,
		StartDate:    start,
		EndDate:      end,
		Location:     req.Location,
		Website:      req.Website,
		IsActive:     req.IsActive,
		BannerURL:    req.BannerURL,
		FloorPlanURL: req.FloorPlanURL,
		GridWidth:    req.GridWidth,
		GridHeight:   req.GridHeight,
	}, nil
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, middleware.NewAppError(fiber.StatusBadRequest, "Validation failed", map[string]string{field: "date"}, nil)
}

func (h *CareerFairHandler) Delete(c fiber.Ctx) error {
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
	return response.Success(c, fiber.StatusOK, "Career fair deleted", nil)
}

func (h *CareerFairHandler) Discover(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.Discover(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *CareerFairHandler) Registered(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.Registered(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *CareerFairHandler) Register(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	b, err := h.uc.Register(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Registered for career fair", b)
}

func (h *CareerFairHandler) Unregister(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Unregister(c.Context(), actor, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Unregistered from career fair", nil)
}

func (h *CareerFairHandler) EnsureBooth(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	b, created, err := h.uc.EnsureBooth(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	if created {
		return response.Success(c, fiber.StatusCreated, response.MessageCreated, b)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, b)
}

func (h *CareerFairHandler) FloorPlan(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	fp, err := h.uc.FloorPlan(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fp)
}

func (h *CareerFairHandler) GetBooth(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	b, err := h.uc.GetBooth(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, b)
}

// UpdateBooth distinguishes "x": null (unplace) from an absent x, which
// the decoded struct alone cannot.
func (h *CareerFairHandler) UpdateBooth(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req boothRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	body := c.Body()
	placement := gjson.GetBytes(body, "x").Exists() || gjson.GetBytes(body, "y").Exists()

	b, err := h.uc.UpdateBooth(c.Context(), actor, id, usecase.BoothInput{
		PlacementSet: placement,
		X:            req.X,
		Y:            req.Y,
		Width:        req.Width,
		Height:       req.Height,
		BoothNumber:  req.BoothNumber,
		Label:        req.Label,
		JobIDs:       req.JobIDs,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, b)
}

func (h *CareerFairHandler) AddInterest(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.AddInterest(c.Context(), actor, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"interested": true})
}

func (h *CareerFairHandler) RemoveInterest(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.RemoveInterest(c.Context(), actor, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"interested": false})
}

func (h *CareerFairHandler) MyInterests(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.MyInterests(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *CareerFairHandler) BoothInterests(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.uc.BoothInterests(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}
