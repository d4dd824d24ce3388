package careerfair

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("career fair not found")
	ErrBoothNotFound     = errors.New("booth not found")
	ErrAlreadyRegistered = errors.New("company already registered for this fair")
	ErrNotRegistered     = errors.New("company not registered for this fair")
	ErrInvalid           = errors.New("invalid career fair")
	ErrPlacementInvalid  = errors.New("invalid booth placement")
	ErrBoothNumberTaken  = errors.New("booth number already used in this fair")
)

const (
	DefaultGridSize = 10
	MaxGridSize     = 100
)

type Fair struct {
	ID               uuid.UUID  `json:"id"`
	HostUniversityID uuid.UUID  `json:"host_university_id"`
	HostUniversity   string     `json:"host_university_name"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	Location         string     `json:"location"`
	Website          string     `json:"website"`
	IsActive         bool       `json:"is_active"`
	BannerURL        string     `json:"banner_url"`
	FloorPlanURL     string     `json:"floor_plan_url"`
	GridWidth        int        `json:"grid_width"`
	GridHeight       int        `json:"grid_height"`
	CreatedBy        *uuid.UUID `json:"created_by"`
	BoothCount       int        `json:"booth_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (f Fair) Grid() Grid {
	return Grid{Width: f.GridWidth, Height: f.GridHeight}
}

// Validate checks the invariants the database also enforces, so callers get
// field-level reasons instead of constraint names.
func (f Fair) Validate() error {
	var reasons []string
	if strings.TrimSpace(f.Title) == "" {
		reasons = append(reasons, "title is required")
	}
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		reasons = append(reasons, "start_date and end_date are required")
	} else if f.EndDate.Before(f.StartDate) {
		reasons = append(reasons, "end_date must not be before start_date")
	}
	if f.GridWidth < 1 || f.GridWidth > MaxGridSize || f.GridHeight < 1 || f.GridHeight > MaxGridSize {
		reasons = append(reasons, "grid dimensions must be between 1 and 100")
	}
	if len(reasons) > 0 {
		return &InvalidError{Base: ErrInvalid, Reasons: reasons}
	}
	return nil
}

type Booth struct {
	ID            uuid.UUID   `json:"id"`
	CareerFairID  uuid.UUID   `json:"career_fair_id"`
	CompanyID     uuid.UUID   `json:"company_id"`
	CompanyName   string      `json:"company_name"`
	CompanyLogo   string      `json:"company_logo_url"`
	Label         string      `json:"label"`
	BoothNumber   string      `json:"booth_number"`
	X             *int        `json:"x"`
	Y             *int        `json:"y"`
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	JobIDs        []uuid.UUID `json:"job_ids"`
	InterestCount int         `json:"interest_count"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (b Booth) Placed() bool {
	return b.X != nil && b.Y != nil
}

func (b Booth) Rect() (Rect, bool) {
	if !b.Placed() {
		return Rect{}, false
	}
	return Rect{X: *b.X, Y: *b.Y, W: b.Width, H: b.Height}, true
}

type Interest struct {
	BoothID      uuid.UUID `json:"booth_id"`
	StudentID    uuid.UUID `json:"student_id"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	CompanyName  string    `json:"company_name"`
	FairTitle    string    `json:"career_fair_title"`
	CreatedAt    time.Time `json:"created_at"`
}

// InvalidError carries every reason a fair or placement was rejected.
type InvalidError struct {
	Base    error
	Reasons []string
}

func (e *InvalidError) Error() string {
	return e.Base.Error() + ": " + strings.Join(e.Reasons, "; ")
}

func (e *InvalidError) Unwrap() error { return e.Base }
