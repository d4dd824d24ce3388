package job

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("job not found")
	ErrApplicationNotFound = errors.New("application not found")
)

type Type string

const (
	TypeFullTime   Type = "FULL_TIME"
	TypePartTime   Type = "PART_TIME"
	TypeContract   Type = "CONTRACT"
	TypeInternship Type = "INTERNSHIP"
	TypeTemporary  Type = "TEMPORARY"
)

func ParseType(s string) (Type, bool) {
	v := Type(normalizeEnum(s))
	switch v {
	case TypeFullTime, TypePartTime, TypeContract, TypeInternship, TypeTemporary:
		return v, true
	}
	return "", false
}

type RemoteOption string

const (
	OnSite RemoteOption = "ON_SITE"
	Hybrid RemoteOption = "HYBRID"
	Remote RemoteOption = "REMOTE"
)

func ParseRemoteOption(s string) (RemoteOption, bool) {
	v := RemoteOption(normalizeEnum(s))
	switch v {
	case OnSite, Hybrid, Remote:
		return v, true
	}
	return "", false
}

// normalizeEnum accepts "full-time", "Full Time" and "FULL_TIME" alike.
func normalizeEnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

type Skill struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	IsMandatory bool      `json:"is_mandatory"`
}

type Job struct {
	ID                  uuid.UUID    `json:"id"`
	CompanyID           uuid.UUID    `json:"company_id"`
	CompanyName         string       `json:"company_name"`
	CompanyLogoURL      string       `json:"company_logo_url"`
	CompanyIndustry     string       `json:"company_industry"`
	PostedBy            *uuid.UUID   `json:"posted_by"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	Requirements        []string     `json:"requirements"`
	Responsibilities    []string     `json:"responsibilities"`
	Location            string       `json:"location"`
	Type                Type         `json:"job_type"`
	RemoteOption        RemoteOption `json:"remote_option"`
	SalaryMin           *int         `json:"salary_min"`
	SalaryMax           *int         `json:"salary_max"`
	Currency            string       `json:"currency"`
	IsActive            bool         `json:"is_active"`
	ApplicationDeadline *time.Time   `json:"application_deadline"`
	MatchingWeights     *Weights     `json:"matching_weights"`
	Skills              []Skill      `json:"skills"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// Weights mirrors matching.Weights for storage; the matching package owns
// defaults and normalisation.
type Weights struct {
	Skills          float64 `json:"skills"`
	Experience      float64 `json:"experience"`
	CultureFit      float64 `json:"culture_fit"`
	GrowthPotential float64 `json:"growth_potential"`
}

// AcceptsApplications is false for inactive jobs and after the deadline day.
func (j Job) AcceptsApplications(now time.Time) bool {
	if !j.IsActive {
		return false
	}
	if j.ApplicationDeadline == nil {
		return true
	}
	d := j.ApplicationDeadline.UTC()
	endOfDay := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, time.UTC)
	return !now.UTC().After(endOfDay)
}

// SearchText is the text used for embeddings and skill extraction.
func (j Job) SearchText() string {
	var b strings.Builder
	b.WriteString(j.Title)
	b.WriteString("\n")
	b.WriteString(j.Description)
	for _, r := range j.Requirements {
		b.WriteString("\n")
		b.WriteString(r)
	}
	for _, r := range j.Responsibilities {
		b.WriteString("\n")
		b.WriteString(r)
	}
	return strings.TrimSpace(b.String())
}
