package job

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalid = errors.New("invalid job")

// Draft is the editable shape of a job, shared by create, update and the
// stored multi-step drafts. Pointer fields are optional.
type Draft struct {
	Title               *string  `json:"title,omitempty"`
	Description         *string  `json:"description,omitempty"`
	Requirements        []string `json:"requirements,omitempty"`
	Responsibilities    []string `json:"responsibilities,omitempty"`
	Location            *string  `json:"location,omitempty"`
	Type                *string  `json:"job_type,omitempty"`
	RemoteOption        *string  `json:"remote_option,omitempty"`
	SalaryMin           *int     `json:"salary_min,omitempty"`
	SalaryMax           *int     `json:"salary_max,omitempty"`
	Currency            *string  `json:"currency,omitempty"`
	ApplicationDeadline *string  `json:"application_deadline,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	IsActive            *bool    `json:"is_active,omitempty"`
}

// Merge overlays the non-empty fields of patch onto d.
func (d Draft) Merge(patch Draft) Draft {
	if patch.Title != nil {
		d.Title = patch.Title
	}
	if patch.Description != nil {
		d.Description = patch.Description
	}
	if patch.Requirements != nil {
		d.Requirements = patch.Requirements
	}
	if patch.Responsibilities != nil {
		d.Responsibilities = patch.Responsibilities
	}
	if patch.Location != nil {
		d.Location = patch.Location
	}
	if patch.Type != nil {
		d.Type = patch.Type
	}
	if patch.RemoteOption != nil {
		d.RemoteOption = patch.RemoteOption
	}
	if patch.SalaryMin != nil {
		d.SalaryMin = patch.SalaryMin
	}
	if patch.SalaryMax != nil {
		d.SalaryMax = patch.SalaryMax
	}
	if patch.Currency != nil {
		d.Currency = patch.Currency
	}
	if patch.ApplicationDeadline != nil {
		d.ApplicationDeadline = patch.ApplicationDeadline
	}
	if patch.Skills != nil {
		d.Skills = patch.Skills
	}
	if patch.IsActive != nil {
		d.IsActive = patch.IsActive
	}
	return d
}

// FieldErrors maps a json field name to a human readable reason.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for k, v := range e {
		parts = append(parts, k+": "+v)
	}
	return fmt.Sprintf("%s: %s", ErrInvalid.Error(), strings.Join(parts, "; "))
}

func (e FieldErrors) Unwrap() error { return ErrInvalid }

// Apply validates d and writes it onto base. With partial=false the title is
// required; with partial=true only present fields are checked.
func (d Draft) Apply(base Job, now time.Time, partial bool) (Job, error) {
	errs := FieldErrors{}
	out := base

	if d.Title != nil || !partial {
		title := ""
		if d.Title != nil {
			title = strings.TrimSpace(*d.Title)
		}
		if title == "" {
			errs["title"] = "required"
		} else if len(title) > 200 {
			errs["title"] = "too long"
		}
		out.Title = title
	}
	if d.Description != nil {
		out.Description = strings.TrimSpace(*d.Description)
	}
	if d.Requirements != nil {
		out.Requirements = cleanList(d.Requirements)
	}
	if d.Responsibilities != nil {
		out.Responsibilities = cleanList(d.Responsibilities)
	}
	if d.Location != nil {
		out.Location = strings.TrimSpace(*d.Location)
	}

	if d.Type != nil {
		t, ok := ParseType(*d.Type)
		if !ok {
			errs["job_type"] = "unknown job type"
		}
		out.Type = t
	} else if out.Type == "" {
		out.Type = TypeFullTime
	}

	if d.RemoteOption != nil {
		r, ok := ParseRemoteOption(*d.RemoteOption)
		if !ok {
			errs["remote_option"] = "unknown remote option"
		}
		out.RemoteOption = r
	} else if out.RemoteOption == "" {
		out.RemoteOption = OnSite
	}

	if d.SalaryMin != nil {
		out.SalaryMin = d.SalaryMin
	}
	if d.SalaryMax != nil {
		out.SalaryMax = d.SalaryMax
	}
	if out.SalaryMin != nil && *out.SalaryMin < 0 {
		errs["salary_min"] = "must not be negative"
	}
	if out.SalaryMax != nil && *out.SalaryMax < 0 {
		errs["salary_max"] = "must not be negative"
	}
	if out.SalaryMin != nil && out.SalaryMax != nil && *out.SalaryMin > *out.SalaryMax {
		errs["salary_min"] = "must not exceed salary_max"
	}

	if d.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*d.Currency))
		if len(cur) != 3 {
			errs["currency"] = "must be a 3-letter code"
		}
		out.Currency = cur
	} else if out.Currency == "" {
		out.Currency = "MYR"
	}

	if d.ApplicationDeadline != nil {
		raw := strings.TrimSpace(*d.ApplicationDeadline)
		if raw == "" {
			out.ApplicationDeadline = nil
		} else {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				errs["application_deadline"] = "must be YYYY-MM-DD"
			} else {
				today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
				if t.Before(today) {
					errs["application_deadline"] = "must not be in the past"
				}
				out.ApplicationDeadline = &t
			}
		}
	}

	if d.IsActive != nil {
		out.IsActive = *d.IsActive
	} else if !partial {
		out.IsActive = true
	}

	if len(errs) > 0 {
		return base, errs
	}
	return out, nil
}

// ContentChanged reports whether fields that feed analysis differ.
func ContentChanged(a, b Job) bool {
	if a.Title != b.Title || a.Description != b.Description || a.Location != b.Location {
		return true
	}
	return !equalList(a.Requirements, b.Requirements) || !equalList(a.Responsibilities, b.Responsibilities)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func equalList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
