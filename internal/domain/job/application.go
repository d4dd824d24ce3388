package job

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "APPLIED"
	StatusInterviewed ApplicationStatus = "INTERVIEWED"
	StatusOffered     ApplicationStatus = "OFFERED"
	StatusRejected    ApplicationStatus = "REJECTED"
)

var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:     {StatusInterviewed, StatusOffered, StatusRejected},
	StatusInterviewed: {StatusOffered, StatusRejected},
}

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	v := ApplicationStatus(normalizeEnum(s))
	switch v {
	case StatusApplied, StatusInterviewed, StatusOffered, StatusRejected:
		return v, true
	}
	return "", false
}

// CanTransition reports whether an application may move from -> to.
// OFFERED and REJECTED are terminal.
func CanTransition(from, to ApplicationStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) Terminal() bool {
	return s == StatusOffered || s == StatusRejected
}

type Application struct {
	ID             uuid.UUID         `json:"id"`
	JobID          uuid.UUID         `json:"job_id"`
	JobTitle       string            `json:"job_title"`
	CompanyID      uuid.UUID         `json:"company_id"`
	CompanyName    string            `json:"company_name"`
	ApplicantID    uuid.UUID         `json:"applicant_id"`
	ApplicantName  string            `json:"applicant_name"`
	ApplicantEmail string            `json:"applicant_email"`
	ResumeID       *uuid.UUID        `json:"resume_id"`
	Status         ApplicationStatus `json:"status"`
	CoverLetter    string            `json:"cover_letter"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
