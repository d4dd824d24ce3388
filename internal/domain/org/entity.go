package org

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCompanyNotFound     = errors.New("company not found")
	ErrUniversityNotFound  = errors.New("university not found")
	ErrJoinRequestNotFound = errors.New("join request not found")
)

type CompanySize string

const (
	SizeSeed       CompanySize = "SEED"
	SizeStartup    CompanySize = "STARTUP"
	SizeScaleup    CompanySize = "SCALEUP"
	SizeMidSize    CompanySize = "MID_SIZE"
	SizeLarge      CompanySize = "LARGE"
	SizeEnterprise CompanySize = "ENTERPRISE"
)

func ParseCompanySize(s string) (CompanySize, bool) {
	v := CompanySize(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case SizeSeed, SizeStartup, SizeScaleup, SizeMidSize, SizeLarge, SizeEnterprise:
		return v, true
	}
	return "", false
}

type Company struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Industry    string            `json:"industry"`
	Website     string            `json:"website"`
	LogoURL     string            `json:"logo_url"`
	Location    string            `json:"location"`
	Size        *CompanySize      `json:"size"`
	FoundedYear *int              `json:"founded_year"`
	SocialLinks map[string]string `json:"social_links"`
	GalleryURLs []string          `json:"gallery_urls"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type University struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Website     string    `json:"website"`
	LogoURL     string    `json:"logo_url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Kind string

const (
	KindCompany    Kind = "company"
	KindUniversity Kind = "university"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// JoinRequest asks an organisation admin to link a user's profile to the
// organisation.
type JoinRequest struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	UserEmail    string        `json:"user_email"`
	UserFullName string        `json:"user_full_name"`
	Kind         Kind          `json:"org_kind"`
	OrgID        uuid.UUID     `json:"org_id"`
	Status       RequestStatus `json:"status"`
	Message      string        `json:"message"`
	DecidedBy    *uuid.UUID    `json:"decided_by"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (r JoinRequest) IsPending() bool {
	return r.Status == RequestPending
}
