package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

type Role string

const (
	RoleStudent    Role = "student"
	RoleEmployer   Role = "employer"
	RoleUniversity Role = "university"
	RoleAdmin      Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleEmployer:
		return RoleEmployer, true
	case RoleUniversity:
		return RoleUniversity, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// SelfRegisterable reports whether the role can be chosen at sign-up.
func (r Role) SelfRegisterable() bool {
	return r == RoleStudent || r == RoleEmployer || r == RoleUniversity
}

type User struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	FullName          string    `json:"full_name"`
	Role              Role      `json:"user_type"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	IsVerified        bool      `json:"is_verified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CareerPreferences struct {
	Industries     []string `json:"industries"`
	Locations      []string `json:"locations"`
	WorkTypes      []string `json:"work_types"`
	PreferredRoles []string `json:"preferred_roles"`
}

type StudentProfile struct {
	UserID            uuid.UUID         `json:"user_id"`
	UniversityID      *uuid.UUID        `json:"university_id"`
	UniversityName    string            `json:"university_name,omitempty"`
	Major             string            `json:"major"`
	GraduationYear    *int              `json:"graduation_year"`
	GPA               *float64          `json:"gpa"`
	Bio               string            `json:"bio"`
	Interests         []string          `json:"interests"`
	Skills            []string          `json:"skills"`
	CareerPreferences CareerPreferences `json:"career_preferences"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

type EmployerProfile struct {
	UserID         uuid.UUID  `json:"user_id"`
	CompanyID      *uuid.UUID `json:"company_id"`
	RoleTitle      string     `json:"role_title"`
	IsCompanyAdmin bool       `json:"is_company_admin"`
}

// HasCompany is false until a join request is approved or the employer
// created the company at sign-up.
func (p EmployerProfile) HasCompany() bool {
	return p.CompanyID != nil && *p.CompanyID != uuid.Nil
}

type StaffProfile struct {
	UserID            uuid.UUID  `json:"user_id"`
	UniversityID      *uuid.UUID `json:"university_id"`
	RoleTitle         string     `json:"role_title"`
	IsUniversityAdmin bool       `json:"is_university_admin"`
}

func (p StaffProfile) HasUniversity() bool {
	return p.UniversityID != nil && *p.UniversityID != uuid.Nil
}
