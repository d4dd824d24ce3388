package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"careerhub/internal/domain/org"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
)

// Me is the signed-in user with whatever profile their role carries.
type Me struct {
	User            user.User             `json:"user"`
	StudentProfile  *user.StudentProfile  `json:"student_profile,omitempty"`
	EmployerProfile *user.EmployerProfile `json:"employer_profile,omitempty"`
	StaffProfile    *user.StaffProfile    `json:"staff_profile,omitempty"`
	Company         *org.Company          `json:"company,omitempty"`
	University      *org.University       `json:"university,omitempty"`
}

type UpdateMeInput struct {
	FullName          *string
	ProfilePictureURL *string
}

type StudentProfileInput struct {
	UniversityID      *uuid.UUID
	Major             string
	GraduationYear    *int
	GPA               *float64
	Bio               string
	Interests         []string
	Skills            []string
	CareerPreferences user.CareerPreferences
}

// PublicStudent is what employers and university staff see of a student.
type PublicStudent struct {
	ID                uuid.UUID           `json:"id"`
	FullName          string              `json:"full_name"`
	Email             string              `json:"email"`
	ProfilePictureURL *string             `json:"profile_picture_url"`
	Profile           user.StudentProfile `json:"profile"`
}

type UserUsecase interface {
	Me(ctx context.Context, userID uuid.UUID) (Me, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error)
	DeleteMe(ctx context.Context, userID uuid.UUID) error
	StudentProfile(ctx context.Context, actor Actor) (user.StudentProfile, error)
	UpdateStudentProfile(ctx context.Context, actor Actor, in StudentProfileInput) (user.StudentProfile, error)
	PublicStudent(ctx context.Context, actor Actor, studentID uuid.UUID) (PublicStudent, error)
}

type Users struct {
	users  repository.UserRepository
	orgs   repository.OrgRepository
	skills repository.SkillRepository
}

func NewUserUsecase(users repository.UserRepository, orgs repository.OrgRepository, skills repository.SkillRepository) *Users {
	return &Users{users: users, orgs: orgs, skills: skills}
}

func (u *Users) Me(ctx context.Context, userID uuid.UUID) (Me, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return Me{}, notFound(err, "user", user.ErrNotFound)
	}
	usr.PasswordHash = ""
	out := Me{User: usr}

	switch usr.Role {
	case user.RoleStudent:
		p, err := u.users.GetStudentProfile(ctx, userID)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return Me{}, internal(err)
		}
		if err == nil {
			out.StudentProfile = &p
			if p.UniversityID != nil {
				if uni, err := u.orgs.GetUniversity(ctx, *p.UniversityID); err == nil {
					out.University = &uni
				}
			}
		}
	case user.RoleEmployer:
		p, err := u.users.GetEmployerProfile(ctx, userID)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return Me{}, internal(err)
		}
		if err == nil {
			out.EmployerProfile = &p
			if p.HasCompany() {
				if c, err := u.orgs.GetCompany(ctx, *p.CompanyID); err == nil {
					out.Company = &c
				}
			}
		}
	case user.RoleUniversity:
		p, err := u.users.GetStaffProfile(ctx, userID)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return Me{}, internal(err)
		}
		if err == nil {
			out.StaffProfile = &p
			if p.HasUniversity() {
				if uni, err := u.orgs.GetUniversity(ctx, *p.UniversityID); err == nil {
					out.University = &uni
				}
			}
		}
	}
	return out, nil
}

func (u *Users) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return user.User{}, invalid("full_name", "must not be empty")
		}
		in.FullName = &name
	}
	usr, err := u.users.UpdateBasic(ctx, userID, in.FullName, in.ProfilePictureURL)
	if err != nil {
		return user.User{}, notFound(err, "user", user.ErrNotFound)
	}
	usr.PasswordHash = ""
	return usr, nil
}

func (u *Users) DeleteMe(ctx context.Context, userID uuid.UUID) error {
	if err := u.users.Delete(ctx, userID); err != nil {
		return notFound(err, "user", user.ErrNotFound)
	}
	return nil
}

func (u *Users) StudentProfile(ctx context.Context, actor Actor) (user.StudentProfile, error) {
	if err := requireStudent(actor); err != nil {
		return user.StudentProfile{}, err
	}
	p, err := u.users.GetStudentProfile(ctx, actor.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return emptyStudentProfile(actor.UserID), nil
	}
	if err != nil {
		return user.StudentProfile{}, internal(err)
	}
	return p, nil
}

func (u *Users) UpdateStudentProfile(ctx context.Context, actor Actor, in StudentProfileInput) (user.StudentProfile, error) {
	if err := requireStudent(actor); err != nil {
		return user.StudentProfile{}, err
	}
	fields := map[string]string{}
	if in.GPA != nil && (*in.GPA < 0 || *in.GPA > 4) {
		fields["gpa"] = "must be between 0 and 4"
	}
	if in.GraduationYear != nil && (*in.GraduationYear < 1950 || *in.GraduationYear > 2100) {
		fields["graduation_year"] = "out of range"
	}
	if len(fields) > 0 {
		return user.StudentProfile{}, &ValidationError{Fields: fields}
	}
	if in.UniversityID != nil {
		if _, err := u.orgs.GetUniversity(ctx, *in.UniversityID); err != nil {
			if errors.Is(err, org.ErrUniversityNotFound) {
				return user.StudentProfile{}, invalid("university_id", "unknown university")
			}
			return user.StudentProfile{}, internal(err)
		}
	}

	var skillIDs []uuid.UUID
	if in.Skills != nil {
		refs, err := u.skills.Resolve(ctx, in.Skills)
		if err != nil {
			return user.StudentProfile{}, internal(err)
		}
		skillIDs = make([]uuid.UUID, 0, len(refs))
		for _, r := range refs {
			skillIDs = append(skillIDs, r.ID)
		}
	}

	p := user.StudentProfile{
		UserID:            actor.UserID,
		UniversityID:      in.UniversityID,
		Major:             strings.TrimSpace(in.Major),
		GraduationYear:    in.GraduationYear,
		GPA:               in.GPA,
		Bio:               strings.TrimSpace(in.Bio),
		Interests:         trimList(in.Interests),
		CareerPreferences: in.CareerPreferences,
	}
	if err := u.users.SaveStudentProfile(ctx, p, skillIDs); err != nil {
		if errors.Is(err, org.ErrUniversityNotFound) {
			return user.StudentProfile{}, invalid("university_id", "unknown university")
		}
		return user.StudentProfile{}, internal(err)
	}
	saved, err := u.users.GetStudentProfile(ctx, actor.UserID)
	if err != nil {
		return user.StudentProfile{}, internal(err)
	}
	return saved, nil
}

func (u *Users) PublicStudent(ctx context.Context, actor Actor, studentID uuid.UUID) (PublicStudent, error) {
	if !actor.Is(user.RoleEmployer) && !actor.Is(user.RoleUniversity) && !actor.Is(user.RoleAdmin) {
		return PublicStudent{}, ErrForbidden
	}
	usr, err := u.users.GetByID(ctx, studentID)
	if err != nil {
		return PublicStudent{}, notFound(err, "student", user.ErrNotFound)
	}
	if usr.Role != user.RoleStudent {
		return PublicStudent{}, fmt.Errorf("%w: student", ErrNotFound)
	}
	p, err := u.users.GetStudentProfile(ctx, studentID)
	if errors.Is(err, user.ErrNotFound) {
		p = emptyStudentProfile(studentID)
	} else if err != nil {
		return PublicStudent{}, internal(err)
	}
	return PublicStudent{
		ID:                usr.ID,
		FullName:          usr.FullName,
		Email:             usr.Email,
		ProfilePictureURL: usr.ProfilePictureURL,
		Profile:           p,
	}, nil
}

func emptyStudentProfile(id uuid.UUID) user.StudentProfile {
	return user.StudentProfile{UserID: id, Interests: []string{}, Skills: []string{}}
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
