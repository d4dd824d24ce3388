package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"careerhub/internal/domain/org"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrCompanyNameTaken       = errors.New("company name already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrOrgNotFound            = errors.New("organisation not found")
	ErrInternal               = errors.New("internal error")
)

type RegisterInput struct {
	Email        string
	Password     string
	FullName     string
	Role         string
	UniversityID *uuid.UUID
	CompanyID    *uuid.UUID
	CompanyName  string
}

type LoginInput struct {
	Email    string
	Password string
}

type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// Accounts is the part of the user repository sign-up and login need.
type Accounts interface {
	CreateAccount(ctx context.Context, a repository.NewAccount) (user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

// Orgs resolves the organisation a new account attaches to.
type Orgs interface {
	GetCompany(ctx context.Context, id uuid.UUID) (org.Company, error)
	FindCompanyByName(ctx context.Context, name string) (org.Company, error)
	GetUniversity(ctx context.Context, id uuid.UUID) (org.University, error)
	CountUniversityStaff(ctx context.Context, id uuid.UUID) (int, error)
}

type Service struct {
	users Accounts
	orgs  Orgs
}

func NewService(users Accounts, orgs Orgs) *Service {
	return &Service{users: users, orgs: orgs}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, ErrInvalidInput
	}
	if !isValidPassword(in.Password) {
		return user.User{}, ErrInvalidInput
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return user.User{}, ErrInvalidInput
	}
	role, ok := user.ParseRole(in.Role)
	if !ok || !role.SelfRegisterable() {
		return user.User{}, ErrInvalidInput
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return user.User{}, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, ErrInternal
	}

	acct := repository.NewAccount{
		User: user.User{Email: email, PasswordHash: string(hash), FullName: fullName, Role: role},
	}
	if err := s.attachOrg(ctx, role, in, &acct); err != nil {
		return user.User{}, err
	}

	created, err := s.users.CreateAccount(ctx, acct)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCompanyNameTaken):
			return user.User{}, ErrCompanyNameTaken
		case errors.Is(err, repository.ErrDuplicate):
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, ErrInternal
	}
	return sanitizeUser(created), nil
}

// attachOrg decides how the new profile links to its organisation: directly,
// through a pending join request, or not at all.
func (s *Service) attachOrg(ctx context.Context, role user.Role, in RegisterInput, acct *repository.NewAccount) error {
	switch role {
	case user.RoleStudent:
		if in.UniversityID != nil {
			if err := s.universityExists(ctx, *in.UniversityID); err != nil {
				return err
			}
			acct.UniversityID = in.UniversityID
		}

	case user.RoleEmployer:
		name := strings.TrimSpace(in.CompanyName)
		switch {
		case in.CompanyID != nil:
			if _, err := s.orgs.GetCompany(ctx, *in.CompanyID); err != nil {
				if errors.Is(err, org.ErrCompanyNotFound) {
					return ErrOrgNotFound
				}
				return ErrInternal
			}
			acct.JoinOrg = &repository.JoinTarget{Kind: org.KindCompany, OrgID: *in.CompanyID}
		case name != "":
			existing, err := s.orgs.FindCompanyByName(ctx, name)
			switch {
			case err == nil:
				acct.JoinOrg = &repository.JoinTarget{Kind: org.KindCompany, OrgID: existing.ID}
			case errors.Is(err, org.ErrCompanyNotFound):
				acct.NewCompany = &org.Company{Name: name}
				acct.OrgAdmin = true
			default:
				return ErrInternal
			}
		}

	case user.RoleUniversity:
		if in.UniversityID == nil {
			return ErrInvalidInput
		}
		if err := s.universityExists(ctx, *in.UniversityID); err != nil {
			return err
		}
		n, err := s.orgs.CountUniversityStaff(ctx, *in.UniversityID)
		if err != nil {
			return ErrInternal
		}
		if n == 0 {
			acct.UniversityID = in.UniversityID
			acct.OrgAdmin = true
		} else {
			acct.JoinOrg = &repository.JoinTarget{Kind: org.KindUniversity, OrgID: *in.UniversityID}
		}
	}
	return nil
}

func (s *Service) universityExists(ctx context.Context, id uuid.UUID) error {
	if _, err := s.orgs.GetUniversity(ctx, id); err != nil {
		if errors.Is(err, org.ErrUniversityNotFound) {
			return ErrOrgNotFound
		}
		return ErrInternal
	}
	return nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return user.User{}, ErrInvalidCredentials
	}
	if in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return sanitizeUser(u), nil
}

func (s *Service) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if !isValidPassword(in.NewPassword) {
		return ErrInvalidInput
	}
	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return ErrInternal
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrInternal
	}
	if err := s.users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return ErrInternal
	}
	return nil
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return strings.ToLower(email)
}

func isValidPassword(pw string) bool {
	pw = strings.TrimSpace(pw)
	if len(pw) < 8 {
		return false
	}
	return true
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
