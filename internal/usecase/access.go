package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
)

// Profiles is the part of the user repository used for membership checks.
type Profiles interface {
	GetEmployerProfile(ctx context.Context, id uuid.UUID) (user.EmployerProfile, error)
	GetStaffProfile(ctx context.Context, id uuid.UUID) (user.StaffProfile, error)
}

var _ Profiles = (repository.UserRepository)(nil)

// employerCompany returns the caller's company, or ErrForbidden when the
// caller is not an employer linked to one.
func employerCompany(ctx context.Context, profiles Profiles, actor Actor) (user.EmployerProfile, uuid.UUID, error) {
	if !actor.Is(user.RoleEmployer) {
		return user.EmployerProfile{}, uuid.Nil, ErrForbidden
	}
	p, err := profiles.GetEmployerProfile(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.EmployerProfile{}, uuid.Nil, fmt.Errorf("%w: employer profile missing", ErrForbidden)
		}
		return user.EmployerProfile{}, uuid.Nil, internal(err)
	}
	if !p.HasCompany() {
		return p, uuid.Nil, fmt.Errorf("%w: employer is not linked to a company", ErrForbidden)
	}
	return p, *p.CompanyID, nil
}

// staffUniversity returns the caller's university, or ErrForbidden when the
// caller is not staff linked to one.
func staffUniversity(ctx context.Context, profiles Profiles, actor Actor) (user.StaffProfile, uuid.UUID, error) {
	if !actor.Is(user.RoleUniversity) {
		return user.StaffProfile{}, uuid.Nil, ErrForbidden
	}
	p, err := profiles.GetStaffProfile(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.StaffProfile{}, uuid.Nil, fmt.Errorf("%w: staff profile missing", ErrForbidden)
		}
		return user.StaffProfile{}, uuid.Nil, internal(err)
	}
	if !p.HasUniversity() {
		return p, uuid.Nil, fmt.Errorf("%w: staff member is not linked to a university", ErrForbidden)
	}
	return p, *p.UniversityID, nil
}

func requireStudent(actor Actor) error {
	if !actor.Is(user.RoleStudent) {
		return ErrForbidden
	}
	return nil
}

// notFound maps any of the given sentinels to ErrNotFound and everything
// else to ErrInternal.
func notFound(err error, what string, sentinels ...error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return fmt.Errorf("%w: %s", ErrNotFound, what)
		}
	}
	return internal(err)
}

// PageParams is the page/page_size pair of list endpoints.
type PageParams struct {
	Page     int
	PageSize int
}

// Normalize applies the default size and the cap.
func (p PageParams) Normalize(def, max int) PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = def
	}
	if p.PageSize > max {
		p.PageSize = max
	}
	return p
}

func (p PageParams) repo() repository.Page {
	return repository.Page{Limit: p.PageSize, Offset: (p.Page - 1) * p.PageSize}
}
