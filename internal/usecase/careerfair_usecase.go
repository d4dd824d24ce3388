package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careerhub/internal/domain/careerfair"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
	"careerhub/internal/ws"
)

// FairInput carries fair fields. Nil fields keep their current value on
// update and take defaults on create.
type FairInput struct {
	Title        *string
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	Location     *string
	Website      *string
	IsActive     *bool
	BannerURL    *string
	FloorPlanURL *string
	GridWidth    *int
	GridHeight   *int
}

func (in FairInput) apply(f *careerfair.Fair) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&f.Title, in.Title)
	set(&f.Description, in.Description)
	set(&f.Location, in.Location)
	set(&f.Website, in.Website)
	set(&f.BannerURL, in.BannerURL)
	set(&f.FloorPlanURL, in.FloorPlanURL)
	if in.StartDate != nil {
		f.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		f.EndDate = *in.EndDate
	}
	if in.IsActive != nil {
		f.IsActive = *in.IsActive
	}
	if in.GridWidth != nil {
		f.GridWidth = *in.GridWidth
	}
	if in.GridHeight != nil {
		f.GridHeight = *in.GridHeight
	}
}

// BoothInput is a booth edit. PlacementSet marks that x and y were sent,
// so nil values unplace the booth.
type BoothInput struct {
	PlacementSet bool
	X            *int
	Y            *int
	Width        *int
	Height       *int
	BoothNumber  *string
	Label        *string
	JobIDs       *[]uuid.UUID
}

func (in BoothInput) touchesLayout() bool {
	return in.PlacementSet || in.Width != nil || in.Height != nil || in.BoothNumber != nil
}

type FairQuery struct {
	Search string
	Active *bool
	PageParams
}

type FairDetail struct {
	careerfair.Fair
	Booths []careerfair.Booth `json:"booths"`
}

type CareerFairUsecase interface {
	List(ctx context.Context, q FairQuery) ([]careerfair.Fair, int, error)
	Get(ctx context.Context, id uuid.UUID) (FairDetail, error)
	Create(ctx context.Context, actor Actor, in FairInput) (careerfair.Fair, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in FairInput) (careerfair.Fair, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Discover(ctx context.Context, actor Actor) ([]repository.DiscoverFair, error)
	Registered(ctx context.Context, actor Actor) ([]careerfair.Fair, error)
	Register(ctx context.Context, actor Actor, fairID uuid.UUID) (careerfair.Booth, error)
	Unregister(ctx context.Context, actor Actor, fairID uuid.UUID) error
	EnsureBooth(ctx context.Context, actor Actor, fairID uuid.UUID) (careerfair.Booth, bool, error)
	FloorPlan(ctx context.Context, fairID uuid.UUID) (careerfair.FloorPlan, error)
	GetBooth(ctx context.Context, id uuid.UUID) (careerfair.Booth, error)
	UpdateBooth(ctx context.Context, actor Actor, id uuid.UUID, in BoothInput) (careerfair.Booth, error)
	AddInterest(ctx context.Context, actor Actor, boothID uuid.UUID) error
	RemoveInterest(ctx context.Context, actor Actor, boothID uuid.UUID) error
	MyInterests(ctx context.Context, actor Actor) ([]careerfair.Interest, error)
	BoothInterests(ctx context.Context, actor Actor, boothID uuid.UUID) ([]careerfair.Interest, error)
}

type CareerFairs struct {
	fairs  repository.CareerFairRepository
	jobs   repository.JobRepository
	orgs   repository.OrgRepository
	users  Profiles
	notify Notifier
	logger *logrus.Logger
	now    func() time.Time
}

func NewCareerFairUsecase(fairs repository.CareerFairRepository, jobs repository.JobRepository, orgs repository.OrgRepository,
	users Profiles, notify Notifier, logger *logrus.Logger) *CareerFairs {
	return &CareerFairs{
		fairs:  fairs,
		jobs:   jobs,
		orgs:   orgs,
		users:  users,
		notify: notify,
		logger: orLogger(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func fairError(err error) error {
	switch {
	case errors.Is(err, careerfair.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: career fair", ErrNotFound)
	case errors.Is(err, careerfair.ErrBoothNotFound):
		return fmt.Errorf("%w: booth", ErrNotFound)
	case errors.Is(err, careerfair.ErrNotRegistered):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, careerfair.ErrAlreadyRegistered), errors.Is(err, careerfair.ErrBoothNumberTaken):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, careerfair.ErrInvalid), errors.Is(err, careerfair.ErrPlacementInvalid):
		return fromDomain(err)
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidInput):
		return err
	}
	return internal(err)
}

func (u *CareerFairs) List(ctx context.Context, q FairQuery) ([]careerfair.Fair, int, error) {
	q.PageParams = q.PageParams.Normalize(10, 100)
	out, total, err := u.fairs.List(ctx, repository.FairFilter{
		Search: strings.TrimSpace(q.Search),
		Active: q.Active,
		Page:   q.PageParams.repo(),
	})
	if err != nil {
		return nil, 0, internal(err)
	}
	return out, total, nil
}

func (u *CareerFairs) Get(ctx context.Context, id uuid.UUID) (FairDetail, error) {
	f, err := u.fairs.Get(ctx, id)
	if err != nil {
		return FairDetail{}, fairError(err)
	}
	booths, err := u.fairs.ListBooths(ctx, id)
	if err != nil {
		return FairDetail{}, internal(err)
	}
	return FairDetail{Fair: f, Booths: booths}, nil
}

// hostFair loads a fair the caller's university hosts.
func (u *CareerFairs) hostFair(ctx context.Context, actor Actor, id uuid.UUID) (careerfair.Fair, error) {
	_, universityID, err := staffUniversity(ctx, u.users, actor)
	if err != nil {
		return careerfair.Fair{}, err
	}
	f, err := u.fairs.Get(ctx, id)
	if err != nil {
		return careerfair.Fair{}, fairError(err)
	}
	if f.HostUniversityID != universityID {
		return careerfair.Fair{}, fmt.Errorf("%w: fair is hosted by another university", ErrForbidden)
	}
	return f, nil
}

func (u *CareerFairs) Create(ctx context.Context, actor Actor, in FairInput) (careerfair.Fair, error) {
	_, universityID, err := staffUniversity(ctx, u.users, actor)
	if err != nil {
		return careerfair.Fair{}, err
	}
	creator := actor.UserID
	f := careerfair.Fair{
		HostUniversityID: universityID,
		IsActive:         true,
		GridWidth:        careerfair.DefaultGridSize,
		GridHeight:       careerfair.DefaultGridSize,
		CreatedBy:        &creator,
	}
	in.apply(&f)
	if err := f.Validate(); err != nil {
		return careerfair.Fair{}, fromDomain(err)
	}
	created, err := u.fairs.Create(ctx, f)
	if err != nil {
		return careerfair.Fair{}, fairError(err)
	}
	return created, nil
}

func (u *CareerFairs) Update(ctx context.Context, actor Actor, id uuid.UUID, in FairInput) (careerfair.Fair, error) {
	f, err := u.hostFair(ctx, actor, id)
	if err != nil {
		return careerfair.Fair{}, err
	}
	in.apply(&f)
	if err := f.Validate(); err != nil {
		return careerfair.Fair{}, fromDomain(err)
	}
	grid := f.Grid()
	updated, err := u.fairs.Update(ctx, f, func(booths []careerfair.Booth) error {
		return careerfair.ValidateResize(grid, booths)
	})
	if err != nil {
		return careerfair.Fair{}, fairError(err)
	}
	return updated, nil
}

func (u *CareerFairs) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := u.hostFair(ctx, actor, id); err != nil {
		return err
	}
	if err := u.fairs.Delete(ctx, id); err != nil {
		return fairError(err)
	}
	return nil
}

func (u *CareerFairs) Discover(ctx context.Context, actor Actor) ([]repository.DiscoverFair, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return nil, err
	}
	out, err := u.fairs.ListDiscover(ctx, companyID, u.now())
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *CareerFairs) Registered(ctx context.Context, actor Actor) ([]careerfair.Fair, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return nil, err
	}
	out, err := u.fairs.ListRegistered(ctx, companyID)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *CareerFairs) Register(ctx context.Context, actor Actor, fairID uuid.UUID) (careerfair.Booth, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return careerfair.Booth{}, err
	}
	b, err := u.fairs.CreateBooth(ctx, fairID, companyID, "")
	if err != nil {
		return careerfair.Booth{}, fairError(err)
	}
	return b, nil
}

func (u *CareerFairs) Unregister(ctx context.Context, actor Actor, fairID uuid.UUID) error {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return err
	}
	if err := u.fairs.DeleteBoothForCompany(ctx, fairID, companyID); err != nil {
		return fairError(err)
	}
	return nil
}

// EnsureBooth returns the company's booth at the fair, creating it when
// missing. created reports which happened.
func (u *CareerFairs) EnsureBooth(ctx context.Context, actor Actor, fairID uuid.UUID) (careerfair.Booth, bool, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return careerfair.Booth{}, false, err
	}
	b, err := u.fairs.BoothForCompany(ctx, fairID, companyID)
	if err == nil {
		return b, false, nil
	}
	if !errors.Is(err, careerfair.ErrBoothNotFound) && !errors.Is(err, careerfair.ErrNotRegistered) && !errors.Is(err, repository.ErrNotFound) {
		return careerfair.Booth{}, false, internal(err)
	}
	b, err = u.fairs.CreateBooth(ctx, fairID, companyID, "")
	if errors.Is(err, careerfair.ErrAlreadyRegistered) {
		b, err = u.fairs.BoothForCompany(ctx, fairID, companyID)
		if err != nil {
			return careerfair.Booth{}, false, fairError(err)
		}
		return b, false, nil
	}
	if err != nil {
		return careerfair.Booth{}, false, fairError(err)
	}
	return b, true, nil
}

func (u *CareerFairs) FloorPlan(ctx context.Context, fairID uuid.UUID) (careerfair.FloorPlan, error) {
	f, err := u.fairs.Get(ctx, fairID)
	if err != nil {
		return careerfair.FloorPlan{}, fairError(err)
	}
	booths, err := u.fairs.ListBooths(ctx, fairID)
	if err != nil {
		return careerfair.FloorPlan{}, internal(err)
	}
	return careerfair.Layout(f.Grid(), booths), nil
}

func (u *CareerFairs) GetBooth(ctx context.Context, id uuid.UUID) (careerfair.Booth, error) {
	b, err := u.fairs.GetBooth(ctx, id)
	if err != nil {
		return careerfair.Booth{}, fairError(err)
	}
	return b, nil
}

// UpdateBooth lets host staff lay out the booth and the booth's company
// edit its label and jobs.
func (u *CareerFairs) UpdateBooth(ctx context.Context, actor Actor, id uuid.UUID, in BoothInput) (careerfair.Booth, error) {
	b, err := u.fairs.GetBooth(ctx, id)
	if err != nil {
		return careerfair.Booth{}, fairError(err)
	}

	var jobIDs []uuid.UUID
	switch actor.Role {
	case user.RoleUniversity:
		if _, err := u.hostFair(ctx, actor, b.CareerFairID); err != nil {
			return careerfair.Booth{}, err
		}
		if in.JobIDs != nil {
			return careerfair.Booth{}, fmt.Errorf("%w: only the exhibiting company can change booth jobs", ErrForbidden)
		}
	case user.RoleEmployer:
		_, companyID, err := employerCompany(ctx, u.users, actor)
		if err != nil {
			return careerfair.Booth{}, err
		}
		if b.CompanyID != companyID {
			return careerfair.Booth{}, fmt.Errorf("%w: booth belongs to another company", ErrForbidden)
		}
		if in.touchesLayout() {
			return careerfair.Booth{}, fmt.Errorf("%w: only the host university can place booths", ErrForbidden)
		}
		if in.JobIDs != nil {
			if jobIDs, err = u.companyJobIDs(ctx, companyID, *in.JobIDs); err != nil {
				return careerfair.Booth{}, err
			}
		}
	default:
		return careerfair.Booth{}, ErrForbidden
	}

	updated, err := u.fairs.UpdateBooth(ctx, id, func(cur *careerfair.Booth, fair careerfair.Fair, booths []careerfair.Booth) error {
		return applyBoothInput(cur, fair, booths, in)
	}, jobIDs)
	if err != nil {
		return careerfair.Booth{}, fairError(err)
	}
	return updated, nil
}

// applyBoothInput runs under the fair lock with every booth of the fair.
func applyBoothInput(cur *careerfair.Booth, fair careerfair.Fair, booths []careerfair.Booth, in BoothInput) error {
	if in.Label != nil {
		cur.Label = strings.TrimSpace(*in.Label)
	}
	if in.BoothNumber != nil {
		num := strings.TrimSpace(*in.BoothNumber)
		if num != "" {
			for _, o := range booths {
				if o.ID != cur.ID && strings.EqualFold(o.BoothNumber, num) {
					return careerfair.ErrBoothNumberTaken
				}
			}
		}
		cur.BoothNumber = num
	}
	if !in.PlacementSet && in.Width == nil && in.Height == nil {
		return nil
	}

	p := careerfair.Placement{X: cur.X, Y: cur.Y, Width: cur.Width, Height: cur.Height}
	if in.PlacementSet {
		p.X, p.Y = in.X, in.Y
	}
	if in.Width != nil {
		p.Width = *in.Width
	}
	if in.Height != nil {
		p.Height = *in.Height
	}
	if err := careerfair.ValidatePlacement(fair.Grid(), cur.ID, p, booths); err != nil {
		return err
	}
	cur.X, cur.Y, cur.Width, cur.Height = p.X, p.Y, p.Width, p.Height
	return nil
}

func (u *CareerFairs) companyJobIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	owned, err := u.jobs.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, internal(err)
	}
	mine := make(map[uuid.UUID]bool, len(owned))
	for _, j := range owned {
		mine[j.ID] = true
	}
	out := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if !mine[id] {
			return nil, invalid("job_ids", fmt.Sprintf("job %s does not belong to your company", id))
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

func (u *CareerFairs) AddInterest(ctx context.Context, actor Actor, boothID uuid.UUID) error {
	if err := requireStudent(actor); err != nil {
		return err
	}
	b, err := u.fairs.GetBooth(ctx, boothID)
	if err != nil {
		return fairError(err)
	}
	created, err := u.fairs.AddInterest(ctx, boothID, actor.UserID)
	if err != nil {
		return fairError(err)
	}
	if !created {
		return nil
	}

	team, err := u.orgs.ListCompanyEmployerIDs(ctx, b.CompanyID)
	if err != nil {
		u.logger.WithError(err).WithField("booth_id", boothID).Warn("booth interest notification skipped")
		return nil
	}
	u.notify.send(team, ws.EventBoothInterest, map[string]any{
		"booth_id":       b.ID,
		"career_fair_id": b.CareerFairID,
		"student_id":     actor.UserID,
	})
	return nil
}

func (u *CareerFairs) RemoveInterest(ctx context.Context, actor Actor, boothID uuid.UUID) error {
	if err := requireStudent(actor); err != nil {
		return err
	}
	if err := u.fairs.RemoveInterest(ctx, boothID, actor.UserID); err != nil {
		return fairError(err)
	}
	return nil
}

func (u *CareerFairs) MyInterests(ctx context.Context, actor Actor) ([]careerfair.Interest, error) {
	if err := requireStudent(actor); err != nil {
		return nil, err
	}
	out, err := u.fairs.ListInterestsByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *CareerFairs) BoothInterests(ctx context.Context, actor Actor, boothID uuid.UUID) ([]careerfair.Interest, error) {
	b, err := u.fairs.GetBooth(ctx, boothID)
	if err != nil {
		return nil, fairError(err)
	}
	switch actor.Role {
	case user.RoleEmployer:
		_, companyID, err := employerCompany(ctx, u.users, actor)
		if err != nil {
			return nil, err
		}
		if companyID != b.CompanyID {
			return nil, ErrForbidden
		}
	case user.RoleUniversity:
		if _, err := u.hostFair(ctx, actor, b.CareerFairID); err != nil {
			return nil, err
		}
	default:
		return nil, ErrForbidden
	}
	out, err := u.fairs.ListInterestsByBooth(ctx, boothID)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}
