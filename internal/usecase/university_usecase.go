package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"careerhub/internal/domain/careerfair"
	"careerhub/internal/domain/org"
	"careerhub/internal/repository"
)

type UniversityDashboard struct {
	Students            int `json:"students"`
	Staff               int `json:"staff"`
	CareerFairs         int `json:"career_fairs"`
	UpcomingFairs       int `json:"upcoming_fairs"`
	RegisteredCompanies int `json:"registered_companies"`
	TotalApplications   int `json:"total_applications"`
	Offers              int `json:"offers"`
}

type StudentQuery struct {
	Search string
	Major  string
	PageParams
}

type UniversityUsecase interface {
	Dashboard(ctx context.Context, actor Actor) (UniversityDashboard, error)
	CareerFairs(ctx context.Context, actor Actor, p PageParams) ([]careerfair.Fair, int, error)
	Students(ctx context.Context, actor Actor, q StudentQuery) ([]repository.StudentSummary, int, error)
	Staff(ctx context.Context, actor Actor) ([]repository.Member, error)
	JoinRequests(ctx context.Context, actor Actor, status string) ([]org.JoinRequest, error)
	DecideJoinRequest(ctx context.Context, actor Actor, id uuid.UUID, approve bool) (org.JoinRequest, error)
}

type University struct {
	users     Profiles
	orgs      repository.OrgRepository
	fairs     repository.CareerFairRepository
	students  repository.StudentRepository
	dashboard repository.DashboardRepository
	logger    *logrus.Logger
}

func NewUniversityUsecase(users Profiles, orgs repository.OrgRepository, fairs repository.CareerFairRepository,
	students repository.StudentRepository, dashboard repository.DashboardRepository, logger *logrus.Logger) *University {
	return &University{
		users:     users,
		orgs:      orgs,
		fairs:     fairs,
		students:  students,
		dashboard: dashboard,
		logger:    orLogger(logger),
	}
}

func (u *University) Dashboard(ctx context.Context, actor Actor) (UniversityDashboard, error) {
	_, universityID, err := staffUniversity(ctx, u.users, actor)
	if err != nil {
		return UniversityDashboard{}, err
	}
	var d UniversityDashboard
	metrics := map[repository.UniversityMetric]*int{
		repository.MetricStudents:            &d.Students,
		repository.MetricStaff:               &d.Staff,
		repository.MetricCareerFairs:         &d.CareerFairs,
		repository.MetricUpcomingFairs:       &d.UpcomingFairs,
		repository.MetricRegisteredCompanies: &d.RegisteredCompanies,
		repository.MetricTotalApplications:   &d.TotalApplications,
		repository.MetricOffers:              &d.Offers,
	}
	g, gctx := errgroup.WithContext(ctx)
	for m, dst := range metrics {
		g.Go(func() error {
			n, err := u.dashboard.CountUniversity(gctx, universityID, m)
			*dst = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return UniversityDashboard{}, internal(err)
	}
	return d, nil
}

func (u *University) CareerFairs(ctx context.Context, actor Actor, p PageParams) ([]careerfair.Fair, int, error) {
	_, universityID, err := staffUniversity(ctx, u.users, actor)
	if err != nil {
		return nil, 0, err
	}
	p = p.Normalize(20, 100)
	out, total, err := u.fairs.List(ctx, repository.FairFilter{UniversityID: &universityID, Page: p.repo()})
	if err != nil {
		return nil, 0, internal(err)
	}
	return out, total, nil
}

func (u *University) Students(ctx context.Context, actor Actor, q StudentQuery) ([]repository.StudentSummary, int, error) {
	_, universityID, err := staffUniversity(ctx, u.users, actor)
	if err != nil {
		return nil, 0, err
	}
	q.PageParams = q.PageParams.Normalize(20, 100)
	out, total, err := u.students.List(ctx, repository.StudentFilter{
		Search:       strings.TrimSpace(q.Search),
		UniversityID: &universityID,
		Major:        strings.TrimSpace(q.Major),
		Page:         q.PageParams.repo(),
	})
	if err != nil {
		return nil, 0, internal(err)
	}
	return out, total, nil
}

func (u *University) Staff(ctx context.Context, actor Actor) ([]repository.Member, error) {
	_, universityID, err := staffUniversity(ctx, u.users, actor)
	if err != nil {
		return nil, err
	}
	out, err := u.orgs.ListUniversityStaff(ctx, universityID)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *University) universityAdmin(ctx context.Context, actor Actor) (uuid.UUID, error) {
	p, universityID, err := staffUniversity(ctx, u.users, actor)
	if err != nil {
		return uuid.Nil, err
	}
	if !p.IsUniversityAdmin {
		return uuid.Nil, fmt.Errorf("%w: university admin only", ErrForbidden)
	}
	return universityID, nil
}

func (u *University) JoinRequests(ctx context.Context, actor Actor, status string) ([]org.JoinRequest, error) {
	universityID, err := u.universityAdmin(ctx, actor)
	if err != nil {
		return nil, err
	}
	st, err := parseRequestStatus(status)
	if err != nil {
		return nil, err
	}
	out, err := u.orgs.ListJoinRequests(ctx, org.KindUniversity, universityID, st)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *University) DecideJoinRequest(ctx context.Context, actor Actor, id uuid.UUID, approve bool) (org.JoinRequest, error) {
	universityID, err := u.universityAdmin(ctx, actor)
	if err != nil {
		return org.JoinRequest{}, err
	}
	jr, err := decideJoinRequest(ctx, u.orgs, org.KindUniversity, universityID, id, actor.UserID, approve)
	if err != nil {
		return org.JoinRequest{}, err
	}
	u.logger.WithFields(logrus.Fields{"component": "university", "join_request_id": id, "status": jr.Status}).Info("join request decided")
	return jr, nil
}
