package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/org"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
)

type EmployerDashboard struct {
	ActiveJobPosts      int                       `json:"active_job_posts"`
	TotalApplicants     int                       `json:"total_applicants"`
	InterviewsScheduled int                       `json:"interviews_scheduled"`
	NewApplicantsWeekly int                       `json:"new_applicants_weekly"`
	Pipeline            map[string]int            `json:"pipeline"`
	TimeToHireDays      *float64                  `json:"time_to_hire_days"`
	RecentActivity      []repository.Activity     `json:"recent_activity"`
	TopCandidates       []repository.TopCandidate `json:"top_candidates"`
}

type CandidateQuery struct {
	JobID  *uuid.UUID
	Search string
	Status string
	PageParams
}

type CandidateDetail struct {
	PublicStudent
	Applications []job.Application `json:"applications"`
}

type ResumeBankQuery struct {
	Search       string
	UniversityID *uuid.UUID
	Major        string
	Skill        string
	PageParams
}

type CompanyInput struct {
	Name        *string
	Description *string
	Industry    *string
	Website     *string
	LogoURL     *string
	Location    *string
	Size        *string
	FoundedYear *int
	SocialLinks map[string]string
	GalleryURLs []string
}

type EmployerUsecase interface {
	Dashboard(ctx context.Context, actor Actor) (EmployerDashboard, error)
	Jobs(ctx context.Context, actor Actor) ([]repository.CompanyJob, error)
	JobApplicants(ctx context.Context, actor Actor, jobID uuid.UUID) ([]job.Application, error)
	Candidates(ctx context.Context, actor Actor, q CandidateQuery) ([]job.Application, int, error)
	Candidate(ctx context.Context, actor Actor, studentID uuid.UUID) (CandidateDetail, error)
	ResumeBank(ctx context.Context, actor Actor, q ResumeBankQuery) ([]repository.StudentSummary, int, error)
	Team(ctx context.Context, actor Actor) ([]repository.Member, error)
	Company(ctx context.Context, actor Actor) (org.Company, error)
	UpdateCompany(ctx context.Context, actor Actor, in CompanyInput) (org.Company, error)
	JoinRequests(ctx context.Context, actor Actor, status string) ([]org.JoinRequest, error)
	DecideJoinRequest(ctx context.Context, actor Actor, id uuid.UUID, approve bool) (org.JoinRequest, error)
}

type Employer struct {
	users     repository.UserRepository
	orgs      repository.OrgRepository
	jobs      repository.JobRepository
	apps      repository.ApplicationRepository
	students  repository.StudentRepository
	dashboard repository.DashboardRepository
	logger    *logrus.Logger
	now       func() time.Time
}

func NewEmployerUsecase(users repository.UserRepository, orgs repository.OrgRepository, jobs repository.JobRepository,
	apps repository.ApplicationRepository, students repository.StudentRepository, dashboard repository.DashboardRepository,
	logger *logrus.Logger) *Employer {
	return &Employer{
		users:     users,
		orgs:      orgs,
		jobs:      jobs,
		apps:      apps,
		students:  students,
		dashboard: dashboard,
		logger:    orLogger(logger),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (u *Employer) Dashboard(ctx context.Context, actor Actor) (EmployerDashboard, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return EmployerDashboard{}, err
	}

	var d EmployerDashboard
	g, gctx := errgroup.WithContext(ctx)
	counts := []struct {
		metric repository.CompanyMetric
		dst    *int
	}{
		{repository.MetricActiveJobs, &d.ActiveJobPosts},
		{repository.MetricTotalApplicants, &d.TotalApplicants},
		{repository.MetricInterviewsScheduled, &d.InterviewsScheduled},
		{repository.MetricNewApplicantsWeekly, &d.NewApplicantsWeekly},
	}
	for _, c := range counts {
		g.Go(func() error {
			n, err := u.dashboard.CountCompany(gctx, companyID, c.metric)
			*c.dst = n
			return err
		})
	}
	g.Go(func() error {
		p, err := u.dashboard.Pipeline(gctx, companyID)
		d.Pipeline = p
		return err
	})
	g.Go(func() error {
		t, err := u.dashboard.TimeToHireDays(gctx, companyID)
		d.TimeToHireDays = t
		return err
	})
	g.Go(func() error {
		a, err := u.dashboard.RecentActivity(gctx, companyID, u.now().AddDate(0, 0, -7), 5)
		d.RecentActivity = a
		return err
	})
	g.Go(func() error {
		t, err := u.dashboard.TopCandidates(gctx, companyID, 5)
		d.TopCandidates = t
		return err
	})
	if err := g.Wait(); err != nil {
		return EmployerDashboard{}, internal(err)
	}

	if d.Pipeline == nil {
		d.Pipeline = map[string]int{}
	}
	for _, s := range []job.ApplicationStatus{job.StatusApplied, job.StatusInterviewed, job.StatusOffered, job.StatusRejected} {
		if _, ok := d.Pipeline[string(s)]; !ok {
			d.Pipeline[string(s)] = 0
		}
	}
	if d.RecentActivity == nil {
		d.RecentActivity = []repository.Activity{}
	}
	if d.TopCandidates == nil {
		d.TopCandidates = []repository.TopCandidate{}
	}
	return d, nil
}

func (u *Employer) Jobs(ctx context.Context, actor Actor) ([]repository.CompanyJob, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return nil, err
	}
	out, err := u.jobs.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *Employer) JobApplicants(ctx context.Context, actor Actor, jobID uuid.UUID) ([]job.Application, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return nil, err
	}
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "job", job.ErrNotFound)
	}
	if j.CompanyID != companyID {
		return nil, fmt.Errorf("%w: job belongs to another company", ErrForbidden)
	}
	out, err := u.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *Employer) Candidates(ctx context.Context, actor Actor, q CandidateQuery) ([]job.Application, int, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return nil, 0, err
	}
	q.PageParams = q.PageParams.Normalize(20, 100)
	f := repository.CandidateFilter{
		CompanyID: companyID,
		JobID:     q.JobID,
		Search:    strings.TrimSpace(q.Search),
		Page:      q.PageParams.repo(),
	}
	if strings.TrimSpace(q.Status) != "" {
		s, ok := job.ParseApplicationStatus(q.Status)
		if !ok {
			return nil, 0, invalid("status", "unknown application status")
		}
		f.Status = &s
	}
	out, total, err := u.apps.ListCandidates(ctx, f)
	if err != nil {
		return nil, 0, internal(err)
	}
	return out, total, nil
}

func (u *Employer) Candidate(ctx context.Context, actor Actor, studentID uuid.UUID) (CandidateDetail, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return CandidateDetail{}, err
	}
	usr, err := u.users.GetByID(ctx, studentID)
	if err != nil {
		return CandidateDetail{}, notFound(err, "candidate", user.ErrNotFound)
	}
	if usr.Role != user.RoleStudent {
		return CandidateDetail{}, fmt.Errorf("%w: candidate", ErrNotFound)
	}

	var (
		profile user.StudentProfile
		apps    []job.Application
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := u.users.GetStudentProfile(gctx, studentID)
		if errors.Is(err, user.ErrNotFound) {
			profile = emptyStudentProfile(studentID)
			return nil
		}
		profile = p
		return err
	})
	g.Go(func() error {
		a, err := u.apps.ListByApplicantForCompany(gctx, studentID, companyID)
		apps = a
		return err
	})
	if err := g.Wait(); err != nil {
		return CandidateDetail{}, internal(err)
	}
	if apps == nil {
		apps = []job.Application{}
	}
	return CandidateDetail{
		PublicStudent: PublicStudent{
			ID:                usr.ID,
			FullName:          usr.FullName,
			Email:             usr.Email,
			ProfilePictureURL: usr.ProfilePictureURL,
			Profile:           profile,
		},
		Applications: apps,
	}, nil
}

func (u *Employer) ResumeBank(ctx context.Context, actor Actor, q ResumeBankQuery) ([]repository.StudentSummary, int, error) {
	if _, _, err := employerCompany(ctx, u.users, actor); err != nil {
		return nil, 0, err
	}
	q.PageParams = q.PageParams.Normalize(20, 100)
	out, total, err := u.students.List(ctx, repository.StudentFilter{
		Search:           strings.TrimSpace(q.Search),
		UniversityID:     q.UniversityID,
		Major:            strings.TrimSpace(q.Major),
		Skill:            strings.TrimSpace(q.Skill),
		WithParsedResume: true,
		Page:             q.PageParams.repo(),
	})
	if err != nil {
		return nil, 0, internal(err)
	}
	return out, total, nil
}

func (u *Employer) Team(ctx context.Context, actor Actor) ([]repository.Member, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return nil, err
	}
	out, err := u.orgs.ListCompanyTeam(ctx, companyID)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *Employer) Company(ctx context.Context, actor Actor) (org.Company, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return org.Company{}, err
	}
	c, err := u.orgs.GetCompany(ctx, companyID)
	if err != nil {
		return org.Company{}, notFound(err, "company", org.ErrCompanyNotFound)
	}
	return c, nil
}

// companyAdmin returns the company the caller administers.
func (u *Employer) companyAdmin(ctx context.Context, actor Actor) (uuid.UUID, error) {
	p, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return uuid.Nil, err
	}
	if !p.IsCompanyAdmin {
		return uuid.Nil, fmt.Errorf("%w: company admin only", ErrForbidden)
	}
	return companyID, nil
}

func (u *Employer) UpdateCompany(ctx context.Context, actor Actor, in CompanyInput) (org.Company, error) {
	companyID, err := u.companyAdmin(ctx, actor)
	if err != nil {
		return org.Company{}, err
	}
	c, err := u.orgs.GetCompany(ctx, companyID)
	if err != nil {
		return org.Company{}, notFound(err, "company", org.ErrCompanyNotFound)
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&c.Name, in.Name)
	set(&c.Description, in.Description)
	set(&c.Industry, in.Industry)
	set(&c.Website, in.Website)
	set(&c.LogoURL, in.LogoURL)
	set(&c.Location, in.Location)
	if c.Name == "" {
		return org.Company{}, invalid("name", "is required")
	}
	if in.Size != nil {
		if strings.TrimSpace(*in.Size) == "" {
			c.Size = nil
		} else {
			s, ok := org.ParseCompanySize(*in.Size)
			if !ok {
				return org.Company{}, invalid("size", "must be one of SEED, STARTUP, SCALEUP, MID_SIZE, LARGE, ENTERPRISE")
			}
			c.Size = &s
		}
	}
	if in.FoundedYear != nil {
		if y := *in.FoundedYear; y < 1800 || y > u.now().Year() {
			return org.Company{}, invalid("founded_year", "is out of range")
		}
		c.FoundedYear = in.FoundedYear
	}
	if in.SocialLinks != nil {
		c.SocialLinks = in.SocialLinks
	}
	if in.GalleryURLs != nil {
		c.GalleryURLs = trimList(in.GalleryURLs)
	}

	updated, err := u.orgs.UpdateCompany(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return org.Company{}, fmt.Errorf("%w: company name already taken", ErrConflict)
		}
		return org.Company{}, notFound(err, "company", org.ErrCompanyNotFound)
	}
	return updated, nil
}

func (u *Employer) JoinRequests(ctx context.Context, actor Actor, status string) ([]org.JoinRequest, error) {
	companyID, err := u.companyAdmin(ctx, actor)
	if err != nil {
		return nil, err
	}
	st, err := parseRequestStatus(status)
	if err != nil {
		return nil, err
	}
	out, err := u.orgs.ListJoinRequests(ctx, org.KindCompany, companyID, st)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *Employer) DecideJoinRequest(ctx context.Context, actor Actor, id uuid.UUID, approve bool) (org.JoinRequest, error) {
	companyID, err := u.companyAdmin(ctx, actor)
	if err != nil {
		return org.JoinRequest{}, err
	}
	jr, err := decideJoinRequest(ctx, u.orgs, org.KindCompany, companyID, id, actor.UserID, approve)
	if err != nil {
		return org.JoinRequest{}, err
	}
	u.logger.WithFields(logrus.Fields{"component": "employer", "join_request_id": id, "status": jr.Status}).Info("join request decided")
	return jr, nil
}
