package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/resume"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
	"careerhub/internal/ws"
)

type ApplyInput struct {
	JobID       uuid.UUID
	ResumeID    *uuid.UUID
	CoverLetter string
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, actor Actor, in ApplyInput) (job.Application, error)
	ListMine(ctx context.Context, actor Actor, status string) ([]job.Application, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (job.Application, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (job.Application, error)
}

type Applications struct {
	apps    repository.ApplicationRepository
	jobs    repository.JobRepository
	resumes repository.ResumeRepository
	users   Profiles
	notify  Notifier
	logger  *logrus.Logger
	now     func() time.Time
}

func NewApplicationUsecase(apps repository.ApplicationRepository, jobs repository.JobRepository, resumes repository.ResumeRepository,
	users Profiles, notify Notifier, logger *logrus.Logger) *Applications {
	return &Applications{
		apps:    apps,
		jobs:    jobs,
		resumes: resumes,
		users:   users,
		notify:  notify,
		logger:  orLogger(logger),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (u *Applications) Apply(ctx context.Context, actor Actor, in ApplyInput) (job.Application, error) {
	if err := requireStudent(actor); err != nil {
		return job.Application{}, err
	}
	j, err := u.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return job.Application{}, notFound(err, "job", job.ErrNotFound)
	}
	if !j.AcceptsApplications(u.now()) {
		return job.Application{}, invalid("job_id", "job is no longer accepting applications")
	}

	var rs resume.Resume
	if in.ResumeID != nil {
		rs, err = u.resumes.GetByID(ctx, *in.ResumeID)
		if err != nil {
			return job.Application{}, notFound(err, "resume", resume.ErrNotFound)
		}
		if rs.StudentID != actor.UserID {
			return job.Application{}, fmt.Errorf("%w: resume", ErrNotFound)
		}
	} else {
		rs, err = u.resumes.GetPrimary(ctx, actor.UserID)
		if errors.Is(err, resume.ErrNotFound) {
			return job.Application{}, invalid("resume_id", "upload a resume before applying")
		}
		if err != nil {
			return job.Application{}, internal(err)
		}
	}

	resumeID := rs.ID
	created, err := u.apps.Create(ctx, job.Application{
		JobID:       j.ID,
		ApplicantID: actor.UserID,
		ResumeID:    &resumeID,
		Status:      job.StatusApplied,
		CoverLetter: strings.TrimSpace(in.CoverLetter),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return job.Application{}, fmt.Errorf("%w: already applied to this job", ErrConflict)
		}
		return job.Application{}, internal(err)
	}
	u.logger.WithFields(logrus.Fields{"component": "applications", "job_id": j.ID, "application_id": created.ID}).Info("application submitted")
	return created, nil
}

func (u *Applications) ListMine(ctx context.Context, actor Actor, status string) ([]job.Application, error) {
	if err := requireStudent(actor); err != nil {
		return nil, err
	}
	var st *job.ApplicationStatus
	if strings.TrimSpace(status) != "" {
		s, ok := job.ParseApplicationStatus(status)
		if !ok {
			return nil, invalid("status", "unknown application status")
		}
		st = &s
	}
	out, err := u.apps.ListByApplicant(ctx, actor.UserID, st)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *Applications) Get(ctx context.Context, actor Actor, id uuid.UUID) (job.Application, error) {
	app, err := u.apps.GetByID(ctx, id)
	if err != nil {
		return job.Application{}, notFound(err, "application", job.ErrApplicationNotFound)
	}
	if err := canViewApplication(ctx, u.users, actor, app); err != nil {
		return job.Application{}, err
	}
	return app, nil
}

// canViewApplication allows the applicant and employers of the job's company.
func canViewApplication(ctx context.Context, profiles Profiles, actor Actor, app job.Application) error {
	if actor.Is(user.RoleStudent) && app.ApplicantID == actor.UserID {
		return nil
	}
	if actor.Is(user.RoleEmployer) {
		_, companyID, err := employerCompany(ctx, profiles, actor)
		if err != nil {
			return err
		}
		if companyID == app.CompanyID {
			return nil
		}
	}
	return ErrForbidden
}

func (u *Applications) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (job.Application, error) {
	to, ok := job.ParseApplicationStatus(status)
	if !ok {
		return job.Application{}, invalid("status", "unknown application status")
	}
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return job.Application{}, err
	}
	app, err := u.apps.GetByID(ctx, id)
	if err != nil {
		return job.Application{}, notFound(err, "application", job.ErrApplicationNotFound)
	}
	if app.CompanyID != companyID {
		return job.Application{}, fmt.Errorf("%w: application belongs to another company", ErrForbidden)
	}
	if !job.CanTransition(app.Status, to) {
		return job.Application{}, invalid("status", fmt.Sprintf("cannot move from %s to %s", app.Status, to))
	}

	updated, err := u.apps.UpdateStatus(ctx, id, app.Status, to)
	if err != nil {
		if errors.Is(err, repository.ErrStale) {
			return job.Application{}, fmt.Errorf("%w: application status changed concurrently", ErrConflict)
		}
		return job.Application{}, notFound(err, "application", job.ErrApplicationNotFound)
	}

	u.notify.send([]uuid.UUID{updated.ApplicantID}, ws.EventApplicationStatusChanged, map[string]any{
		"application_id": updated.ID,
		"job_id":         updated.JobID,
		"job_title":      updated.JobTitle,
		"from":           app.Status,
		"status":         updated.Status,
	})
	return updated, nil
}
