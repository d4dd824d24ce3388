package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/resume"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
	"careerhub/internal/ws"
)

type mockAppRepo struct {
	repository.ApplicationRepository

	rows map[uuid.UUID]job.Application
}

func newMockAppRepo() *mockAppRepo {
	return &mockAppRepo{rows: map[uuid.UUID]job.Application{}}
}

func (m *mockAppRepo) Create(_ context.Context, a job.Application) (job.Application, error) {
	for _, r := range m.rows {
		if r.JobID == a.JobID && r.ApplicantID == a.ApplicantID {
			return job.Application{}, repository.ErrDuplicate
		}
	}
	a.ID = uuid.New()
	m.rows[a.ID] = a
	return a, nil
}

func (m *mockAppRepo) GetByID(_ context.Context, id uuid.UUID) (job.Application, error) {
	a, ok := m.rows[id]
	if !ok {
		return job.Application{}, job.ErrApplicationNotFound
	}
	return a, nil
}

func (m *mockAppRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to job.ApplicationStatus) (job.Application, error) {
	a := m.rows[id]
	if a.Status != from {
		return job.Application{}, repository.ErrStale
	}
	a.Status = to
	m.rows[id] = a
	return a, nil
}

func (m *mockAppRepo) ListByApplicant(_ context.Context, applicantID uuid.UUID, status *job.ApplicationStatus) ([]job.Application, error) {
	var out []job.Application
	for _, a := range m.rows {
		if a.ApplicantID == applicantID && (status == nil || a.Status == *status) {
			out = append(out, a)
		}
	}
	return out, nil
}

type applicationFixture struct {
	uc        *Applications
	apps      *mockAppRepo
	notes     *recordingNotifier
	student   Actor
	employer  Actor
	companyID uuid.UUID
	openJob   job.Job
	closedJob job.Job
	resumeID  uuid.UUID
}

func newApplicationFixture(t *testing.T) applicationFixture {
	t.Helper()
	users := newMockUsers()
	companyID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	openJob := job.Job{ID: uuid.New(), CompanyID: companyID, Title: "Backend Engineer", IsActive: true}
	closedJob := job.Job{ID: uuid.New(), CompanyID: companyID, Title: "Old Role", IsActive: true, ApplicationDeadline: &yesterday}
	studentID := users.addStudent()
	rs := resume.Resume{ID: uuid.New(), StudentID: studentID, IsPrimary: true}

	f := applicationFixture{
		apps:      newMockAppRepo(),
		notes:     &recordingNotifier{},
		student:   Actor{UserID: studentID, Role: user.RoleStudent},
		employer:  Actor{UserID: users.addEmployer(companyID, false), Role: user.RoleEmployer},
		companyID: companyID,
		openJob:   openJob,
		closedJob: closedJob,
		resumeID:  rs.ID,
	}
	jobs := &mockJobRepo{byID: map[uuid.UUID]job.Job{openJob.ID: openJob, closedJob.ID: closedJob}}
	resumes := &mockResumeRepo{rows: map[uuid.UUID]resume.Resume{rs.ID: rs}}
	f.uc = NewApplicationUsecase(f.apps, jobs, resumes, users, f.notes.Notifier(), nil)
	f.uc.now = func() time.Time { return now }
	return f
}

func TestApplications_ApplyUsesPrimaryResume(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	app, err := f.uc.Apply(ctx, f.student, ApplyInput{JobID: f.openJob.ID, CoverLetter: "  hi  "})
	require.NoError(t, err)
	assert.Equal(t, job.StatusApplied, app.Status)
	assert.Equal(t, "hi", app.CoverLetter)
	require.NotNil(t, app.ResumeID)
	assert.Equal(t, f.resumeID, *app.ResumeID)

	_, err = f.uc.Apply(ctx, f.student, ApplyInput{JobID: f.openJob.ID})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestApplications_ApplyRules(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	_, err := f.uc.Apply(ctx, f.employer, ApplyInput{JobID: f.openJob.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.uc.Apply(ctx, f.student, ApplyInput{JobID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.uc.Apply(ctx, f.student, ApplyInput{JobID: f.closedJob.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	foreign := uuid.New()
	_, err = f.uc.Apply(ctx, f.student, ApplyInput{JobID: f.openJob.ID, ResumeID: &foreign})
	assert.ErrorIs(t, err, ErrNotFound)

	other := Actor{UserID: uuid.New(), Role: user.RoleStudent}
	_, err = f.uc.Apply(ctx, other, ApplyInput{JobID: f.openJob.ID})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "resume_id")
}

func TestApplications_StatusTransitions(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app, err := f.uc.Apply(ctx, f.student, ApplyInput{JobID: f.openJob.ID})
	require.NoError(t, err)
	app.CompanyID = f.companyID
	f.apps.rows[app.ID] = app

	_, err = f.uc.UpdateStatus(ctx, f.employer, app.ID, "hired")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.UpdateStatus(ctx, f.student, app.ID, "offered")
	assert.ErrorIs(t, err, ErrForbidden)

	out, err := f.uc.UpdateStatus(ctx, f.employer, app.ID, "offered")
	require.NoError(t, err)
	assert.Equal(t, job.StatusOffered, out.Status)
	assert.Equal(t, []string{ws.EventApplicationStatusChanged}, f.notes.types())
	assert.Equal(t, []uuid.UUID{f.student.UserID}, f.notes.events[0].UserIDs)

	_, err = f.uc.UpdateStatus(ctx, f.employer, app.ID, "rejected")
	assert.ErrorIs(t, err, ErrInvalidInput, "offered is terminal")
}

func TestApplications_Visibility(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app, err := f.uc.Apply(ctx, f.student, ApplyInput{JobID: f.openJob.ID})
	require.NoError(t, err)
	app.CompanyID = f.companyID
	f.apps.rows[app.ID] = app

	_, err = f.uc.Get(ctx, f.student, app.ID)
	assert.NoError(t, err)
	_, err = f.uc.Get(ctx, f.employer, app.ID)
	assert.NoError(t, err)

	_, err = f.uc.Get(ctx, Actor{UserID: uuid.New(), Role: user.RoleStudent}, app.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.uc.Get(ctx, f.student, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := f.uc.ListMine(ctx, f.student, "applied")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	_, err = f.uc.ListMine(ctx, f.student, "pending")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
