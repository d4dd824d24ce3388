package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/matching"
	"careerhub/internal/domain/resume"
	"careerhub/internal/domain/user"
	"careerhub/internal/infrastructure/storage"
	"careerhub/internal/repository"
	"careerhub/internal/worker"
	"careerhub/internal/ws"
)

type memFiles struct {
	data map[string][]byte
}

func (m *memFiles) Save(rel string, r io.Reader, maxBytes int64) (storage.Saved, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.Saved{}, err
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return storage.Saved{}, storage.ErrTooLarge
	}
	sum := sha256.Sum256(b)
	m.data[rel] = b
	return storage.Saved{Path: rel, Size: int64(len(b)), SHA256: hex.EncodeToString(sum[:])}, nil
}

func (m *memFiles) Read(rel string) ([]byte, error) {
	b, ok := m.data[rel]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return b, nil
}

func (m *memFiles) Delete(rel string) error {
	delete(m.data, rel)
	return nil
}

func (m *mockResumeRepo) Create(_ context.Context, r resume.Resume) (resume.Resume, error) {
	for id, o := range m.rows {
		if o.StudentID == r.StudentID {
			o.IsPrimary = false
			m.rows[id] = o
		}
	}
	r.IsPrimary = true
	m.rows[r.ID] = r
	return r, nil
}

func (m *mockResumeRepo) SetStatus(_ context.Context, id uuid.UUID, status resume.ParseStatus, parseErr string) error {
	r := m.rows[id]
	r.Status, r.ParseError = status, parseErr
	m.rows[id] = r
	return nil
}

func (m *mockResumeRepo) SaveParsed(_ context.Context, id uuid.UUID, text string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	r := m.rows[id]
	r.ParsedText, r.Status = text, resume.StatusParsed
	m.rows[id] = r
	return nil
}

func (m *mockResumeRepo) ListByStatus(_ context.Context, status resume.ParseStatus, limit int) ([]resume.Resume, error) {
	var out []resume.Resume
	for _, r := range m.rows {
		if r.Status == status && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockResumeRepo) Delete(_ context.Context, studentID, id uuid.UUID) (resume.Resume, error) {
	r, ok := m.rows[id]
	if !ok || r.StudentID != studentID {
		return resume.Resume{}, resume.ErrNotFound
	}
	delete(m.rows, id)
	return r, nil
}

func (m *mockAppRepo) ResumeAttachedToCompany(_ context.Context, resumeID, companyID uuid.UUID) (bool, error) {
	for _, a := range m.rows {
		if a.ResumeID != nil && *a.ResumeID == resumeID && a.CompanyID == companyID {
			return true, nil
		}
	}
	return false, nil
}

type mockAnalyses struct {
	repository.AnalysisRepository

	cv        map[uuid.UUID]resume.Analysis
	stale     []uuid.UUID
	staleJobs []uuid.UUID
	fresh     map[uuid.UUID]int
	reports   map[uuid.UUID]matching.Report
}

func (m *mockAnalyses) FreshScores(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	for _, id := range ids {
		if v, ok := m.fresh[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *mockAnalyses) GetJobReport(_ context.Context, _ uuid.UUID, jobID uuid.UUID) (matching.Report, error) {
	r, ok := m.reports[jobID]
	if !ok {
		return matching.Report{}, repository.ErrNotFound
	}
	return r, nil
}

func (m *mockAnalyses) GetCV(_ context.Context, id uuid.UUID) (resume.Analysis, error) {
	a, ok := m.cv[id]
	if !ok {
		return resume.Analysis{}, repository.ErrNotFound
	}
	return a, nil
}

func (m *mockAnalyses) UpsertCV(_ context.Context, id uuid.UUID, a resume.Analysis) error {
	m.cv[id] = a
	return nil
}

func (m *mockAnalyses) MarkStaleByResume(_ context.Context, id uuid.UUID) error {
	m.stale = append(m.stale, id)
	return nil
}

type resumeFixture struct {
	uc        *Resumes
	repo      *mockResumeRepo
	files     *memFiles
	analyses  *mockAnalyses
	apps      *mockAppRepo
	notes     *recordingNotifier
	student   Actor
	employer  Actor
	companyID uuid.UUID
}

func newResumeFixture(t *testing.T) resumeFixture {
	t.Helper()
	users := newMockUsers()
	companyID := uuid.New()
	f := resumeFixture{
		repo:      &mockResumeRepo{rows: map[uuid.UUID]resume.Resume{}},
		files:     &memFiles{data: map[string][]byte{}},
		analyses:  &mockAnalyses{cv: map[uuid.UUID]resume.Analysis{}},
		apps:      newMockAppRepo(),
		notes:     &recordingNotifier{},
		student:   Actor{UserID: users.addStudent("Go", "Kubernetes"), Role: user.RoleStudent},
		employer:  Actor{UserID: users.addEmployer(companyID, false), Role: user.RoleEmployer},
		companyID: companyID,
	}
	f.uc = NewResumeUsecase(ResumeDeps{
		Resumes:  f.repo,
		Analyses: f.analyses,
		Apps:     f.apps,
		Users:    users,
		Skills:   mockSkillRepo{dict: []repository.SkillRef{{ID: uuid.New(), Name: "Go"}, {ID: uuid.New(), Name: "SQL"}}},
		Files:    f.files,
		Notify:   f.notes.Notifier(),
		MaxBytes: 1 << 10,
	})
	return f
}

const sampleCV = `Aisyah Rahman
aisyah@example.com

Education
BSc Computer Science

Experience
Built Go services backed by SQL databases.
`

func (f resumeFixture) upload(t *testing.T, name, body string) resume.Resume {
	t.Helper()
	rs, err := f.uc.Upload(context.Background(), f.student, UploadInput{
		FileName: name, Size: int64(len(body)), Body: strings.NewReader(body),
	})
	require.NoError(t, err)
	return rs
}

func TestResumes_UploadParsesTextInline(t *testing.T) {
	f := newResumeFixture(t)

	rs := f.upload(t, "cv.txt", sampleCV)
	assert.Equal(t, resume.TypeText, rs.ContentType)
	assert.True(t, rs.IsPrimary)
	assert.True(t, strings.HasPrefix(rs.FilePath, "resumes/"+f.student.UserID.String()+"/"))

	stored := f.repo.rows[rs.ID]
	assert.Equal(t, resume.StatusParsed, stored.Status)
	assert.Contains(t, stored.ParsedText, "Go services")

	a, err := f.uc.Analysis(context.Background(), f.student, rs.ID)
	require.NoError(t, err)
	assert.Contains(t, a.KeywordsFound, "Go")
	assert.Contains(t, a.KeywordsMissing, "Kubernetes")
	assert.Equal(t, []uuid.UUID{rs.ID}, f.analyses.stale)
	assert.Equal(t, []string{ws.EventResumeAnalyzed}, f.notes.types())
}

func TestResumes_UploadRejections(t *testing.T) {
	f := newResumeFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   UploadInput
		want error
	}{
		{"image", UploadInput{FileName: "me.png", DeclaredType: "image/png", Size: 3, Body: strings.NewReader("png")}, ErrUnsupportedMedia},
		{"empty", UploadInput{FileName: "cv.txt", Size: 0, Body: strings.NewReader("")}, ErrInvalidInput},
		{"declared too large", UploadInput{FileName: "cv.txt", Size: 4096, Body: strings.NewReader("x")}, ErrTooLarge},
		{"body too large", UploadInput{FileName: "cv.txt", Size: 10, Body: bytes.NewReader(make([]byte, 2048))}, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Upload(ctx, f.student, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.repo.rows)

	_, err := f.uc.Upload(ctx, f.employer, UploadInput{FileName: "cv.txt", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResumes_PDFWithoutModelFails(t *testing.T) {
	f := newResumeFixture(t)

	rs := f.upload(t, "cv.pdf", "%PDF-1.4 fake")
	stored := f.repo.rows[rs.ID]
	assert.Equal(t, resume.StatusFailed, stored.Status)
	assert.Contains(t, stored.ParseError, "language model")
	require.Len(t, f.notes.events, 1)
	assert.Equal(t, ws.EventResumeAnalyzed, f.notes.events[0].Type)
}

func TestResumes_DownloadAccess(t *testing.T) {
	f := newResumeFixture(t)
	ctx := context.Background()
	rs := f.upload(t, "cv.txt", sampleCV)

	_, data, err := f.uc.Download(ctx, f.student, rs.ID)
	require.NoError(t, err)
	assert.Equal(t, sampleCV, string(data))

	other := Actor{UserID: uuid.New(), Role: user.RoleStudent}
	_, _, err = f.uc.Download(ctx, other, rs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = f.uc.Download(ctx, f.employer, rs.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.apps.Create(ctx, job.Application{JobID: uuid.New(), CompanyID: f.companyID, ApplicantID: f.student.UserID, ResumeID: &rs.ID})
	require.NoError(t, err)
	_, _, err = f.uc.Download(ctx, f.employer, rs.ID)
	assert.NoError(t, err)
}

func TestResumes_AnalysisStates(t *testing.T) {
	f := newResumeFixture(t)
	ctx := context.Background()

	id := uuid.New()
	f.repo.rows[id] = resume.Resume{ID: id, StudentID: f.student.UserID, Status: resume.StatusProcessing}
	_, err := f.uc.Analysis(ctx, f.student, id)
	assert.ErrorIs(t, err, ErrProcessing)

	f.repo.rows[id] = resume.Resume{ID: id, StudentID: f.student.UserID, Status: resume.StatusParsed}
	a, err := f.uc.Analysis(ctx, f.student, id)
	require.NoError(t, err)
	assert.Equal(t, resume.Placeholder(), a)
}

func TestResumes_DeleteRemovesFile(t *testing.T) {
	f := newResumeFixture(t)
	ctx := context.Background()
	rs := f.upload(t, "cv.txt", sampleCV)

	require.NoError(t, f.uc.Delete(ctx, f.student, rs.ID))
	assert.Empty(t, f.files.data)
	assert.ErrorIs(t, f.uc.Delete(ctx, f.student, rs.ID), ErrNotFound)
}

func TestResumes_ReparseQueuesMatchingStatus(t *testing.T) {
	f := newResumeFixture(t)
	tasks := &inlineTasks{}
	f.uc.tasks = tasks

	for i := 0; i < 3; i++ {
		id := uuid.New()
		f.repo.rows[id] = resume.Resume{ID: id, StudentID: f.student.UserID, Status: resume.StatusFailed, FilePath: "missing"}
	}
	n, err := f.uc.Reparse(context.Background(), resume.StatusFailed, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, tasks.names, 2)
}

func TestResumes_ParseErrorMarksFailed(t *testing.T) {
	f := newResumeFixture(t)
	f.repo.saveErr = errors.New("connection reset")

	rs := f.upload(t, "cv.txt", sampleCV)
	stored := f.repo.rows[rs.ID]
	assert.Equal(t, resume.StatusFailed, stored.Status)
	assert.Contains(t, stored.ParseError, "connection reset")

	_, err := f.uc.Analysis(context.Background(), f.student, rs.ID)
	assert.NotErrorIs(t, err, ErrProcessing)
	require.NotEmpty(t, f.notes.events)
	assert.Equal(t, ws.EventResumeAnalyzed, f.notes.events[len(f.notes.events)-1].Type)
}

func TestResumes_UnqueuedParseMarksFailed(t *testing.T) {
	f := newResumeFixture(t)
	pool := worker.NewPool(1, 1)
	pool.Close()
	f.uc.tasks = pool

	rs := f.upload(t, "cv.txt", sampleCV)
	stored := f.repo.rows[rs.ID]
	assert.Equal(t, resume.StatusFailed, stored.Status)
	assert.False(t, stored.Status.InFlight())
}
