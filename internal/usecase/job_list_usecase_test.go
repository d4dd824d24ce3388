package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/resume"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
)

type mockJobRepo struct {
	repository.JobRepository

	rows      []job.Job
	err       error
	listCalls int
	filters   []repository.JobFilter
	byID      map[uuid.UUID]job.Job
	created   []job.Job
	links     [][]repository.SkillLink
	embedded  map[uuid.UUID][]float32
	inactive  []uuid.UUID
	sims      map[uuid.UUID]float64
	simCalls  int
	onList    func()
	scored    []repository.ScoredJob
	saved     map[uuid.UUID]map[uuid.UUID]bool
	weights   map[uuid.UUID]job.Weights
	updates   [][]repository.SkillLink
}

func (m *mockJobRepo) Similarities(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	m.simCalls++
	out := map[uuid.UUID]float64{}
	for _, id := range ids {
		if v, ok := m.sims[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *mockJobRepo) List(_ context.Context, f repository.JobFilter) ([]job.Job, int, error) {
	m.listCalls++
	m.filters = append(m.filters, f)
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]job.Job, len(m.rows))
	copy(out, m.rows)
	if m.onList != nil {
		m.onList()
	}
	return out, len(out), nil
}

func (m *mockJobRepo) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	j, ok := m.byID[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (m *mockJobRepo) ListByCompany(_ context.Context, companyID uuid.UUID) ([]repository.CompanyJob, error) {
	var out []repository.CompanyJob
	for _, j := range m.byID {
		if j.CompanyID == companyID {
			out = append(out, repository.CompanyJob{Job: j})
		}
	}
	return out, nil
}

func (m *mockJobRepo) Create(_ context.Context, j job.Job, links []repository.SkillLink) (job.Job, error) {
	j.ID = uuid.New()
	m.created = append(m.created, j)
	m.links = append(m.links, links)
	if m.byID == nil {
		m.byID = map[uuid.UUID]job.Job{}
	}
	m.byID[j.ID] = j
	return j, nil
}

func (m *mockJobRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	m.inactive = append(m.inactive, id)
	return nil
}

func (m *mockJobRepo) SetEmbedding(_ context.Context, id uuid.UUID, vec []float32) error {
	if m.embedded == nil {
		m.embedded = map[uuid.UUID][]float32{}
	}
	m.embedded[id] = vec
	return nil
}

type mockSkillRepo struct {
	repository.SkillRepository

	dict []repository.SkillRef
}

func (m mockSkillRepo) All(context.Context) ([]repository.SkillRef, error) { return m.dict, nil }

func (m mockSkillRepo) Resolve(_ context.Context, names []string) ([]repository.SkillRef, error) {
	out := make([]repository.SkillRef, 0, len(names))
	for _, n := range names {
		out = append(out, repository.SkillRef{ID: uuid.New(), Name: n})
	}
	return out, nil
}

type mockResumeRepo struct {
	repository.ResumeRepository

	rows    map[uuid.UUID]resume.Resume
	saveErr error
}

func (m *mockResumeRepo) GetPrimary(_ context.Context, studentID uuid.UUID) (resume.Resume, error) {
	for _, r := range m.rows {
		if r.StudentID == studentID && r.IsPrimary {
			return r, nil
		}
	}
	return resume.Resume{}, resume.ErrNotFound
}

func (m *mockResumeRepo) GetByID(_ context.Context, id uuid.UUID) (resume.Resume, error) {
	r, ok := m.rows[id]
	if !ok {
		return resume.Resume{}, resume.ErrNotFound
	}
	return r, nil
}

type jobsFixture struct {
	uc    *Jobs
	repo  *mockJobRepo
	cache *memCache
	users *mockUsers
	slept []time.Duration
}

func newJobsFixture(rows ...job.Job) *jobsFixture {
	f := &jobsFixture{
		repo:  &mockJobRepo{rows: rows},
		cache: newMemCache(),
		users: newMockUsers(),
	}
	f.uc = NewJobUsecase(JobDeps{
		Jobs:    f.repo,
		Resumes: &mockResumeRepo{},
		Users:   f.users,
		Skills:  mockSkillRepo{dict: []repository.SkillRef{{ID: uuid.New(), Name: "Go"}, {ID: uuid.New(), Name: "Docker"}}},
		Cache:   f.cache,
	})
	f.uc.sleep = func(d time.Duration) { f.slept = append(f.slept, d) }
	return f
}

func sampleJob(title string, skills ...job.Skill) job.Job {
	return job.Job{ID: uuid.New(), CompanyID: uuid.New(), Title: title, IsActive: true, Skills: skills, CreatedAt: time.Now().UTC()}
}

func TestJobList_AnonymousPagesAreCached(t *testing.T) {
	f := newJobsFixture(sampleJob("Backend Engineer"), sampleJob("Data Analyst"))
	ctx := context.Background()
	params := JobListParams{Keyword: "  Engineer ", PageParams: PageParams{Page: 1, PageSize: 10}}

	items, total, err := f.uc.List(ctx, nil, params)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)
	assert.Nil(t, items[0].MatchScore)

	params.Keyword = "engineer"
	again, total, err := f.uc.List(ctx, nil, params)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, again, 2)
	assert.Equal(t, 1, f.repo.listCalls, "equivalent keyword should reuse the cached page")

	keys, _ := f.cache.Keys(ctx, JobListCachePattern)
	assert.Len(t, keys, 1)
	lockKeys, _ := f.cache.Keys(ctx, jobLockKeyPrefix+"*")
	assert.Empty(t, lockKeys, "lock is released after the page is stored")
}

func TestJobList_DefaultsAndValidation(t *testing.T) {
	f := newJobsFixture()
	ctx := context.Background()

	_, _, err := f.uc.List(ctx, nil, JobListParams{})
	require.NoError(t, err)
	require.Len(t, f.repo.filters, 1)
	assert.Equal(t, repository.Page{Limit: 20, Offset: 0}, f.repo.filters[0].Page)
	assert.Equal(t, repository.SortRecent, f.repo.filters[0].Sort)

	_, _, err = f.uc.List(ctx, nil, JobListParams{SortBy: "oldest"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = f.uc.List(ctx, nil, JobListParams{Types: []string{"gig"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = f.uc.List(ctx, nil, JobListParams{Types: []string{"full-time", "Internship"}, PageParams: PageParams{PageSize: 500}})
	require.NoError(t, err)
	last := f.repo.filters[len(f.repo.filters)-1]
	assert.Equal(t, []job.Type{job.TypeFullTime, job.TypeInternship}, last.Types)
	assert.Equal(t, 100, last.Page.Limit)
}

func TestJobList_MatchSortNeedsStudent(t *testing.T) {
	f := newJobsFixture(sampleJob("Backend Engineer"))
	_, _, err := f.uc.List(context.Background(), nil, JobListParams{SortBy: SortMatch})
	require.NoError(t, err)
	assert.Equal(t, repository.SortRecent, f.repo.filters[0].Sort)
	assert.Equal(t, 20, f.repo.filters[0].Page.Limit)
}

func TestJobList_LockHeldFallsBackToDatabase(t *testing.T) {
	f := newJobsFixture(sampleJob("Backend Engineer"))
	ctx := context.Background()
	params := JobListParams{SortBy: SortRecent, PageParams: PageParams{Page: 1, PageSize: 20}}
	ok, _ := f.cache.SetIfNotExists(ctx, JobListLockKey(JobListCacheKey(params)), "1", time.Minute)
	require.True(t, ok)

	items, _, err := f.uc.List(ctx, nil, params)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Len(t, f.slept, 1)
	assert.Equal(t, 1, f.repo.listCalls)
}

func TestJobList_CacheUnavailable(t *testing.T) {
	f := newJobsFixture(sampleJob("Backend Engineer"))
	f.cache.available = false
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := f.uc.List(ctx, nil, JobListParams{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.repo.listCalls)
	assert.Zero(t, f.cache.size())
}

func TestJobList_RepositoryError(t *testing.T) {
	f := newJobsFixture()
	f.repo.err = errors.New("db down")

	_, _, err := f.uc.List(context.Background(), nil, JobListParams{})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Zero(t, f.cache.size(), "failures are not cached and the lock is released")
}

func TestJobList_StudentSeesSkillScores(t *testing.T) {
	goSkill := job.Skill{ID: uuid.New(), Name: "Go", IsMandatory: true}
	match := sampleJob("Go Developer", goSkill)
	miss := sampleJob("Chef", job.Skill{ID: uuid.New(), Name: "Cooking", IsMandatory: true})
	f := newJobsFixture(match, miss)
	student := Actor{UserID: f.users.addStudent("go"), Role: user.RoleStudent}

	items, _, err := f.uc.List(context.Background(), &student, JobListParams{SortBy: SortMatch})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, match.ID, items[0].ID)
	require.NotNil(t, items[0].MatchScore)
	require.NotNil(t, items[1].MatchScore)
	assert.Greater(t, *items[0].MatchScore, *items[1].MatchScore)
	assert.Equal(t, SourceSkills, items[0].MatchSource)
	assert.Equal(t, rankWindow, f.repo.filters[0].Page.Limit)
}

func TestJobs_CreateInvalidatesListings(t *testing.T) {
	f := newJobsFixture(sampleJob("Backend Engineer"))
	ctx := context.Background()
	companyID := uuid.New()
	employer := Actor{UserID: f.users.addEmployer(companyID, false), Role: user.RoleEmployer}

	_, _, err := f.uc.List(ctx, nil, JobListParams{})
	require.NoError(t, err)
	require.Equal(t, 1, f.cache.size())

	title := "Platform Engineer"
	desc := "Run Go services in Docker."
	created, err := f.uc.Create(ctx, employer, job.Draft{Title: &title, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, companyID, created.CompanyID)
	assert.True(t, created.IsActive)
	listKeys, _ := f.cache.Keys(ctx, JobListCachePattern)
	assert.Empty(t, listKeys)
	assert.Len(t, f.repo.links[0], 2, "skills are extracted from the text when none are given")

	_, err = f.uc.Create(ctx, employer, job.Draft{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	student := Actor{UserID: f.users.addStudent(), Role: user.RoleStudent}
	_, err = f.uc.Create(ctx, student, job.Draft{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestJobs_DeleteChecksCompany(t *testing.T) {
	f := newJobsFixture()
	ctx := context.Background()
	companyID := uuid.New()
	own := sampleJob("Ours")
	own.CompanyID = companyID
	other := sampleJob("Theirs")
	f.repo.byID = map[uuid.UUID]job.Job{own.ID: own, other.ID: other}
	employer := Actor{UserID: f.users.addEmployer(companyID, false), Role: user.RoleEmployer}

	assert.ErrorIs(t, f.uc.Delete(ctx, employer, other.ID), ErrForbidden)
	assert.ErrorIs(t, f.uc.Delete(ctx, employer, uuid.New()), ErrNotFound)
	require.NoError(t, f.uc.Delete(ctx, employer, own.ID))
	assert.Equal(t, []uuid.UUID{own.ID}, f.repo.inactive)
}

func TestJobList_FillRacingInvalidationIsNotServed(t *testing.T) {
	f := newJobsFixture(sampleJob("Backend Engineer"))
	ctx := context.Background()

	// a job mutation lands while the first reader is still querying
	f.repo.onList = func() {
		f.repo.onList = nil
		f.repo.rows = append(f.repo.rows, sampleJob("Data Engineer"))
		f.uc.invalidateJobLists(ctx)
	}

	first, _, err := f.uc.List(ctx, nil, JobListParams{})
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, total, err := f.uc.List(ctx, nil, JobListParams{})
	require.NoError(t, err)
	assert.Len(t, second, 2, "the page filled before the mutation must not be served")
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, f.repo.listCalls)

	third, _, err := f.uc.List(ctx, nil, JobListParams{})
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, 2, f.repo.listCalls, "the current generation is cached")
}
