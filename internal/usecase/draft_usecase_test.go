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
	"careerhub/internal/domain/user"
	"careerhub/internal/infrastructure/fetch"
	"careerhub/internal/infrastructure/llm"
)

type stubFetcher struct {
	page fetch.Page
	err  error
	urls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (fetch.Page, error) {
	s.urls = append(s.urls, url)
	return s.page, s.err
}

type publishingJobs struct {
	JobUsecase

	got []job.Draft
	err error
}

func (p *publishingJobs) Create(_ context.Context, _ Actor, d job.Draft) (job.Job, error) {
	p.got = append(p.got, d)
	if p.err != nil {
		return job.Job{}, p.err
	}
	return job.Job{ID: uuid.New(), Title: *d.Title}, nil
}

type draftFixture struct {
	uc       *Drafts
	cache    *memCache
	jobs     *publishingJobs
	fetcher  *stubFetcher
	employer Actor
}

func newDraftFixture(t *testing.T) draftFixture {
	t.Helper()
	users := newMockUsers()
	f := draftFixture{
		cache:    newMemCache(),
		jobs:     &publishingJobs{},
		fetcher:  &stubFetcher{},
		employer: Actor{UserID: users.addEmployer(uuid.New(), false), Role: user.RoleEmployer},
	}
	f.uc = NewDraftUsecase(f.cache, users, f.jobs, f.fetcher, nil, nil)
	clock := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return f
}

func TestDrafts_Lifecycle(t *testing.T) {
	f := newDraftFixture(t)
	ctx := context.Background()

	first, err := f.uc.Create(ctx, f.employer, 1, job.Draft{Title: strp("Analyst")})
	require.NoError(t, err)
	second, err := f.uc.Create(ctx, f.employer, 0, job.Draft{})
	require.NoError(t, err)

	list, err := f.uc.List(ctx, f.employer)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	patched, err := f.uc.Patch(ctx, f.employer, first.ID, DraftPatch{Step: intp(2), Data: job.Draft{Location: strp("Penang")}})
	require.NoError(t, err)
	assert.Equal(t, 2, patched.Step)
	assert.Equal(t, "Analyst", *patched.Data.Title)
	assert.Equal(t, "Penang", *patched.Data.Location)

	_, err = f.uc.Patch(ctx, f.employer, first.ID, DraftPatch{Step: intp(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	published, err := f.uc.Publish(ctx, f.employer, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Analyst", published.Title)
	_, err = f.uc.Get(ctx, f.employer, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.uc.Delete(ctx, f.employer, second.ID))
	assert.ErrorIs(t, f.uc.Delete(ctx, f.employer, second.ID), ErrNotFound)
}

func TestDrafts_PublishFailureKeepsDraft(t *testing.T) {
	f := newDraftFixture(t)
	ctx := context.Background()
	f.jobs.err = &ValidationError{Fields: map[string]string{"description": "is required"}}

	d, err := f.uc.Create(ctx, f.employer, 3, job.Draft{Title: strp("Analyst")})
	require.NoError(t, err)
	_, err = f.uc.Publish(ctx, f.employer, d.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Get(ctx, f.employer, d.ID)
	assert.NoError(t, err)
}

func TestDrafts_RequireEmployerAndCache(t *testing.T) {
	f := newDraftFixture(t)
	ctx := context.Background()

	student := Actor{UserID: uuid.New(), Role: user.RoleStudent}
	_, err := f.uc.Create(ctx, student, 0, job.Draft{})
	assert.ErrorIs(t, err, ErrForbidden)

	f.cache.available = false
	_, err = f.uc.List(ctx, f.employer)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDrafts_DraftsArePerUser(t *testing.T) {
	f := newDraftFixture(t)
	ctx := context.Background()
	d, err := f.uc.Create(ctx, f.employer, 0, job.Draft{})
	require.NoError(t, err)

	users := f.uc.users.(*mockUsers)
	colleague := Actor{UserID: users.addEmployer(uuid.New(), false), Role: user.RoleEmployer}
	_, err = f.uc.Get(ctx, colleague, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDrafts_ImportFromJSONLD(t *testing.T) {
	f := newDraftFixture(t)
	f.fetcher.page = fetch.Page{
		URL:   "https://jobs.example.com/1",
		Title: "Careers",
		Postings: []string{`{"@context":"https://schema.org","@type":"JobPosting","title":"Platform Engineer",
			"description":"<p>Run our <b>Kubernetes</b> fleet</p>","employmentType":["FULL_TIME"],
			"jobLocationType":"TELECOMMUTE","baseSalary":{"currency":"myr","value":{"minValue":6000,"maxValue":9000}}}`},
	}

	d, err := f.uc.Import(context.Background(), f.employer, " https://jobs.example.com/1 ")
	require.NoError(t, err)
	assert.Equal(t, "https://jobs.example.com/1", d.SourceURL)
	assert.Equal(t, "Platform Engineer", *d.Data.Title)
	assert.Equal(t, "Run our Kubernetes fleet", *d.Data.Description)
	assert.Equal(t, string(job.TypeFullTime), *d.Data.Type)
	assert.Equal(t, string(job.Remote), *d.Data.RemoteOption)
	assert.Equal(t, "MYR", *d.Data.Currency)
	assert.Equal(t, 6000, *d.Data.SalaryMin)
	assert.Equal(t, 9000, *d.Data.SalaryMax)
}

func TestDrafts_StructureWithModel(t *testing.T) {
	f := newDraftFixture(t)
	f.fetcher.page = fetch.Page{URL: "https://jobs.example.com/2", Title: "Data role", Text: "We need SQL"}
	f.uc.llm = &fakeLLM{replies: map[llm.Schema]string{
		llm.SchemaJobImport: `{"title":"Data Engineer","requirements":["SQL"," "],"job_type":"contract",
			"remote_option":"hybrid","salary_min":null,"salary_max":7000,"currency":"usd","skills":["SQL","Python"]}`,
	}}

	d, err := f.uc.Structure(context.Background(), "https://jobs.example.com/2")
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", *d.Title)
	assert.Equal(t, []string{"SQL"}, d.Requirements)
	assert.Equal(t, string(job.TypeContract), *d.Type)
	assert.Equal(t, string(job.Hybrid), *d.RemoteOption)
	assert.Nil(t, d.SalaryMin)
	assert.Equal(t, 7000, *d.SalaryMax)
	assert.Equal(t, []string{"SQL", "Python"}, d.Skills)
}

func TestDrafts_StructureRejectsBadURLs(t *testing.T) {
	f := newDraftFixture(t)
	ctx := context.Background()

	for _, raw := range []string{"", "ftp://example.com/job", "not a url"} {
		_, err := f.uc.Structure(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidInput, raw)
	}
	assert.Empty(t, f.fetcher.urls)

	f.fetcher.err = errors.New("timeout")
	_, err := f.uc.Structure(ctx, "https://example.com/job")
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.uc.fetcher = nil
	_, err = f.uc.Structure(ctx, "https://example.com/job")
	assert.ErrorIs(t, err, ErrUnavailable)
}
