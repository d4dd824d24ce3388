package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/domain/org"
	"careerhub/internal/repository"
)

type directoryOrgs struct {
	repository.OrgRepository

	companies    map[uuid.UUID]org.Company
	universities map[uuid.UUID]org.University
	booths       map[uuid.UUID][]repository.CompanyBooth
	activeJobs   int
	boothErr     error
	filter       repository.CompanyFilter
	page         repository.Page
	search       string
}

func (m *directoryOrgs) GetCompany(_ context.Context, id uuid.UUID) (org.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return org.Company{}, org.ErrCompanyNotFound
	}
	return c, nil
}

func (m *directoryOrgs) ListCompanies(_ context.Context, f repository.CompanyFilter) ([]org.Company, int, error) {
	m.filter = f
	out := make([]org.Company, 0, len(m.companies))
	for _, c := range m.companies {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *directoryOrgs) CountActiveJobs(context.Context, uuid.UUID) (int, error) {
	return m.activeJobs, nil
}

func (m *directoryOrgs) ListCompanyBooths(_ context.Context, id uuid.UUID) ([]repository.CompanyBooth, error) {
	return m.booths[id], m.boothErr
}

func (m *directoryOrgs) GetUniversity(_ context.Context, id uuid.UUID) (org.University, error) {
	u, ok := m.universities[id]
	if !ok {
		return org.University{}, org.ErrUniversityNotFound
	}
	return u, nil
}

func (m *directoryOrgs) ListUniversities(_ context.Context, search string, p repository.Page) ([]org.University, int, error) {
	m.search, m.page = search, p
	out := make([]org.University, 0, len(m.universities))
	for _, u := range m.universities {
		out = append(out, u)
	}
	return out, len(out), nil
}

type directorySkills struct {
	repository.SkillRepository

	limits []int
}

func (m *directorySkills) Search(_ context.Context, query string, limit int) ([]repository.SkillRef, error) {
	m.limits = append(m.limits, limit)
	return []repository.SkillRef{{ID: uuid.New(), Name: query}}, nil
}

func TestDirectory_GetCompany(t *testing.T) {
	id := uuid.New()
	orgs := &directoryOrgs{
		companies:  map[uuid.UUID]org.Company{id: {ID: id, Name: "Nimbus Cloud"}},
		activeJobs: 4,
		booths: map[uuid.UUID][]repository.CompanyBooth{
			id: {{BoothID: uuid.New(), CareerFairID: uuid.New(), FairTitle: "Spring Fair", StartDate: time.Now(), BoothNumber: "A1"}},
		},
	}
	d := NewDirectoryUsecase(orgs, &directorySkills{})
	ctx := context.Background()

	c, err := d.GetCompany(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Nimbus Cloud", c.Name)
	assert.Equal(t, 4, c.ActiveJobs)
	require.Len(t, c.Booths, 1)
	assert.Equal(t, "A1", c.Booths[0].BoothNumber)

	_, err = d.GetCompany(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirectory_GetCompanyWithoutBooths(t *testing.T) {
	id := uuid.New()
	orgs := &directoryOrgs{companies: map[uuid.UUID]org.Company{id: {ID: id}}}
	d := NewDirectoryUsecase(orgs, &directorySkills{})

	c, err := d.GetCompany(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, c.Booths)
	assert.Empty(t, c.Booths)

	orgs.boothErr = errors.New("connection reset")
	_, err = d.GetCompany(context.Background(), id)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestDirectory_ListingsNormalizePaging(t *testing.T) {
	uniID := uuid.New()
	orgs := &directoryOrgs{
		companies:    map[uuid.UUID]org.Company{uuid.New(): {Name: "Kedai Data"}},
		universities: map[uuid.UUID]org.University{uniID: {ID: uniID, Name: "Universiti Teknologi"}},
	}
	d := NewDirectoryUsecase(orgs, &directorySkills{})
	ctx := context.Background()

	items, total, err := d.ListUniversities(ctx, "tek", PageParams{Page: 3, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "tek", orgs.search)
	assert.Equal(t, repository.Page{Limit: 100, Offset: 200}, orgs.page)

	_, _, err = d.ListCompanies(ctx, CompanyQuery{Search: "data", Industry: "Software", Size: "startup"})
	require.NoError(t, err)
	assert.Equal(t, repository.CompanyFilter{
		Search:   "data",
		Industry: "Software",
		Size:     "startup",
		Page:     repository.Page{Limit: 20, Offset: 0},
	}, orgs.filter)

	u, err := d.GetUniversity(ctx, uniID)
	require.NoError(t, err)
	assert.Equal(t, "Universiti Teknologi", u.Name)
	_, err = d.GetUniversity(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirectory_SearchSkillsClampsLimit(t *testing.T) {
	skills := &directorySkills{}
	d := NewDirectoryUsecase(&directoryOrgs{}, skills)
	ctx := context.Background()

	for _, limit := range []int{0, -5, 7, 1000} {
		out, err := d.SearchSkills(ctx, "go", limit)
		require.NoError(t, err)
		assert.Len(t, out, 1)
	}
	assert.Equal(t, []int{20, 20, 7, 100}, skills.limits)
}
