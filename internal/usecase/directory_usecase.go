package usecase

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"careerhub/internal/domain/org"
	"careerhub/internal/repository"
)

// CompanyDetail is the public company page.
type CompanyDetail struct {
	org.Company
	ActiveJobs int                       `json:"active_job_count"`
	Booths     []repository.CompanyBooth `json:"booths"`
}

type CompanyQuery struct {
	Search   string
	Industry string
	Size     string
	PageParams
}

type DirectoryUsecase interface {
	ListUniversities(ctx context.Context, search string, p PageParams) ([]org.University, int, error)
	GetUniversity(ctx context.Context, id uuid.UUID) (org.University, error)
	ListCompanies(ctx context.Context, q CompanyQuery) ([]org.Company, int, error)
	GetCompany(ctx context.Context, id uuid.UUID) (CompanyDetail, error)
	SearchSkills(ctx context.Context, search string, limit int) ([]repository.SkillRef, error)
}

type Directory struct {
	orgs   repository.OrgRepository
	skills repository.SkillRepository
}

func NewDirectoryUsecase(orgs repository.OrgRepository, skills repository.SkillRepository) *Directory {
	return &Directory{orgs: orgs, skills: skills}
}

func (d *Directory) ListUniversities(ctx context.Context, search string, p PageParams) ([]org.University, int, error) {
	p = p.Normalize(20, 100)
	items, total, err := d.orgs.ListUniversities(ctx, search, p.repo())
	if err != nil {
		return nil, 0, internal(err)
	}
	return items, total, nil
}

func (d *Directory) GetUniversity(ctx context.Context, id uuid.UUID) (org.University, error) {
	u, err := d.orgs.GetUniversity(ctx, id)
	if err != nil {
		return org.University{}, notFound(err, "university", org.ErrUniversityNotFound)
	}
	return u, nil
}

func (d *Directory) ListCompanies(ctx context.Context, q CompanyQuery) ([]org.Company, int, error) {
	p := q.PageParams.Normalize(20, 100)
	items, total, err := d.orgs.ListCompanies(ctx, repository.CompanyFilter{
		Search:   q.Search,
		Industry: q.Industry,
		Size:     q.Size,
		Page:     p.repo(),
	})
	if err != nil {
		return nil, 0, internal(err)
	}
	return items, total, nil
}

func (d *Directory) GetCompany(ctx context.Context, id uuid.UUID) (CompanyDetail, error) {
	c, err := d.orgs.GetCompany(ctx, id)
	if err != nil {
		return CompanyDetail{}, notFound(err, "company", org.ErrCompanyNotFound)
	}
	out := CompanyDetail{Company: c}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := d.orgs.CountActiveJobs(gctx, id)
		out.ActiveJobs = n
		return err
	})
	g.Go(func() error {
		b, err := d.orgs.ListCompanyBooths(gctx, id)
		out.Booths = b
		return err
	})
	if err := g.Wait(); err != nil {
		return CompanyDetail{}, internal(err)
	}
	if out.Booths == nil {
		out.Booths = []repository.CompanyBooth{}
	}
	return out, nil
}

func (d *Directory) SearchSkills(ctx context.Context, search string, limit int) ([]repository.SkillRef, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	out, err := d.skills.Search(ctx, search, limit)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}
