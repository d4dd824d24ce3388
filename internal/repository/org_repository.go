package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"careerhub/internal/database"
	"careerhub/internal/domain/org"
)

type CompanyFilter struct {
	Search   string
	Industry string
	Size     string
	Page
}

// CompanyBooth is a booth the company holds at an active fair.
type CompanyBooth struct {
	BoothID      uuid.UUID `json:"booth_id"`
	CareerFairID uuid.UUID `json:"career_fair_id"`
	FairTitle    string    `json:"career_fair_title"`
	StartDate    time.Time `json:"start_date"`
	BoothNumber  string    `json:"booth_number"`
}

// Member is an employer or staff member of an organisation.
type Member struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	RoleTitle string    `json:"role_title"`
	IsAdmin   bool      `json:"is_admin"`
	JoinedAt  time.Time `json:"joined_at"`
}

type OrgRepository interface {
	GetCompany(ctx context.Context, id uuid.UUID) (org.Company, error)
	FindCompanyByName(ctx context.Context, name string) (org.Company, error)
	ListCompanies(ctx context.Context, f CompanyFilter) ([]org.Company, int, error)
	UpdateCompany(ctx context.Context, c org.Company) (org.Company, error)
	CountActiveJobs(ctx context.Context, companyID uuid.UUID) (int, error)
	ListCompanyBooths(ctx context.Context, companyID uuid.UUID) ([]CompanyBooth, error)
	ListCompanyTeam(ctx context.Context, companyID uuid.UUID) ([]Member, error)
	ListCompanyEmployerIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)

	GetUniversity(ctx context.Context, id uuid.UUID) (org.University, error)
	ListUniversities(ctx context.Context, search string, p Page) ([]org.University, int, error)
	CountUniversityStaff(ctx context.Context, id uuid.UUID) (int, error)
	ListUniversityStaff(ctx context.Context, id uuid.UUID) ([]Member, error)

	ListJoinRequests(ctx context.Context, kind org.Kind, orgID uuid.UUID, status org.RequestStatus) ([]org.JoinRequest, error)
	GetJoinRequest(ctx context.Context, id uuid.UUID) (org.JoinRequest, error)
	// DecideJoinRequest closes a pending request and, on approval, links the
	// requester's profile to the organisation.
	DecideJoinRequest(ctx context.Context, id uuid.UUID, status org.RequestStatus, decidedBy uuid.UUID) (org.JoinRequest, error)
}

type PostgresOrgRepository struct {
	db database.DB
}

func NewPostgresOrgRepository(db database.DB) *PostgresOrgRepository {
	return &PostgresOrgRepository{db: db}
}

const companyColumns = `c.id, c.name, COALESCE(c.description, ''), COALESCE(c.industry, ''), COALESCE(c.website, ''),
	COALESCE(c.logo_url, ''), COALESCE(c.location, ''), c.size, c.founded_year, c.social_links, c.gallery_urls,
	c.created_at, c.updated_at`

func scanCompany(row database.Row) (org.Company, error) {
	var c org.Company
	var size *string
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Industry, &c.Website, &c.LogoURL, &c.Location,
		&size, &c.FoundedYear, &c.SocialLinks, &c.GalleryURLs, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return org.Company{}, org.ErrCompanyNotFound
		}
		return org.Company{}, err
	}
	if size != nil {
		s := org.CompanySize(*size)
		c.Size = &s
	}
	if c.SocialLinks == nil {
		c.SocialLinks = map[string]string{}
	}
	if c.GalleryURLs == nil {
		c.GalleryURLs = []string{}
	}
	return c, nil
}

func (r *PostgresOrgRepository) GetCompany(ctx context.Context, id uuid.UUID) (org.Company, error) {
	return scanCompany(r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies c WHERE c.id = $1`, id))
}

func (r *PostgresOrgRepository) FindCompanyByName(ctx context.Context, name string) (org.Company, error) {
	return scanCompany(r.db.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies c WHERE lower(c.name) = lower($1)`,
		strings.TrimSpace(name),
	))
}

func (r *PostgresOrgRepository) ListCompanies(ctx context.Context, f CompanyFilter) ([]org.Company, int, error) {
	p := f.Page.normalized(100)
	var w where
	if s := strings.TrimSpace(f.Search); s != "" {
		w.add(`(c.name ILIKE ? OR c.description ILIKE ?)`, likePattern(s), likePattern(s))
	}
	if s := strings.TrimSpace(f.Industry); s != "" {
		w.add(`c.industry ILIKE ?`, s)
	}
	if s := strings.TrimSpace(f.Size); s != "" {
		w.add(`c.size = ?`, strings.ToUpper(s))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM companies c`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	lim, off := w.arg(p.Limit), w.arg(p.Offset)
	rows, err := r.db.Query(ctx,
		`SELECT `+companyColumns+` FROM companies c`+w.sql()+` ORDER BY c.name ASC LIMIT `+lim+` OFFSET `+off,
		w.args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]org.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *PostgresOrgRepository) UpdateCompany(ctx context.Context, c org.Company) (org.Company, error) {
	var size any
	if c.Size != nil {
		size = string(*c.Size)
	}
	if c.SocialLinks == nil {
		c.SocialLinks = map[string]string{}
	}
	if c.GalleryURLs == nil {
		c.GalleryURLs = []string{}
	}
	out, err := scanCompany(r.db.QueryRow(ctx,
		`UPDATE companies c SET
			name = $2, description = $3, industry = $4, website = $5, logo_url = $6, location = $7,
			size = $8, founded_year = $9, social_links = $10, gallery_urls = $11, updated_at = now()
		 WHERE c.id = $1
		 RETURNING `+companyColumns,
		c.ID, c.Name, nullableText(c.Description), nullableText(c.Industry), nullableText(c.Website),
		nullableText(c.LogoURL), nullableText(c.Location), size, c.FoundedYear, c.SocialLinks, c.GalleryURLs,
	))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return org.Company{}, ErrCompanyNameTaken
		}
		return org.Company{}, err
	}
	return out, nil
}

func (r *PostgresOrgRepository) CountActiveJobs(ctx context.Context, companyID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE company_id = $1 AND is_active`, companyID).Scan(&n)
	return n, err
}

func (r *PostgresOrgRepository) ListCompanyBooths(ctx context.Context, companyID uuid.UUID) ([]CompanyBooth, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, f.id, f.title, f.start_date, COALESCE(b.booth_number, '')
		 FROM booths b
		 JOIN career_fairs f ON f.id = b.career_fair_id
		 WHERE b.company_id = $1 AND f.is_active
		 ORDER BY f.start_date ASC`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CompanyBooth, 0)
	for rows.Next() {
		var b CompanyBooth
		if err := rows.Scan(&b.BoothID, &b.CareerFairID, &b.FairTitle, &b.StartDate, &b.BoothNumber); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresOrgRepository) ListCompanyTeam(ctx context.Context, companyID uuid.UUID) ([]Member, error) {
	return r.members(ctx,
		`SELECT u.id, u.email, u.full_name, COALESCE(p.role_title, ''), p.is_company_admin, p.updated_at
		 FROM employer_profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.company_id = $1
		 ORDER BY p.is_company_admin DESC, u.full_name ASC`,
		companyID,
	)
}

func (r *PostgresOrgRepository) ListCompanyEmployerIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM employer_profiles WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PostgresOrgRepository) GetUniversity(ctx context.Context, id uuid.UUID) (org.University, error) {
	var u org.University
	err := r.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(location, ''), COALESCE(website, ''), COALESCE(logo_url, ''), COALESCE(description, ''), created_at
		 FROM universities WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Location, &u.Website, &u.LogoURL, &u.Description, &u.CreatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return org.University{}, org.ErrUniversityNotFound
		}
		return org.University{}, err
	}
	return u, nil
}

func (r *PostgresOrgRepository) ListUniversities(ctx context.Context, search string, p Page) ([]org.University, int, error) {
	p = p.normalized(100)
	var w where
	if s := strings.TrimSpace(search); s != "" {
		w.add(`(name ILIKE ? OR location ILIKE ?)`, likePattern(s), likePattern(s))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM universities`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	lim, off := w.arg(p.Limit), w.arg(p.Offset)
	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(location, ''), COALESCE(website, ''), COALESCE(logo_url, ''), COALESCE(description, ''), created_at
		 FROM universities`+w.sql()+` ORDER BY name ASC LIMIT `+lim+` OFFSET `+off,
		w.args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]org.University, 0)
	for rows.Next() {
		var u org.University
		if err := rows.Scan(&u.ID, &u.Name, &u.Location, &u.Website, &u.LogoURL, &u.Description, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *PostgresOrgRepository) CountUniversityStaff(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM university_staff_profiles WHERE university_id = $1`, id).Scan(&n)
	return n, err
}

func (r *PostgresOrgRepository) ListUniversityStaff(ctx context.Context, id uuid.UUID) ([]Member, error) {
	return r.members(ctx,
		`SELECT u.id, u.email, u.full_name, COALESCE(p.role_title, ''), p.is_university_admin, p.updated_at
		 FROM university_staff_profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.university_id = $1
		 ORDER BY p.is_university_admin DESC, u.full_name ASC`,
		id,
	)
}

func (r *PostgresOrgRepository) members(ctx context.Context, q string, args ...any) ([]Member, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Member, 0)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.FullName, &m.RoleTitle, &m.IsAdmin, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const joinRequestColumns = `jr.id, jr.user_id, u.email, u.full_name, jr.org_kind, jr.org_id, jr.status, jr.message,
	jr.decided_by, jr.created_at, jr.updated_at`

func scanJoinRequest(row database.Row) (org.JoinRequest, error) {
	var jr org.JoinRequest
	var kind, status string
	err := row.Scan(&jr.ID, &jr.UserID, &jr.UserEmail, &jr.UserFullName, &kind, &jr.OrgID, &status, &jr.Message,
		&jr.DecidedBy, &jr.CreatedAt, &jr.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return org.JoinRequest{}, org.ErrJoinRequestNotFound
		}
		return org.JoinRequest{}, err
	}
	jr.Kind = org.Kind(kind)
	jr.Status = org.RequestStatus(status)
	return jr, nil
}

func (r *PostgresOrgRepository) ListJoinRequests(ctx context.Context, kind org.Kind, orgID uuid.UUID, status org.RequestStatus) ([]org.JoinRequest, error) {
	var w where
	w.add(`jr.org_kind = ?`, string(kind))
	w.add(`jr.org_id = ?`, orgID)
	if status != "" {
		w.add(`jr.status = ?`, string(status))
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+joinRequestColumns+` FROM join_requests jr JOIN users u ON u.id = jr.user_id`+w.sql()+` ORDER BY jr.created_at DESC`,
		w.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]org.JoinRequest, 0)
	for rows.Next() {
		jr, err := scanJoinRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, jr)
	}
	return out, rows.Err()
}

func (r *PostgresOrgRepository) GetJoinRequest(ctx context.Context, id uuid.UUID) (org.JoinRequest, error) {
	return scanJoinRequest(r.db.QueryRow(ctx,
		`SELECT `+joinRequestColumns+` FROM join_requests jr JOIN users u ON u.id = jr.user_id WHERE jr.id = $1`,
		id,
	))
}

func (r *PostgresOrgRepository) DecideJoinRequest(ctx context.Context, id uuid.UUID, status org.RequestStatus, decidedBy uuid.UUID) (org.JoinRequest, error) {
	var out org.JoinRequest
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		jr, err := scanJoinRequest(tx.QueryRow(ctx,
			`SELECT `+joinRequestColumns+` FROM join_requests jr JOIN users u ON u.id = jr.user_id
			 WHERE jr.id = $1 FOR UPDATE OF jr`,
			id,
		))
		if err != nil {
			return err
		}
		if !jr.IsPending() {
			return ErrStale
		}

		if _, err := tx.Exec(ctx,
			`UPDATE join_requests SET status = $2, decided_by = $3, updated_at = now() WHERE id = $1`,
			id, string(status), decidedBy,
		); err != nil {
			return err
		}

		if status == org.RequestApproved {
			var q string
			switch jr.Kind {
			case org.KindCompany:
				q = `UPDATE employer_profiles SET company_id = $2, updated_at = now() WHERE user_id = $1`
			case org.KindUniversity:
				q = `UPDATE university_staff_profiles SET university_id = $2, updated_at = now() WHERE user_id = $1`
			}
			if _, err := tx.Exec(ctx, q, jr.UserID, jr.OrgID); err != nil {
				return err
			}
		}

		jr.Status = status
		jr.DecidedBy = &decidedBy
		out = jr
		return nil
	})
	return out, err
}
