package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"careerhub/internal/database"
	"careerhub/internal/domain/careerfair"
)

type FairFilter struct {
	Search       string
	Active       *bool
	UniversityID *uuid.UUID
	Page
}

// DiscoverFair is an upcoming fair as seen by one company.
type DiscoverFair struct {
	careerfair.Fair
	IsRegistered bool `json:"is_registered"`
}

// BoothChange mutates b in place. It runs under a lock on the fair row with
// every booth of the fair loaded.
type BoothChange func(b *careerfair.Booth, fair careerfair.Fair, booths []careerfair.Booth) error

type CareerFairRepository interface {
	List(ctx context.Context, f FairFilter) ([]careerfair.Fair, int, error)
	Get(ctx context.Context, id uuid.UUID) (careerfair.Fair, error)
	Create(ctx context.Context, f careerfair.Fair) (careerfair.Fair, error)
	// Update locks the fair, lets check inspect its booths and writes f.
	Update(ctx context.Context, f careerfair.Fair, check func(booths []careerfair.Booth) error) (careerfair.Fair, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListDiscover(ctx context.Context, companyID uuid.UUID, now time.Time) ([]DiscoverFair, error)
	ListRegistered(ctx context.Context, companyID uuid.UUID) ([]careerfair.Fair, error)

	ListBooths(ctx context.Context, fairID uuid.UUID) ([]careerfair.Booth, error)
	GetBooth(ctx context.Context, id uuid.UUID) (careerfair.Booth, error)
	BoothForCompany(ctx context.Context, fairID, companyID uuid.UUID) (careerfair.Booth, error)
	CreateBooth(ctx context.Context, fairID, companyID uuid.UUID, label string) (careerfair.Booth, error)
	DeleteBoothForCompany(ctx context.Context, fairID, companyID uuid.UUID) error
	// UpdateBooth applies change and, when jobIDs is non-nil, replaces the
	// booth's jobs.
	UpdateBooth(ctx context.Context, id uuid.UUID, change BoothChange, jobIDs []uuid.UUID) (careerfair.Booth, error)

	AddInterest(ctx context.Context, boothID, studentID uuid.UUID) (bool, error)
	RemoveInterest(ctx context.Context, boothID, studentID uuid.UUID) error
	ListInterestsByStudent(ctx context.Context, studentID uuid.UUID) ([]careerfair.Interest, error)
	ListInterestsByBooth(ctx context.Context, boothID uuid.UUID) ([]careerfair.Interest, error)
}

type PostgresCareerFairRepository struct {
	db database.DB
}

func NewPostgresCareerFairRepository(db database.DB) *PostgresCareerFairRepository {
	return &PostgresCareerFairRepository{db: db}
}

const fairColumns = `f.id, f.host_university_id, u.name, f.title, f.description, f.start_date, f.end_date, f.location,
	COALESCE(f.website, ''), f.is_active, COALESCE(f.banner_url, ''), COALESCE(f.floor_plan_url, ''),
	f.grid_width, f.grid_height, f.created_by,
	(SELECT COUNT(*) FROM booths b WHERE b.career_fair_id = f.id),
	f.created_at, f.updated_at`

const fairFrom = ` FROM career_fairs f JOIN universities u ON u.id = f.host_university_id`

func scanFair(row database.Row, extra ...any) (careerfair.Fair, error) {
	var f careerfair.Fair
	dest := []any{&f.ID, &f.HostUniversityID, &f.HostUniversity, &f.Title, &f.Description, &f.StartDate, &f.EndDate, &f.Location,
		&f.Website, &f.IsActive, &f.BannerURL, &f.FloorPlanURL, &f.GridWidth, &f.GridHeight, &f.CreatedBy, &f.BoothCount,
		&f.CreatedAt, &f.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if database.IsNoRows(err) {
			return careerfair.Fair{}, careerfair.ErrNotFound
		}
		return careerfair.Fair{}, err
	}
	return f, nil
}

const boothSelect = `SELECT b.id, b.career_fair_id, b.company_id, c.name, COALESCE(c.logo_url, ''), b.label, COALESCE(b.booth_number, ''),
	b.x, b.y, b.width, b.height,
	COALESCE((SELECT array_agg(bj.job_id ORDER BY bj.job_id) FROM booth_jobs bj WHERE bj.booth_id = b.id), '{}'::uuid[]),
	(SELECT COUNT(*) FROM booth_interests bi WHERE bi.booth_id = b.id),
	b.created_at, b.updated_at
	FROM booths b JOIN companies c ON c.id = b.company_id`

func scanBooth(row database.Row) (careerfair.Booth, error) {
	var b careerfair.Booth
	if err := row.Scan(&b.ID, &b.CareerFairID, &b.CompanyID, &b.CompanyName, &b.CompanyLogo, &b.Label, &b.BoothNumber,
		&b.X, &b.Y, &b.Width, &b.Height, &b.JobIDs, &b.InterestCount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return careerfair.Booth{}, careerfair.ErrBoothNotFound
		}
		return careerfair.Booth{}, err
	}
	if b.JobIDs == nil {
		b.JobIDs = []uuid.UUID{}
	}
	return b, nil
}

func (r *PostgresCareerFairRepository) List(ctx context.Context, f FairFilter) ([]careerfair.Fair, int, error) {
	p := f.Page.normalized(100)

	var w where
	if s := strings.TrimSpace(f.Search); s != "" {
		ph := w.arg(likePattern(s))
		w.clauses = append(w.clauses, `(f.title ILIKE `+ph+` OR u.name ILIKE `+ph+` OR f.location ILIKE `+ph+`)`)
	}
	if f.Active != nil {
		w.add(`f.is_active = ?`, *f.Active)
	}
	if f.UniversityID != nil {
		w.add(`f.host_university_id = ?`, *f.UniversityID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+fairFrom+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	lim, off := w.arg(p.Limit), w.arg(p.Offset)
	fairs, err := r.listFairs(ctx, `SELECT `+fairColumns+fairFrom+w.sql()+` ORDER BY f.start_date DESC LIMIT `+lim+` OFFSET `+off, w.args...)
	return fairs, total, err
}

func (r *PostgresCareerFairRepository) Get(ctx context.Context, id uuid.UUID) (careerfair.Fair, error) {
	return scanFair(r.db.QueryRow(ctx, `SELECT `+fairColumns+fairFrom+` WHERE f.id = $1`, id))
}

func (r *PostgresCareerFairRepository) Create(ctx context.Context, f careerfair.Fair) (careerfair.Fair, error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO career_fairs (id, host_university_id, title, description, start_date, end_date, location, website,
			is_active, banner_url, floor_plan_url, grid_width, grid_height, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		f.ID, f.HostUniversityID, f.Title, f.Description, f.StartDate, f.EndDate, f.Location, nullableText(f.Website),
		f.IsActive, nullableText(f.BannerURL), nullableText(f.FloorPlanURL), f.GridWidth, f.GridHeight, f.CreatedBy,
	)
	if err != nil {
		return careerfair.Fair{}, err
	}
	return r.Get(ctx, f.ID)
}

func (r *PostgresCareerFairRepository) Update(ctx context.Context, f careerfair.Fair, check func(booths []careerfair.Booth) error) (careerfair.Fair, error) {
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if err := lockFair(ctx, tx, f.ID); err != nil {
			return err
		}
		if check != nil {
			booths, err := listBooths(ctx, tx, boothSelect+` WHERE b.career_fair_id = $1`, f.ID)
			if err != nil {
				return err
			}
			if err := check(booths); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx,
			`UPDATE career_fairs SET
				title = $2, description = $3, start_date = $4, end_date = $5, location = $6, website = $7,
				is_active = $8, banner_url = $9, floor_plan_url = $10, grid_width = $11, grid_height = $12, updated_at = now()
			 WHERE id = $1`,
			f.ID, f.Title, f.Description, f.StartDate, f.EndDate, f.Location, nullableText(f.Website),
			f.IsActive, nullableText(f.BannerURL), nullableText(f.FloorPlanURL), f.GridWidth, f.GridHeight,
		)
		return err
	})
	if err != nil {
		return careerfair.Fair{}, err
	}
	return r.Get(ctx, f.ID)
}

func (r *PostgresCareerFairRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM career_fairs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return careerfair.ErrNotFound
	}
	return nil
}

func (r *PostgresCareerFairRepository) ListDiscover(ctx context.Context, companyID uuid.UUID, now time.Time) ([]DiscoverFair, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fairColumns+`,
			EXISTS(SELECT 1 FROM booths b WHERE b.career_fair_id = f.id AND b.company_id = $1)`+fairFrom+`
		 WHERE f.is_active AND f.end_date >= $2
		 ORDER BY f.start_date ASC`,
		companyID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DiscoverFair, 0)
	for rows.Next() {
		var d DiscoverFair
		f, err := scanFair(rows, &d.IsRegistered)
		if err != nil {
			return nil, err
		}
		d.Fair = f
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresCareerFairRepository) ListRegistered(ctx context.Context, companyID uuid.UUID) ([]careerfair.Fair, error) {
	return r.listFairs(ctx,
		`SELECT `+fairColumns+fairFrom+`
		 JOIN booths bc ON bc.career_fair_id = f.id AND bc.company_id = $1
		 ORDER BY f.start_date DESC`,
		companyID,
	)
}

func (r *PostgresCareerFairRepository) ListBooths(ctx context.Context, fairID uuid.UUID) ([]careerfair.Booth, error) {
	return listBooths(ctx, r.db, boothSelect+` WHERE b.career_fair_id = $1 ORDER BY b.booth_number NULLS LAST, c.name`, fairID)
}

func (r *PostgresCareerFairRepository) GetBooth(ctx context.Context, id uuid.UUID) (careerfair.Booth, error) {
	return scanBooth(r.db.QueryRow(ctx, boothSelect+` WHERE b.id = $1`, id))
}

func (r *PostgresCareerFairRepository) BoothForCompany(ctx context.Context, fairID, companyID uuid.UUID) (careerfair.Booth, error) {
	return scanBooth(r.db.QueryRow(ctx, boothSelect+` WHERE b.career_fair_id = $1 AND b.company_id = $2`, fairID, companyID))
}

func (r *PostgresCareerFairRepository) CreateBooth(ctx context.Context, fairID, companyID uuid.UUID, label string) (careerfair.Booth, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`INSERT INTO booths (career_fair_id, company_id, label) VALUES ($1, $2, $3) RETURNING id`,
		fairID, companyID, label,
	).Scan(&id)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return careerfair.Booth{}, careerfair.ErrAlreadyRegistered
		case database.IsForeignKeyViolation(err):
			return careerfair.Booth{}, careerfair.ErrNotFound
		}
		return careerfair.Booth{}, err
	}
	return r.GetBooth(ctx, id)
}

func (r *PostgresCareerFairRepository) DeleteBoothForCompany(ctx context.Context, fairID, companyID uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM booths WHERE career_fair_id = $1 AND company_id = $2`, fairID, companyID)
	if err != nil {
		return err
	}
	if n == 0 {
		return careerfair.ErrNotRegistered
	}
	return nil
}

func (r *PostgresCareerFairRepository) UpdateBooth(ctx context.Context, id uuid.UUID, change BoothChange, jobIDs []uuid.UUID) (careerfair.Booth, error) {
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var fairID uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT career_fair_id FROM booths WHERE id = $1`, id).Scan(&fairID); err != nil {
			if database.IsNoRows(err) {
				return careerfair.ErrBoothNotFound
			}
			return err
		}
		if err := lockFair(ctx, tx, fairID); err != nil {
			return err
		}
		fair, err := scanFair(tx.QueryRow(ctx, `SELECT `+fairColumns+fairFrom+` WHERE f.id = $1`, fairID))
		if err != nil {
			return err
		}
		booths, err := listBooths(ctx, tx, boothSelect+` WHERE b.career_fair_id = $1`, fairID)
		if err != nil {
			return err
		}

		var b careerfair.Booth
		found := false
		for _, o := range booths {
			if o.ID == id {
				b, found = o, true
				break
			}
		}
		if !found {
			return careerfair.ErrBoothNotFound
		}
		if err := change(&b, fair, booths); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE booths SET label = $2, booth_number = $3, x = $4, y = $5, width = $6, height = $7, updated_at = now()
			 WHERE id = $1`,
			id, b.Label, nullableText(b.BoothNumber), b.X, b.Y, b.Width, b.Height,
		); err != nil {
			if database.IsUniqueViolation(err) {
				return careerfair.ErrBoothNumberTaken
			}
			return err
		}

		if jobIDs == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM booth_jobs WHERE booth_id = $1`, id); err != nil {
			return err
		}
		if len(jobIDs) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO booth_jobs (booth_id, job_id) SELECT $1, unnest($2::uuid[]) ON CONFLICT DO NOTHING`,
			id, jobIDs,
		)
		return err
	})
	if err != nil {
		return careerfair.Booth{}, err
	}
	return r.GetBooth(ctx, id)
}

func (r *PostgresCareerFairRepository) AddInterest(ctx context.Context, boothID, studentID uuid.UUID) (bool, error) {
	n, err := r.db.Exec(ctx,
		`INSERT INTO booth_interests (booth_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		boothID, studentID,
	)
	if database.IsForeignKeyViolation(err) {
		return false, careerfair.ErrBoothNotFound
	}
	return n > 0, err
}

func (r *PostgresCareerFairRepository) RemoveInterest(ctx context.Context, boothID, studentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM booth_interests WHERE booth_id = $1 AND student_id = $2`, boothID, studentID)
	return err
}

const interestSelect = `SELECT bi.booth_id, bi.student_id, u.full_name, u.email, c.name, f.title, bi.created_at
	FROM booth_interests bi
	JOIN users u ON u.id = bi.student_id
	JOIN booths b ON b.id = bi.booth_id
	JOIN companies c ON c.id = b.company_id
	JOIN career_fairs f ON f.id = b.career_fair_id`

func (r *PostgresCareerFairRepository) ListInterestsByStudent(ctx context.Context, studentID uuid.UUID) ([]careerfair.Interest, error) {
	return r.listInterests(ctx, interestSelect+` WHERE bi.student_id = $1 ORDER BY bi.created_at DESC`, studentID)
}

func (r *PostgresCareerFairRepository) ListInterestsByBooth(ctx context.Context, boothID uuid.UUID) ([]careerfair.Interest, error) {
	return r.listInterests(ctx, interestSelect+` WHERE bi.booth_id = $1 ORDER BY bi.created_at DESC`, boothID)
}

func (r *PostgresCareerFairRepository) listInterests(ctx context.Context, q string, args ...any) ([]careerfair.Interest, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]careerfair.Interest, 0)
	for rows.Next() {
		var in careerfair.Interest
		if err := rows.Scan(&in.BoothID, &in.StudentID, &in.StudentName, &in.StudentEmail, &in.CompanyName, &in.FairTitle, &in.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *PostgresCareerFairRepository) listFairs(ctx context.Context, q string, args ...any) ([]careerfair.Fair, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]careerfair.Fair, 0)
	for rows.Next() {
		f, err := scanFair(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func listBooths(ctx context.Context, q database.Querier, query string, args ...any) ([]careerfair.Booth, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]careerfair.Booth, 0)
	for rows.Next() {
		b, err := scanBooth(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func lockFair(ctx context.Context, tx database.Querier, id uuid.UUID) error {
	var locked uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM career_fairs WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if database.IsNoRows(err) {
		return careerfair.ErrNotFound
	}
	return err
}
