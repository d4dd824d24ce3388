package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"careerhub/internal/database"
	"careerhub/internal/domain/job"
)

type JobSort string

const (
	SortRecent     JobSort = "recent"
	SortSalaryDesc JobSort = "salary-desc"
	SortSalaryAsc  JobSort = "salary-asc"
)

type JobFilter struct {
	// Keywords are alternatives; a job matches when any of them hits its
	// title, description, company name or a skill name.
	Keywords     []string
	Types        []job.Type
	Industry     string
	CompanySize  string
	RemoteOption string
	Location     string
	CompanyID    *uuid.UUID
	SalaryMin    *int
	SalaryMax    *int
	Sort         JobSort
	Page
}

// SkillLink attaches a dictionary skill to a job.
type SkillLink struct {
	SkillID     uuid.UUID
	IsMandatory bool
}

type ScoredJob struct {
	Job        job.Job
	Similarity float64
}

// CompanyJob is a job row in the employer workspace.
type CompanyJob struct {
	job.Job
	ApplicantCount int `json:"applicant_count"`
}

type JobRepository interface {
	List(ctx context.Context, f JobFilter) ([]job.Job, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (job.Job, error)
	Create(ctx context.Context, j job.Job, skills []SkillLink) (job.Job, error)
	// Update writes j; skills replaces the job's skills unless nil.
	Update(ctx context.Context, j job.Job, skills []SkillLink) (job.Job, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	UpdateWeights(ctx context.Context, id uuid.UUID, w job.Weights) error
	ReplaceSkills(ctx context.Context, id uuid.UUID, skills []SkillLink) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]CompanyJob, error)

	SetEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error
	ListMissingEmbedding(ctx context.Context, limit int) ([]job.Job, error)
	ListMissingSkills(ctx context.Context, limit int) ([]job.Job, error)
	SimilarToResume(ctx context.Context, resumeID uuid.UUID, limit int) ([]ScoredJob, error)
	Similarities(ctx context.Context, resumeID uuid.UUID, jobIDs []uuid.UUID) (map[uuid.UUID]float64, error)
	Recent(ctx context.Context, limit int) ([]job.Job, error)

	Save(ctx context.Context, userID, jobID uuid.UUID) error
	Unsave(ctx context.Context, userID, jobID uuid.UUID) error
	IsSaved(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	ListSaved(ctx context.Context, userID uuid.UUID, p Page) ([]job.Job, int, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `j.id, j.company_id, c.name, COALESCE(c.logo_url, ''), COALESCE(c.industry, ''), j.posted_by,
	j.title, j.description, j.requirements, j.responsibilities, j.location, j.job_type, j.remote_option,
	j.salary_min, j.salary_max, j.currency, j.is_active, j.application_deadline, j.matching_weights,
	j.created_at, j.updated_at`

const jobFrom = ` FROM jobs j JOIN companies c ON c.id = j.company_id`

func scanJob(row database.Row, extra ...any) (job.Job, error) {
	var j job.Job
	var typ, remote string
	dest := []any{&j.ID, &j.CompanyID, &j.CompanyName, &j.CompanyLogoURL, &j.CompanyIndustry, &j.PostedBy,
		&j.Title, &j.Description, &j.Requirements, &j.Responsibilities, &j.Location, &typ, &remote,
		&j.SalaryMin, &j.SalaryMax, &j.Currency, &j.IsActive, &j.ApplicationDeadline, &j.MatchingWeights,
		&j.CreatedAt, &j.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if database.IsNoRows(err) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}
	j.Type = job.Type(typ)
	j.RemoteOption = job.RemoteOption(remote)
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	if j.Responsibilities == nil {
		j.Responsibilities = []string{}
	}
	return j, nil
}

func (r *PostgresJobRepository) List(ctx context.Context, f JobFilter) ([]job.Job, int, error) {
	p := f.Page.normalized(500)

	var w where
	w.add(`j.is_active`)
	if len(f.Keywords) > 0 {
		var ors []string
		for _, kw := range f.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			ph := w.arg(likePattern(kw))
			ors = append(ors, `j.title ILIKE `+ph+` OR j.description ILIKE `+ph+` OR c.name ILIKE `+ph+
				` OR EXISTS (SELECT 1 FROM job_skills js JOIN skills s ON s.id = js.skill_id WHERE js.job_id = j.id AND s.name ILIKE `+ph+`)`)
		}
		if len(ors) > 0 {
			w.clauses = append(w.clauses, "("+strings.Join(ors, " OR ")+")")
		}
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		w.add(`j.job_type = ANY(?::text[])`, types)
	}
	if s := strings.TrimSpace(f.Industry); s != "" {
		w.add(`c.industry ILIKE ?`, s)
	}
	if s := strings.TrimSpace(f.CompanySize); s != "" {
		w.add(`c.size = ?`, strings.ToUpper(s))
	}
	if s := strings.TrimSpace(f.RemoteOption); s != "" {
		w.add(`j.remote_option = ?`, s)
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		w.add(`j.location ILIKE ?`, likePattern(s))
	}
	if f.CompanyID != nil {
		w.add(`j.company_id = ?`, *f.CompanyID)
	}
	if f.SalaryMin != nil {
		w.add(`j.salary_max >= ?`, *f.SalaryMin)
	}
	if f.SalaryMax != nil {
		w.add(`j.salary_min <= ?`, *f.SalaryMax)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+jobFrom+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := `j.created_at DESC, j.id`
	switch f.Sort {
	case SortSalaryDesc:
		order = `j.salary_max DESC NULLS LAST, j.salary_min DESC NULLS LAST, j.created_at DESC`
	case SortSalaryAsc:
		order = `j.salary_min ASC NULLS LAST, j.salary_max ASC NULLS LAST, j.created_at DESC`
	}

	lim, off := w.arg(p.Limit), w.arg(p.Offset)
	jobs, err := r.query(ctx, `SELECT `+jobColumns+jobFrom+w.sql()+` ORDER BY `+order+` LIMIT `+lim+` OFFSET `+off, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+jobFrom+` WHERE j.id = $1`, id))
	if err != nil {
		return job.Job{}, err
	}
	skills, err := loadJobSkills(ctx, r.db, []uuid.UUID{id})
	if err != nil {
		return job.Job{}, err
	}
	j.Skills = skills[id]
	return j, nil
}

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job, skills []SkillLink) (job.Job, error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO jobs (id, company_id, posted_by, title, description, requirements, responsibilities, location,
				job_type, remote_option, salary_min, salary_max, currency, is_active, application_deadline, matching_weights)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			j.ID, j.CompanyID, j.PostedBy, j.Title, j.Description, nonNil(j.Requirements), nonNil(j.Responsibilities), j.Location,
			string(j.Type), string(j.RemoteOption), j.SalaryMin, j.SalaryMax, j.Currency, j.IsActive, deadlineDate(j.ApplicationDeadline), j.MatchingWeights,
		)
		if err != nil {
			return err
		}
		return replaceJobSkills(ctx, tx, j.ID, skills)
	})
	if err != nil {
		return job.Job{}, err
	}
	return r.GetByID(ctx, j.ID)
}

func (r *PostgresJobRepository) Update(ctx context.Context, j job.Job, skills []SkillLink) (job.Job, error) {
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx,
			`UPDATE jobs SET
				title = $2, description = $3, requirements = $4, responsibilities = $5, location = $6,
				job_type = $7, remote_option = $8, salary_min = $9, salary_max = $10, currency = $11,
				is_active = $12, application_deadline = $13, updated_at = now()
			 WHERE id = $1`,
			j.ID, j.Title, j.Description, nonNil(j.Requirements), nonNil(j.Responsibilities), j.Location,
			string(j.Type), string(j.RemoteOption), j.SalaryMin, j.SalaryMax, j.Currency, j.IsActive, deadlineDate(j.ApplicationDeadline),
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return job.ErrNotFound
		}
		if skills == nil {
			return nil
		}
		return replaceJobSkills(ctx, tx, j.ID, skills)
	})
	if err != nil {
		return job.Job{}, err
	}
	return r.GetByID(ctx, j.ID)
}

func (r *PostgresJobRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE jobs SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) UpdateWeights(ctx context.Context, id uuid.UUID, w job.Weights) error {
	n, err := r.db.Exec(ctx, `UPDATE jobs SET matching_weights = $2, updated_at = now() WHERE id = $1`, id, w)
	if err != nil {
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) ReplaceSkills(ctx context.Context, id uuid.UUID, skills []SkillLink) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		return replaceJobSkills(ctx, tx, id, skills)
	})
}

func (r *PostgresJobRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]CompanyJob, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+`, (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)`+jobFrom+`
		 WHERE j.company_id = $1
		 ORDER BY j.is_active DESC, j.created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CompanyJob, 0)
	for rows.Next() {
		var cj CompanyJob
		j, err := scanJob(rows, &cj.ApplicantCount)
		if err != nil {
			return nil, err
		}
		cj.Job = j
		out = append(out, cj)
	}
	return out, rows.Err()
}

func (r *PostgresJobRepository) SetEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error {
	_, err := r.db.Exec(ctx, `UPDATE jobs SET embedding = $2::vector WHERE id = $1`, id, vector(vec))
	return err
}

func (r *PostgresJobRepository) ListMissingEmbedding(ctx context.Context, limit int) ([]job.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.query(ctx, `SELECT `+jobColumns+jobFrom+` WHERE j.is_active AND j.embedding IS NULL ORDER BY j.created_at DESC LIMIT $1`, limit)
}

func (r *PostgresJobRepository) ListMissingSkills(ctx context.Context, limit int) ([]job.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.query(ctx,
		`SELECT `+jobColumns+jobFrom+`
		 WHERE j.is_active AND NOT EXISTS (SELECT 1 FROM job_skills js WHERE js.job_id = j.id)
		 ORDER BY j.created_at DESC LIMIT $1`,
		limit,
	)
}

func (r *PostgresJobRepository) SimilarToResume(ctx context.Context, resumeID uuid.UUID, limit int) ([]ScoredJob, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+`, 1 - (j.embedding <=> rs.embedding)`+jobFrom+`
		 JOIN resumes rs ON rs.id = $1
		 WHERE j.is_active AND j.embedding IS NOT NULL AND rs.embedding IS NOT NULL
		 ORDER BY j.embedding <=> rs.embedding
		 LIMIT $2`,
		resumeID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ScoredJob, 0)
	for rows.Next() {
		var s ScoredJob
		j, err := scanJob(rows, &s.Similarity)
		if err != nil {
			return nil, err
		}
		s.Job = j
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, r.attachSkills(ctx, func(yield func(*job.Job)) {
		for i := range out {
			yield(&out[i].Job)
		}
	})
}

func (r *PostgresJobRepository) Similarities(ctx context.Context, resumeID uuid.UUID, jobIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	out := make(map[uuid.UUID]float64, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT j.id, 1 - (j.embedding <=> rs.embedding)
		 FROM jobs j
		 JOIN resumes rs ON rs.id = $1
		 WHERE j.id = ANY($2::uuid[]) AND j.embedding IS NOT NULL AND rs.embedding IS NOT NULL`,
		resumeID, jobIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var sim float64
		if err := rows.Scan(&id, &sim); err != nil {
			return nil, err
		}
		out[id] = sim
	}
	return out, rows.Err()
}

func (r *PostgresJobRepository) Recent(ctx context.Context, limit int) ([]job.Job, error) {
	return r.query(ctx, `SELECT `+jobColumns+jobFrom+` WHERE j.is_active ORDER BY j.created_at DESC LIMIT $1`, limit)
}

func (r *PostgresJobRepository) Save(ctx context.Context, userID, jobID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `INSERT INTO saved_jobs (user_id, job_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, jobID)
	if database.IsForeignKeyViolation(err) {
		return job.ErrNotFound
	}
	return err
}

func (r *PostgresJobRepository) Unsave(ctx context.Context, userID, jobID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	return err
}

func (r *PostgresJobRepository) IsSaved(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM saved_jobs WHERE user_id = $1 AND job_id = $2)`, userID, jobID).Scan(&ok)
	return ok, err
}

func (r *PostgresJobRepository) ListSaved(ctx context.Context, userID uuid.UUID, p Page) ([]job.Job, int, error) {
	p = p.normalized(100)
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM saved_jobs WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	jobs, err := r.query(ctx,
		`SELECT `+jobColumns+jobFrom+`
		 JOIN saved_jobs sj ON sj.job_id = j.id
		 WHERE sj.user_id = $1
		 ORDER BY sj.created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, p.Limit, p.Offset,
	)
	return jobs, total, err
}

// query scans job rows and attaches their skills.
func (r *PostgresJobRepository) query(ctx context.Context, q string, args ...any) ([]job.Job, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, r.attachSkills(ctx, func(yield func(*job.Job)) {
		for i := range out {
			yield(&out[i])
		}
	})
}

func (r *PostgresJobRepository) attachSkills(ctx context.Context, each func(func(*job.Job))) error {
	var ids []uuid.UUID
	each(func(j *job.Job) { ids = append(ids, j.ID) })
	if len(ids) == 0 {
		return nil
	}
	skills, err := loadJobSkills(ctx, r.db, ids)
	if err != nil {
		return err
	}
	each(func(j *job.Job) {
		j.Skills = skills[j.ID]
		if j.Skills == nil {
			j.Skills = []job.Skill{}
		}
	})
	return nil
}

func loadJobSkills(ctx context.Context, q database.Querier, ids []uuid.UUID) (map[uuid.UUID][]job.Skill, error) {
	rows, err := q.Query(ctx,
		`SELECT js.job_id, s.id, s.name, js.is_mandatory
		 FROM job_skills js
		 JOIN skills s ON s.id = js.skill_id
		 WHERE js.job_id = ANY($1::uuid[])
		 ORDER BY js.is_mandatory DESC, s.name ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]job.Skill, len(ids))
	for rows.Next() {
		var jobID uuid.UUID
		var s job.Skill
		if err := rows.Scan(&jobID, &s.ID, &s.Name, &s.IsMandatory); err != nil {
			return nil, err
		}
		out[jobID] = append(out[jobID], s)
	}
	return out, rows.Err()
}

func replaceJobSkills(ctx context.Context, tx database.Querier, jobID uuid.UUID, skills []SkillLink) error {
	if _, err := tx.Exec(ctx, `DELETE FROM job_skills WHERE job_id = $1`, jobID); err != nil {
		return err
	}
	for _, s := range skills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO job_skills (job_id, skill_id, is_mandatory) VALUES ($1, $2, $3)
			 ON CONFLICT (job_id, skill_id) DO UPDATE SET is_mandatory = EXCLUDED.is_mandatory`,
			jobID, s.SkillID, s.IsMandatory,
		); err != nil {
			return err
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// deadlineDate truncates a deadline to its calendar day.
func deadlineDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
