package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"careerhub/internal/database"
	"careerhub/internal/domain/job"
)

type CandidateFilter struct {
	CompanyID uuid.UUID
	JobID     *uuid.UUID
	Search    string
	Status    *job.ApplicationStatus
	Page
}

type ApplicationRepository interface {
	// Create inserts the application and its PENDING interview together.
	Create(ctx context.Context, a job.Application) (job.Application, error)
	GetByID(ctx context.Context, id uuid.UUID) (job.Application, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID, status *job.ApplicationStatus) ([]job.Application, error)
	ListCandidates(ctx context.Context, f CandidateFilter) ([]job.Application, int, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]job.Application, error)
	ListByApplicantForCompany(ctx context.Context, applicantID, companyID uuid.UUID) ([]job.Application, error)
	// UpdateStatus moves the application only if it is still in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to job.ApplicationStatus) (job.Application, error)
	HasApplied(ctx context.Context, applicantID, jobID uuid.UUID) (bool, error)
	AppliedJobIDs(ctx context.Context, applicantID uuid.UUID, jobIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	ResumeAttachedToCompany(ctx context.Context, resumeID, companyID uuid.UUID) (bool, error)
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

const applicationSelect = `SELECT a.id, a.job_id, j.title, j.company_id, c.name, a.applicant_id, u.full_name, u.email,
	a.resume_id, a.status, COALESCE(a.cover_letter, ''), a.created_at, a.updated_at
	FROM applications a
	JOIN jobs j ON j.id = a.job_id
	JOIN companies c ON c.id = j.company_id
	JOIN users u ON u.id = a.applicant_id`

func scanApplication(row database.Row) (job.Application, error) {
	var a job.Application
	var status string
	if err := row.Scan(&a.ID, &a.JobID, &a.JobTitle, &a.CompanyID, &a.CompanyName, &a.ApplicantID, &a.ApplicantName, &a.ApplicantEmail,
		&a.ResumeID, &status, &a.CoverLetter, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return job.Application{}, job.ErrApplicationNotFound
		}
		return job.Application{}, err
	}
	a.Status = job.ApplicationStatus(status)
	return a, nil
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, a job.Application) (job.Application, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = job.StatusApplied
	}
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO applications (id, job_id, applicant_id, resume_id, status, cover_letter)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.JobID, a.ApplicantID, a.ResumeID, string(a.Status), nullableText(a.CoverLetter),
		); err != nil {
			return mapWriteErr(err)
		}
		_, err := tx.Exec(ctx, `INSERT INTO interviews (application_id) VALUES ($1)`, a.ID)
		return err
	})
	if err != nil {
		return job.Application{}, err
	}
	return r.GetByID(ctx, a.ID)
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Application, error) {
	return scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
}

func (r *PostgresApplicationRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID, status *job.ApplicationStatus) ([]job.Application, error) {
	var w where
	w.add(`a.applicant_id = ?`, applicantID)
	if status != nil {
		w.add(`a.status = ?`, string(*status))
	}
	return r.list(ctx, applicationSelect+w.sql()+` ORDER BY a.created_at DESC`, w.args...)
}

func (r *PostgresApplicationRepository) ListCandidates(ctx context.Context, f CandidateFilter) ([]job.Application, int, error) {
	p := f.Page.normalized(100)

	var w where
	w.add(`j.company_id = ?`, f.CompanyID)
	if f.JobID != nil {
		w.add(`a.job_id = ?`, *f.JobID)
	}
	if f.Status != nil {
		w.add(`a.status = ?`, string(*f.Status))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		ph := w.arg(likePattern(s))
		w.clauses = append(w.clauses, `(u.full_name ILIKE `+ph+` OR u.email ILIKE `+ph+` OR j.title ILIKE `+ph+`)`)
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 JOIN users u ON u.id = a.applicant_id`+w.sql(),
		w.args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	lim, off := w.arg(p.Limit), w.arg(p.Offset)
	items, err := r.list(ctx, applicationSelect+w.sql()+` ORDER BY a.created_at DESC LIMIT `+lim+` OFFSET `+off, w.args...)
	return items, total, err
}

func (r *PostgresApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]job.Application, error) {
	return r.list(ctx, applicationSelect+` WHERE a.job_id = $1 ORDER BY a.created_at DESC`, jobID)
}

func (r *PostgresApplicationRepository) ListByApplicantForCompany(ctx context.Context, applicantID, companyID uuid.UUID) ([]job.Application, error) {
	return r.list(ctx, applicationSelect+` WHERE a.applicant_id = $1 AND j.company_id = $2 ORDER BY a.created_at DESC`, applicantID, companyID)
}

func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to job.ApplicationStatus) (job.Application, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE applications SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return job.Application{}, err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return job.Application{}, err
		}
		return job.Application{}, ErrStale
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresApplicationRepository) HasApplied(ctx context.Context, applicantID, jobID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE applicant_id = $1 AND job_id = $2)`,
		applicantID, jobID,
	).Scan(&ok)
	return ok, err
}

func (r *PostgresApplicationRepository) AppliedJobIDs(ctx context.Context, applicantID uuid.UUID, jobIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT job_id FROM applications WHERE applicant_id = $1 AND job_id = ANY($2::uuid[])`,
		applicantID, jobIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *PostgresApplicationRepository) ResumeAttachedToCompany(ctx context.Context, resumeID, companyID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM applications a JOIN jobs j ON j.id = a.job_id
			WHERE a.resume_id = $1 AND j.company_id = $2
		)`,
		resumeID, companyID,
	).Scan(&ok)
	return ok, err
}

func (r *PostgresApplicationRepository) list(ctx context.Context, q string, args ...any) ([]job.Application, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
