package repository

import (
	"context"

	"github.com/google/uuid"

	"careerhub/internal/database"
	"careerhub/internal/domain/resume"
)

type ResumeRepository interface {
	// Create stores r as the student's primary resume, demoting the
	// previous one in the same transaction.
	Create(ctx context.Context, r resume.Resume) (resume.Resume, error)
	GetByID(ctx context.Context, id uuid.UUID) (resume.Resume, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]resume.Resume, error)
	GetPrimary(ctx context.Context, studentID uuid.UUID) (resume.Resume, error)
	SetPrimary(ctx context.Context, studentID, id uuid.UUID) (resume.Resume, error)
	// Delete removes the resume and promotes the oldest remaining one when
	// the deleted resume was primary. It returns the deleted row.
	Delete(ctx context.Context, studentID, id uuid.UUID) (resume.Resume, error)

	SetStatus(ctx context.Context, id uuid.UUID, status resume.ParseStatus, parseErr string) error
	SaveParsed(ctx context.Context, id uuid.UUID, text string) error
	SetEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error
	ListByStatus(ctx context.Context, status resume.ParseStatus, limit int) ([]resume.Resume, error)
}

type PostgresResumeRepository struct {
	db database.DB
}

func NewPostgresResumeRepository(db database.DB) *PostgresResumeRepository {
	return &PostgresResumeRepository{db: db}
}

const resumeSelect = `SELECT id, student_id, file_name, file_path, content_type, size_bytes, sha256, is_primary,
	COALESCE(parsed_text, ''), parse_status, COALESCE(parse_error, ''), embedding IS NOT NULL, created_at, updated_at
	FROM resumes`

func scanResume(row database.Row) (resume.Resume, error) {
	var r resume.Resume
	var status string
	if err := row.Scan(&r.ID, &r.StudentID, &r.FileName, &r.FilePath, &r.ContentType, &r.SizeBytes, &r.SHA256, &r.IsPrimary,
		&r.ParsedText, &status, &r.ParseError, &r.HasVector, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return resume.Resume{}, resume.ErrNotFound
		}
		return resume.Resume{}, err
	}
	r.Status = resume.ParseStatus(status)
	return r, nil
}

func (p *PostgresResumeRepository) Create(ctx context.Context, r resume.Resume) (resume.Resume, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = resume.StatusPending
	}
	err := database.WithTx(ctx, p.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE resumes SET is_primary = false, updated_at = now() WHERE student_id = $1 AND is_primary`, r.StudentID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO resumes (id, student_id, file_name, file_path, content_type, size_bytes, sha256, is_primary, parse_status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8)`,
			r.ID, r.StudentID, r.FileName, r.FilePath, r.ContentType, r.SizeBytes, r.SHA256, string(r.Status),
		)
		return err
	})
	if err != nil {
		return resume.Resume{}, err
	}
	return p.GetByID(ctx, r.ID)
}

func (p *PostgresResumeRepository) GetByID(ctx context.Context, id uuid.UUID) (resume.Resume, error) {
	return scanResume(p.db.QueryRow(ctx, resumeSelect+` WHERE id = $1`, id))
}

func (p *PostgresResumeRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]resume.Resume, error) {
	return p.list(ctx, resumeSelect+` WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
}

func (p *PostgresResumeRepository) GetPrimary(ctx context.Context, studentID uuid.UUID) (resume.Resume, error) {
	return scanResume(p.db.QueryRow(ctx, resumeSelect+` WHERE student_id = $1 AND is_primary`, studentID))
}

func (p *PostgresResumeRepository) SetPrimary(ctx context.Context, studentID, id uuid.UUID) (resume.Resume, error) {
	err := database.WithTx(ctx, p.db, func(tx database.Tx) error {
		var owner uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT student_id FROM resumes WHERE id = $1 FOR UPDATE`, id).Scan(&owner); err != nil {
			if database.IsNoRows(err) {
				return resume.ErrNotFound
			}
			return err
		}
		if owner != studentID {
			return resume.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `UPDATE resumes SET is_primary = false, updated_at = now() WHERE student_id = $1 AND is_primary AND id <> $2`, studentID, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE resumes SET is_primary = true, updated_at = now() WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return resume.Resume{}, err
	}
	return p.GetByID(ctx, id)
}

func (p *PostgresResumeRepository) Delete(ctx context.Context, studentID, id uuid.UUID) (resume.Resume, error) {
	var deleted resume.Resume
	err := database.WithTx(ctx, p.db, func(tx database.Tx) error {
		r, err := scanResume(tx.QueryRow(ctx, resumeSelect+` WHERE id = $1 AND student_id = $2 FOR UPDATE`, id, studentID))
		if err != nil {
			return err
		}
		deleted = r
		if _, err := tx.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id); err != nil {
			return err
		}
		if !r.IsPrimary {
			return nil
		}
		_, err = tx.Exec(ctx,
			`UPDATE resumes SET is_primary = true, updated_at = now()
			 WHERE id = (SELECT id FROM resumes WHERE student_id = $1 ORDER BY created_at ASC LIMIT 1)`,
			studentID,
		)
		return err
	})
	return deleted, err
}

func (p *PostgresResumeRepository) SetStatus(ctx context.Context, id uuid.UUID, status resume.ParseStatus, parseErr string) error {
	n, err := p.db.Exec(ctx,
		`UPDATE resumes SET parse_status = $2, parse_error = $3, updated_at = now() WHERE id = $1`,
		id, string(status), nullableText(parseErr),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return resume.ErrNotFound
	}
	return nil
}

func (p *PostgresResumeRepository) SaveParsed(ctx context.Context, id uuid.UUID, text string) error {
	_, err := p.db.Exec(ctx,
		`UPDATE resumes SET parsed_text = $2, parse_status = 'parsed', parse_error = NULL, updated_at = now() WHERE id = $1`,
		id, text,
	)
	return err
}

func (p *PostgresResumeRepository) SetEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error {
	_, err := p.db.Exec(ctx, `UPDATE resumes SET embedding = $2::vector WHERE id = $1`, id, vector(vec))
	return err
}

func (p *PostgresResumeRepository) ListByStatus(ctx context.Context, status resume.ParseStatus, limit int) ([]resume.Resume, error) {
	if limit <= 0 {
		limit = 100
	}
	return p.list(ctx, resumeSelect+` WHERE parse_status = $1 ORDER BY created_at ASC LIMIT $2`, string(status), limit)
}

func (p *PostgresResumeRepository) list(ctx context.Context, q string, args ...any) ([]resume.Resume, error) {
	rows, err := p.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]resume.Resume, 0)
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
