package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"careerhub/internal/database"
	"careerhub/internal/domain/interview"
	"careerhub/internal/domain/job"
)

type InterviewRepository interface {
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (interview.Interview, error)
	// Save writes iv if it still has prevAnswers answers stored; otherwise
	// it returns ErrStale.
	Save(ctx context.Context, iv interview.Interview, prevAnswers int) (interview.Interview, error)
	// SaveReport stores the report once, flags the interview and moves an
	// APPLIED application to INTERVIEWED. created is false when a report
	// already existed.
	SaveReport(ctx context.Context, iv interview.Interview, rep interview.Report) (created bool, err error)
	GetReport(ctx context.Context, interviewID uuid.UUID) (interview.Report, error)
}

type PostgresInterviewRepository struct {
	db database.DB
}

func NewPostgresInterviewRepository(db database.DB) *PostgresInterviewRepository {
	return &PostgresInterviewRepository{db: db}
}

const interviewSelect = `SELECT id, application_id, status, questions, answers, started_at, completed_at, report_generated, created_at, updated_at
	FROM interviews`

func scanInterview(row database.Row) (interview.Interview, error) {
	var iv interview.Interview
	var status string
	if err := row.Scan(&iv.ID, &iv.ApplicationID, &status, &iv.Questions, &iv.Answers, &iv.StartedAt, &iv.CompletedAt,
		&iv.ReportGenerated, &iv.CreatedAt, &iv.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return interview.Interview{}, interview.ErrNotFound
		}
		return interview.Interview{}, err
	}
	iv.Status = interview.Status(status)
	if iv.Questions == nil {
		iv.Questions = []interview.Question{}
	}
	if iv.Answers == nil {
		iv.Answers = []interview.Answer{}
	}
	return iv, nil
}

func (r *PostgresInterviewRepository) GetByApplication(ctx context.Context, applicationID uuid.UUID) (interview.Interview, error) {
	return scanInterview(r.db.QueryRow(ctx, interviewSelect+` WHERE application_id = $1`, applicationID))
}

func (r *PostgresInterviewRepository) Save(ctx context.Context, iv interview.Interview, prevAnswers int) (interview.Interview, error) {
	saved, err := scanInterview(r.db.QueryRow(ctx,
		`UPDATE interviews SET
			status = $2, questions = $3, answers = $4, started_at = $5, completed_at = $6, updated_at = now()
		 WHERE id = $1 AND jsonb_array_length(answers) = $7
		 RETURNING id, application_id, status, questions, answers, started_at, completed_at, report_generated, created_at, updated_at`,
		iv.ID, string(iv.Status), iv.Questions, iv.Answers, iv.StartedAt, iv.CompletedAt, prevAnswers,
	))
	if errors.Is(err, interview.ErrNotFound) {
		return interview.Interview{}, ErrStale
	}
	return saved, err
}

func (r *PostgresInterviewRepository) SaveReport(ctx context.Context, iv interview.Interview, rep interview.Report) (bool, error) {
	created := false
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx,
			`INSERT INTO interview_reports (interview_id, overall_score, report) VALUES ($1, $2, $3)
			 ON CONFLICT (interview_id) DO NOTHING`,
			iv.ID, rep.FitScore, rep,
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		created = true
		if _, err := tx.Exec(ctx, `UPDATE interviews SET report_generated = true, updated_at = now() WHERE id = $1`, iv.ID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE applications SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`,
			iv.ApplicationID, string(job.StatusInterviewed), string(job.StatusApplied),
		)
		return err
	})
	return created, err
}

func (r *PostgresInterviewRepository) GetReport(ctx context.Context, interviewID uuid.UUID) (interview.Report, error) {
	var rep interview.Report
	if err := r.db.QueryRow(ctx, `SELECT report FROM interview_reports WHERE interview_id = $1`, interviewID).Scan(&rep); err != nil {
		if database.IsNoRows(err) {
			return interview.Report{}, ErrNotFound
		}
		return interview.Report{}, err
	}
	return rep, nil
}
