package repository

import (
	"context"

	"github.com/google/uuid"

	"careerhub/internal/database"
	"careerhub/internal/domain/matching"
	"careerhub/internal/domain/resume"
)

type AnalysisRepository interface {
	GetCV(ctx context.Context, resumeID uuid.UUID) (resume.Analysis, error)
	UpsertCV(ctx context.Context, resumeID uuid.UUID, a resume.Analysis) error

	GetJobReport(ctx context.Context, resumeID, jobID uuid.UUID) (matching.Report, error)
	UpsertJobReport(ctx context.Context, r matching.Report) error
	MarkStaleByResume(ctx context.Context, resumeID uuid.UUID) error
	MarkStaleByJob(ctx context.Context, jobID uuid.UUID) error
	// FreshScores returns overall scores of non-stale reports keyed by job.
	FreshScores(ctx context.Context, resumeID uuid.UUID, jobIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type PostgresAnalysisRepository struct {
	db database.DB
}

func NewPostgresAnalysisRepository(db database.DB) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

func (r *PostgresAnalysisRepository) GetCV(ctx context.Context, resumeID uuid.UUID) (resume.Analysis, error) {
	var a resume.Analysis
	err := r.db.QueryRow(ctx, `SELECT report FROM cv_analyses WHERE resume_id = $1`, resumeID).Scan(&a)
	if err != nil {
		if database.IsNoRows(err) {
			return resume.Analysis{}, ErrNotFound
		}
		return resume.Analysis{}, err
	}
	return a, nil
}

func (r *PostgresAnalysisRepository) UpsertCV(ctx context.Context, resumeID uuid.UUID, a resume.Analysis) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO cv_analyses (resume_id, overall_score, report, model_name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (resume_id) DO UPDATE SET
			overall_score = EXCLUDED.overall_score,
			report = EXCLUDED.report,
			model_name = EXCLUDED.model_name,
			updated_at = now()`,
		resumeID, a.OverallScore, a, a.ModelName,
	)
	return err
}

func (r *PostgresAnalysisRepository) GetJobReport(ctx context.Context, resumeID, jobID uuid.UUID) (matching.Report, error) {
	var rep matching.Report
	var stale bool
	err := r.db.QueryRow(ctx,
		`SELECT report, is_stale, updated_at FROM job_analysis_reports WHERE resume_id = $1 AND job_id = $2`,
		resumeID, jobID,
	).Scan(&rep, &stale, &rep.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return matching.Report{}, ErrNotFound
		}
		return matching.Report{}, err
	}
	rep.ResumeID, rep.JobID, rep.IsStale = resumeID, jobID, stale
	return rep, nil
}

func (r *PostgresAnalysisRepository) UpsertJobReport(ctx context.Context, rep matching.Report) error {
	rep.IsStale = false
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_analysis_reports (resume_id, job_id, overall_score, report, report_version, model_name, is_stale)
		 VALUES ($1, $2, $3, $4, $5, $6, false)
		 ON CONFLICT (resume_id, job_id) DO UPDATE SET
			overall_score = EXCLUDED.overall_score,
			report = EXCLUDED.report,
			report_version = EXCLUDED.report_version,
			model_name = EXCLUDED.model_name,
			is_stale = false,
			updated_at = now()`,
		rep.ResumeID, rep.JobID, rep.OverallScore, rep, rep.Version, rep.ModelName,
	)
	return err
}

func (r *PostgresAnalysisRepository) MarkStaleByResume(ctx context.Context, resumeID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE job_analysis_reports SET is_stale = true, updated_at = now() WHERE resume_id = $1 AND NOT is_stale`, resumeID)
	return err
}

func (r *PostgresAnalysisRepository) MarkStaleByJob(ctx context.Context, jobID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE job_analysis_reports SET is_stale = true, updated_at = now() WHERE job_id = $1 AND NOT is_stale`, jobID)
	return err
}

func (r *PostgresAnalysisRepository) FreshScores(ctx context.Context, resumeID uuid.UUID, jobIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT job_id, overall_score FROM job_analysis_reports
		 WHERE resume_id = $1 AND job_id = ANY($2::uuid[]) AND NOT is_stale`,
		resumeID, jobIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var score int
		if err := rows.Scan(&id, &score); err != nil {
			return nil, err
		}
		out[id] = score
	}
	return out, rows.Err()
}
