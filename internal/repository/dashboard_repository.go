package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"careerhub/internal/database"
)

type CompanyMetric string

const (
	MetricActiveJobs          CompanyMetric = "active_jobs"
	MetricTotalApplicants     CompanyMetric = "total_applicants"
	MetricInterviewsScheduled CompanyMetric = "interviews_scheduled"
	MetricNewApplicantsWeekly CompanyMetric = "new_applicants_weekly"
)

var companyMetricSQL = map[CompanyMetric]string{
	MetricActiveJobs: `SELECT COUNT(*) FROM jobs WHERE company_id = $1 AND is_active`,
	MetricTotalApplicants: `SELECT COUNT(*) FROM applications a JOIN jobs j ON j.id = a.job_id
		WHERE j.company_id = $1`,
	MetricInterviewsScheduled: `SELECT COUNT(*) FROM interviews i
		JOIN applications a ON a.id = i.application_id JOIN jobs j ON j.id = a.job_id
		WHERE j.company_id = $1 AND i.status IN ('PENDING', 'IN_PROGRESS')`,
	MetricNewApplicantsWeekly: `SELECT COUNT(*) FROM applications a JOIN jobs j ON j.id = a.job_id
		WHERE j.company_id = $1 AND a.created_at >= now() - interval '7 days'`,
}

type UniversityMetric string

const (
	MetricStudents            UniversityMetric = "students"
	MetricStaff               UniversityMetric = "staff"
	MetricCareerFairs         UniversityMetric = "career_fairs"
	MetricUpcomingFairs       UniversityMetric = "upcoming_fairs"
	MetricRegisteredCompanies UniversityMetric = "registered_companies"
	MetricTotalApplications   UniversityMetric = "total_applications"
	MetricOffers              UniversityMetric = "offers"
)

var universityMetricSQL = map[UniversityMetric]string{
	MetricStudents:      `SELECT COUNT(*) FROM student_profiles WHERE university_id = $1`,
	MetricStaff:         `SELECT COUNT(*) FROM university_staff_profiles WHERE university_id = $1`,
	MetricCareerFairs:   `SELECT COUNT(*) FROM career_fairs WHERE host_university_id = $1`,
	MetricUpcomingFairs: `SELECT COUNT(*) FROM career_fairs WHERE host_university_id = $1 AND is_active AND start_date >= now()`,
	MetricRegisteredCompanies: `SELECT COUNT(DISTINCT b.company_id) FROM booths b
		JOIN career_fairs f ON f.id = b.career_fair_id WHERE f.host_university_id = $1`,
	MetricTotalApplications: `SELECT COUNT(*) FROM applications a
		JOIN student_profiles sp ON sp.user_id = a.applicant_id WHERE sp.university_id = $1`,
	MetricOffers: `SELECT COUNT(*) FROM applications a
		JOIN student_profiles sp ON sp.user_id = a.applicant_id WHERE sp.university_id = $1 AND a.status = 'OFFERED'`,
}

type Activity struct {
	Kind          string    `json:"type"`
	ApplicationID uuid.UUID `json:"application_id"`
	CandidateName string    `json:"candidate_name"`
	JobTitle      string    `json:"job_title"`
	Status        string    `json:"status"`
	At            time.Time `json:"timestamp"`
}

type TopCandidate struct {
	ApplicationID uuid.UUID `json:"application_id"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	FullName      string    `json:"full_name"`
	JobTitle      string    `json:"job_title"`
	Score         int       `json:"score"`
	Source        string    `json:"source"`
}

type DashboardRepository interface {
	CountCompany(ctx context.Context, companyID uuid.UUID, m CompanyMetric) (int, error)
	CountUniversity(ctx context.Context, universityID uuid.UUID, m UniversityMetric) (int, error)
	Pipeline(ctx context.Context, companyID uuid.UUID) (map[string]int, error)
	// TimeToHireDays averages APPLIED to OFFERED days; nil when nobody was offered.
	TimeToHireDays(ctx context.Context, companyID uuid.UUID) (*float64, error)
	RecentActivity(ctx context.Context, companyID uuid.UUID, since time.Time, limit int) ([]Activity, error)
	TopCandidates(ctx context.Context, companyID uuid.UUID, limit int) ([]TopCandidate, error)
}

type PostgresDashboardRepository struct {
	db database.DB
}

func NewPostgresDashboardRepository(db database.DB) *PostgresDashboardRepository {
	return &PostgresDashboardRepository{db: db}
}

func (r *PostgresDashboardRepository) CountCompany(ctx context.Context, companyID uuid.UUID, m CompanyMetric) (int, error) {
	q, ok := companyMetricSQL[m]
	if !ok {
		return 0, fmt.Errorf("unknown company metric %q", m)
	}
	var n int
	err := r.db.QueryRow(ctx, q, companyID).Scan(&n)
	return n, err
}

func (r *PostgresDashboardRepository) CountUniversity(ctx context.Context, universityID uuid.UUID, m UniversityMetric) (int, error) {
	q, ok := universityMetricSQL[m]
	if !ok {
		return 0, fmt.Errorf("unknown university metric %q", m)
	}
	var n int
	err := r.db.QueryRow(ctx, q, universityID).Scan(&n)
	return n, err
}

func (r *PostgresDashboardRepository) Pipeline(ctx context.Context, companyID uuid.UUID) (map[string]int, error) {
	out := map[string]int{"APPLIED": 0, "INTERVIEWED": 0, "OFFERED": 0, "REJECTED": 0}
	rows, err := r.db.Query(ctx,
		`SELECT a.status, COUNT(*) FROM applications a JOIN jobs j ON j.id = a.job_id
		 WHERE j.company_id = $1 GROUP BY a.status`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *PostgresDashboardRepository) TimeToHireDays(ctx context.Context, companyID uuid.UUID) (*float64, error) {
	var days *float64
	err := r.db.QueryRow(ctx,
		`SELECT ROUND(AVG(EXTRACT(EPOCH FROM (a.updated_at - a.created_at)) / 86400)::numeric, 1)::float8
		 FROM applications a JOIN jobs j ON j.id = a.job_id
		 WHERE j.company_id = $1 AND a.status = 'OFFERED'`,
		companyID,
	).Scan(&days)
	return days, err
}

func (r *PostgresDashboardRepository) RecentActivity(ctx context.Context, companyID uuid.UUID, since time.Time, limit int) ([]Activity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT kind, application_id, full_name, title, status, at FROM (
			SELECT 'application' AS kind, a.id AS application_id, u.full_name, j.title, a.status, a.created_at AS at
			FROM applications a JOIN jobs j ON j.id = a.job_id JOIN users u ON u.id = a.applicant_id
			WHERE j.company_id = $1 AND a.created_at >= $2
			UNION ALL
			SELECT 'interview', a.id, u.full_name, j.title, i.status, i.updated_at
			FROM interviews i JOIN applications a ON a.id = i.application_id
			JOIN jobs j ON j.id = a.job_id JOIN users u ON u.id = a.applicant_id
			WHERE j.company_id = $1 AND i.updated_at >= $2 AND i.status <> 'PENDING'
		) act
		ORDER BY at DESC
		LIMIT $3`,
		companyID, since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Activity, 0, limit)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.Kind, &a.ApplicationID, &a.CandidateName, &a.JobTitle, &a.Status, &a.At); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresDashboardRepository) TopCandidates(ctx context.Context, companyID uuid.UUID, limit int) ([]TopCandidate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.applicant_id, u.full_name, j.title,
			COALESCE(ir.overall_score, jar.overall_score) AS score,
			CASE WHEN ir.overall_score IS NOT NULL THEN 'interview' ELSE 'analysis' END
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 JOIN users u ON u.id = a.applicant_id
		 LEFT JOIN interviews i ON i.application_id = a.id
		 LEFT JOIN interview_reports ir ON ir.interview_id = i.id
		 LEFT JOIN job_analysis_reports jar ON jar.resume_id = a.resume_id AND jar.job_id = a.job_id AND NOT jar.is_stale
		 WHERE j.company_id = $1 AND a.status <> 'REJECTED'
			AND (ir.overall_score IS NOT NULL OR jar.overall_score IS NOT NULL)
		 ORDER BY score DESC, a.created_at ASC
		 LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TopCandidate, 0, limit)
	for rows.Next() {
		var c TopCandidate
		if err := rows.Scan(&c.ApplicationID, &c.ApplicantID, &c.FullName, &c.JobTitle, &c.Score, &c.Source); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
