package seeder

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"careerhub/internal/database"
)

type JobsSeeder struct{}

func (JobsSeeder) Name() string { return "jobs" }

type demoJob struct {
	Company      string
	Title        string
	Description  string
	Location     string
	JobType      string
	Remote       string
	SalaryMin    int
	SalaryMax    int
	Requirements []string
	Mandatory    []string
	Optional     []string
}

var defaultJobs = []demoJob{
	{
		Company:      "Nimbus Cloud",
		Title:        "Backend Engineer (Go)",
		Description:  "Build and operate Go services behind our public REST APIs, backed by PostgreSQL and Redis.",
		Location:     "Kuala Lumpur, MY",
		JobType:      "FULL_TIME",
		Remote:       "HYBRID",
		SalaryMin:    6000,
		SalaryMax:    9000,
		Requirements: []string{"2+ years building HTTP services", "Comfortable with SQL"},
		Mandatory:    []string{"Go", "PostgreSQL"},
		Optional:     []string{"Redis", "Docker", "Kubernetes"},
	},
	{
		Company:      "Nimbus Cloud",
		Title:        "Software Engineering Intern",
		Description:  "Join a product squad for six months and ship features end to end.",
		Location:     "Kuala Lumpur, MY",
		JobType:      "INTERNSHIP",
		Remote:       "ON_SITE",
		SalaryMin:    1500,
		SalaryMax:    2000,
		Requirements: []string{"Final year computing student"},
		Mandatory:    []string{"JavaScript"},
		Optional:     []string{"TypeScript", "React", "Teamwork"},
	},
	{
		Company:      "Kedai Data",
		Title:        "Data Analyst",
		Description:  "Turn sales and marketing data into dashboards and weekly insight reports.",
		Location:     "Cyberjaya, MY",
		JobType:      "FULL_TIME",
		Remote:       "REMOTE",
		SalaryMin:    4500,
		SalaryMax:    6500,
		Requirements: []string{"Strong SQL", "Clear written communication"},
		Mandatory:    []string{"SQL", "Data Analysis"},
		Optional:     []string{"Python", "Communication"},
	},
	{
		Company:      "Kedai Data",
		Title:        "Machine Learning Engineer",
		Description:  "Train and deploy recommendation models for retail clients.",
		Location:     "Cyberjaya, MY",
		JobType:      "CONTRACT",
		Remote:       "HYBRID",
		SalaryMin:    8000,
		SalaryMax:    12000,
		Requirements: []string{"Production ML experience"},
		Mandatory:    []string{"Python", "Machine Learning"},
		Optional:     []string{"GCP", "Docker"},
	},
	{
		Company:      "Selat Logistics",
		Title:        "Cloud Platform Engineer",
		Description:  "Run the AWS estate behind our tracking platform and keep deployments boring.",
		Location:     "Penang, MY",
		JobType:      "FULL_TIME",
		Remote:       "ON_SITE",
		SalaryMin:    7000,
		SalaryMax:    10000,
		Requirements: []string{"Infrastructure as code", "On-call experience"},
		Mandatory:    []string{"AWS", "Kubernetes"},
		Optional:     []string{"Go", "Project Management"},
	},
}

// Run inserts demo jobs once per (company, title) and links their skills.
func (JobsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "jobs",
		"id", "company_id", "title", "description", "requirements", "location",
		"job_type", "remote_option", "salary_min", "salary_max", "is_active",
	); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "job_skills", "job_id", "skill_id", "is_mandatory"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range defaultJobs {
			companyID, err := lookupID(ctx, tx, "companies", it.Company)
			if err != nil {
				return err
			}
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM jobs WHERE company_id = $1 AND title = $2)`,
				companyID, it.Title,
			).Scan(&exists); err != nil {
				return err
			}
			if exists {
				continue
			}

			reqs, err := json.Marshal(it.Requirements)
			if err != nil {
				return err
			}
			var jobID uuid.UUID
			if err := tx.QueryRow(ctx,
				`INSERT INTO jobs (company_id, title, description, requirements, location, job_type, remote_option, salary_min, salary_max)
				 VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9)
				 RETURNING id`,
				companyID, it.Title, it.Description, string(reqs), it.Location, it.JobType, it.Remote, it.SalaryMin, it.SalaryMax,
			).Scan(&jobID); err != nil {
				return err
			}

			if err := linkSkills(ctx, tx, jobID, it.Mandatory, true); err != nil {
				return err
			}
			if err := linkSkills(ctx, tx, jobID, it.Optional, false); err != nil {
				return err
			}
		}
		return nil
	})
}

func linkSkills(ctx context.Context, tx database.Tx, jobID uuid.UUID, names []string, mandatory bool) error {
	for _, name := range names {
		if _, err := tx.Exec(ctx,
			`INSERT INTO job_skills (job_id, skill_id, is_mandatory)
			 SELECT $1, id, $3 FROM skills WHERE name = $2
			 ON CONFLICT DO NOTHING`,
			jobID, name, mandatory,
		); err != nil {
			return err
		}
	}
	return nil
}
