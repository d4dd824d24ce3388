package seeder

import (
	"context"

	"careerhub/internal/database"
)

type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

var defaultSkills = []struct {
	Name     string
	Category string
}{
	{Name: "Go", Category: "Programming Language"},
	{Name: "Python", Category: "Programming Language"},
	{Name: "Java", Category: "Programming Language"},
	{Name: "JavaScript", Category: "Programming Language"},
	{Name: "TypeScript", Category: "Programming Language"},
	{Name: "SQL", Category: "Database"},
	{Name: "PostgreSQL", Category: "Database"},
	{Name: "Redis", Category: "Database"},
	{Name: "React", Category: "Frontend"},
	{Name: "Docker", Category: "DevOps"},
	{Name: "Kubernetes", Category: "DevOps"},
	{Name: "AWS", Category: "Cloud"},
	{Name: "GCP", Category: "Cloud"},
	{Name: "Machine Learning", Category: "Data"},
	{Name: "Data Analysis", Category: "Data"},
	{Name: "Communication", Category: "Soft Skill"},
	{Name: "Teamwork", Category: "Soft Skill"},
	{Name: "Project Management", Category: "Soft Skill"},
}

func (SkillsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "skills", "id", "name", "category", "created_at"); err != nil {
		return err
	}
	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range defaultSkills {
			if _, err := tx.Exec(ctx,
				`INSERT INTO skills (name, category) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
				it.Name, it.Category,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
