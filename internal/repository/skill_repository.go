package repository

import (
	"context"
	"strings"

	"careerhub/internal/database"
)

type SkillRepository interface {
	Search(ctx context.Context, query string, limit int) ([]SkillRef, error)
	All(ctx context.Context) ([]SkillRef, error)
	// Resolve maps names to dictionary skills, creating unknown ones.
	Resolve(ctx context.Context, names []string) ([]SkillRef, error)
}

type PostgresSkillRepository struct {
	db database.DB
}

func NewPostgresSkillRepository(db database.DB) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

func (r *PostgresSkillRepository) Search(ctx context.Context, query string, limit int) ([]SkillRef, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	var w where
	if q := strings.TrimSpace(query); q != "" {
		w.add(`name ILIKE ?`, likePattern(q))
	}
	lim := w.arg(limit)
	return r.list(ctx, `SELECT id, name, COALESCE(category, '') FROM skills`+w.sql()+` ORDER BY name ASC LIMIT `+lim, w.args...)
}

func (r *PostgresSkillRepository) All(ctx context.Context) ([]SkillRef, error) {
	return r.list(ctx, `SELECT id, name, COALESCE(category, '') FROM skills ORDER BY name ASC`)
}

func (r *PostgresSkillRepository) Resolve(ctx context.Context, names []string) ([]SkillRef, error) {
	clean := make([]string, 0, len(names))
	seen := map[string]struct{}{}
	for _, n := range names {
		n = strings.Join(strings.Fields(n), " ")
		key := strings.ToLower(n)
		if n == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, n)
	}
	if len(clean) == 0 {
		return []SkillRef{}, nil
	}

	if _, err := r.db.Exec(ctx,
		`INSERT INTO skills (name)
		 SELECT n FROM unnest($1::text[]) AS n
		 WHERE NOT EXISTS (SELECT 1 FROM skills s WHERE lower(s.name) = lower(n))
		 ON CONFLICT DO NOTHING`,
		clean,
	); err != nil {
		return nil, err
	}

	lowered := make([]string, len(clean))
	for i, n := range clean {
		lowered[i] = strings.ToLower(n)
	}
	return r.list(ctx,
		`SELECT id, name, COALESCE(category, '') FROM skills WHERE lower(name) = ANY($1::text[]) ORDER BY name ASC`,
		lowered,
	)
}

func (r *PostgresSkillRepository) list(ctx context.Context, q string, args ...any) ([]SkillRef, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SkillRef, 0)
	for rows.Next() {
		var s SkillRef
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
