package seeder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"careerhub/internal/database"
)

type UniversitiesSeeder struct{}

func (UniversitiesSeeder) Name() string { return "universities" }

var defaultUniversities = []struct {
	Name     string
	Location string
	Website  string
}{
	{Name: "Universiti Malaya", Location: "Kuala Lumpur, MY", Website: "https://www.um.edu.my"},
	{Name: "Universiti Teknologi Malaysia", Location: "Johor Bahru, MY", Website: "https://www.utm.my"},
	{Name: "Universiti Sains Malaysia", Location: "Penang, MY", Website: "https://www.usm.my"},
}

func (UniversitiesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "universities", "id", "name", "location", "website"); err != nil {
		return err
	}
	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range defaultUniversities {
			if _, err := tx.Exec(ctx,
				`INSERT INTO universities (name, location, website) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING`,
				it.Name, it.Location, it.Website,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

type CompaniesSeeder struct{}

func (CompaniesSeeder) Name() string { return "companies" }

var defaultCompanies = []struct {
	Name     string
	Industry string
	Location string
	Size     string
	Website  string
}{
	{Name: "Nimbus Cloud", Industry: "Software", Location: "Kuala Lumpur, MY", Size: "SCALEUP", Website: "https://nimbus.example.com"},
	{Name: "Kedai Data", Industry: "Analytics", Location: "Cyberjaya, MY", Size: "STARTUP", Website: "https://kedaidata.example.com"},
	{Name: "Selat Logistics", Industry: "Logistics", Location: "Penang, MY", Size: "LARGE", Website: "https://selat.example.com"},
}

// Company names are unique case-insensitively, so rows that already exist
// under any casing are skipped.
func (CompaniesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "companies", "id", "name", "industry", "location", "size", "website"); err != nil {
		return err
	}
	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range defaultCompanies {
			if _, err := tx.Exec(ctx,
				`INSERT INTO companies (name, industry, location, size, website)
				 SELECT $1, $2, $3, $4, $5
				 WHERE NOT EXISTS (SELECT 1 FROM companies WHERE lower(name) = lower($1))`,
				it.Name, it.Industry, it.Location, it.Size, it.Website,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func lookupID(ctx context.Context, q database.Querier, table, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRow(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE name = $1 ORDER BY created_at LIMIT 1`, table), name).Scan(&id)
	if err != nil {
		if database.IsNoRows(err) {
			return uuid.Nil, fmt.Errorf("%s %q not seeded", table, name)
		}
		return uuid.Nil, err
	}
	return id, nil
}
