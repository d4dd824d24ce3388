package seeder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"careerhub/internal/database"
)

type CareerFairsSeeder struct {
	// Now anchors the demo fair dates; zero means time.Now.
	Now time.Time
}

func (CareerFairsSeeder) Name() string { return "career_fairs" }

type demoBooth struct {
	Company string
	Label   string
	Number  string
	X, Y    int
}

// Run creates one upcoming fair hosted by the first demo university with a
// booth per demo company placed on the grid.
func (s CareerFairsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "career_fairs",
		"id", "host_university_id", "title", "description", "start_date", "end_date", "location", "grid_width", "grid_height",
	); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "booths", "id", "career_fair_id", "company_id", "label", "booth_number", "x", "y"); err != nil {
		return err
	}

	now := s.Now
	if now.IsZero() {
		now = time.Now()
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.UTC).AddDate(0, 0, 30)
	end := start.Add(8 * time.Hour)
	const title = "Annual Tech Career Fair"

	booths := []demoBooth{
		{Company: "Nimbus Cloud", Label: "Nimbus Cloud", Number: "A1", X: 1, Y: 1},
		{Company: "Kedai Data", Label: "Kedai Data", Number: "A2", X: 3, Y: 1},
		{Company: "Selat Logistics", Label: "Selat Logistics", Number: "B1", X: 1, Y: 4},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		hostID, err := lookupID(ctx, tx, "universities", defaultUniversities[0].Name)
		if err != nil {
			return err
		}

		var fairID uuid.UUID
		err = tx.QueryRow(ctx,
			`SELECT id FROM career_fairs WHERE host_university_id = $1 AND title = $2 LIMIT 1`,
			hostID, title,
		).Scan(&fairID)
		switch {
		case err == nil:
			return nil
		case !database.IsNoRows(err):
			return err
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO career_fairs (host_university_id, title, description, start_date, end_date, location, grid_width, grid_height)
			 VALUES ($1, $2, $3, $4, $5, $6, 12, 8)
			 RETURNING id`,
			hostID, title, "Meet hiring teams from across the region.", start, end, "Main Hall",
		).Scan(&fairID); err != nil {
			return err
		}

		for _, b := range booths {
			companyID, err := lookupID(ctx, tx, "companies", b.Company)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO booths (career_fair_id, company_id, label, booth_number, x, y)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (career_fair_id, company_id) DO NOTHING`,
				fairID, companyID, b.Label, b.Number, b.X, b.Y,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
