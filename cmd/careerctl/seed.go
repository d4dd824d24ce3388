package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"careerhub/internal/database"
	"careerhub/internal/database/seeder"
)

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert reference and demo data; safe to run repeatedly",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd.Context(), func(db database.DB) error {
				seeders := seeder.Defaults()
				if err := (seeder.Runner{Seeders: seeders, Logger: e.logger}).Run(cmd.Context(), db); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ran %d seeder(s)\n", len(seeders))
				return nil
			})
		},
	}
}
