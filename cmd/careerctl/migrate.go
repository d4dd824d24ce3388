package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"careerhub/internal/database"
	"careerhub/internal/database/migration"
	"careerhub/migrations"
)

func newMigrateCmd(e *env) *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := migrationRunner(e)
			return e.withDB(cmd.Context(), func(db database.DB) error {
				if status {
					rows, err := r.Statuses(cmd.Context(), db.SQLDB())
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED\tAPPLIED AT")
					for _, s := range rows {
						at := "-"
						if s.AppliedAt != nil {
							at = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
						fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", s.Version, s.Name, s.Applied, at)
					}
					return w.Flush()
				}

				n, err := r.Run(cmd.Context(), db.SQLDB())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list migrations and whether they are applied")
	return cmd
}

// migrationRunner reads MIGRATIONS_DIR when it exists on disk and falls back
// to the files embedded in the binary.
func migrationRunner(e *env) migration.Runner {
	r := migration.Runner{Logger: e.logger}
	if st, err := os.Stat(e.cfg.App.MigrationsDir); err == nil && st.IsDir() {
		r.Dir = e.cfg.App.MigrationsDir
		return r
	}
	r.FS = migrations.FS
	return r
}
