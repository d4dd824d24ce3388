package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"careerhub/internal/app"
)

func newImportJobCmd(e *env) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "import-job",
		Short: "Fetch a job advert and print it as draft fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withContainer(cmd.Context(), func(c *app.Container) error {
				draft, err := c.Usecases().Drafts.Structure(cmd.Context(), url)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(draft); err != nil {
					return fmt.Errorf("encode draft: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "job advert URL")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
