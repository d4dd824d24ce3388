package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"careerhub/internal/app"
	"careerhub/internal/usecase"
)

func newClearCacheCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop every cached job listing page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withContainer(cmd.Context(), func(c *app.Container) error {
				if !c.Cache.Available() {
					return fmt.Errorf("redis is not reachable")
				}
				if err := c.Cache.DeleteByPattern(cmd.Context(), usecase.JobListCachePattern); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "job listing cache cleared")
				return nil
			})
		},
	}
}
