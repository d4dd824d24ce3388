package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"careerhub/internal/app"
	"careerhub/internal/domain/resume"
	"careerhub/internal/pipeline"
)

func newEmbedJobsCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "embed-jobs",
		Short: "Compute embeddings for jobs that have none",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withContainer(cmd.Context(), func(c *app.Container) error {
				if c.LLM == nil {
					return fmt.Errorf("embeddings need GEMINI_API_KEY")
				}
				b := pipeline.NewBackfill(c.Repos.Jobs, c.Repos.Skills, c.LLM, e.logger)
				sum, err := b.EmbedJobs(cmd.Context(), pipeline.Params{
					Workers: e.cfg.Worker.Workers,
					Limit:   limit,
					RPS:     e.cfg.LLM.RPS,
				})
				if err != nil {
					return err
				}
				printSummary(cmd, "embedded", sum)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of jobs to process")
	return cmd
}

func newExtractSkillsCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "extract-skills",
		Short: "Link dictionary skills to jobs that have none",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withContainer(cmd.Context(), func(c *app.Container) error {
				b := pipeline.NewBackfill(c.Repos.Jobs, c.Repos.Skills, c.LLM, e.logger)
				sum, err := b.ExtractSkills(cmd.Context(), pipeline.Params{
					Workers: e.cfg.Worker.Workers,
					Limit:   limit,
				})
				if err != nil {
					return err
				}
				printSummary(cmd, "processed", sum)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of jobs to process")
	return cmd
}

func printSummary(cmd *cobra.Command, verb string, s pipeline.Summary) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d job(s), %d failed, took %s\n", verb, s.Total-s.Failed, s.Failed, s.Duration.Round(time.Millisecond))
}

func newReparseCmd(e *env) *cobra.Command {
	var (
		status string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "reparse-resumes",
		Short: "Queue resumes in the given parse status for another parse",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := resume.ParseStatus(strings.ToLower(strings.TrimSpace(status)))
			switch st {
			case resume.StatusPending, resume.StatusProcessing, resume.StatusParsed, resume.StatusFailed:
			default:
				return fmt.Errorf("unknown status %q", status)
			}
			return e.withContainer(cmd.Context(), func(c *app.Container) error {
				n, err := c.ResumeUsecase().Reparse(cmd.Context(), st, limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "queued %d resume(s)\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", string(resume.StatusFailed), "parse status to select")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of resumes to queue")
	return cmd
}
