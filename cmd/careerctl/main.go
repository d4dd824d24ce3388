// Command careerctl runs maintenance tasks against the careerhub database
// and caches.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"careerhub/internal/app"
	"careerhub/internal/config"
	"careerhub/internal/database"
	dbpostgres "careerhub/internal/database/postgres"
	"careerhub/internal/pkg/logger"
)

type env struct {
	cfg    config.Config
	logger *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "careerctl",
		Short:         "Maintenance commands for careerhub",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load()
		},
	}
	root.AddCommand(
		newMigrateCmd(e),
		newSeedCmd(e),
		newEmbedJobsCmd(e),
		newExtractSkillsCmd(e),
		newReparseCmd(e),
		newClearCacheCmd(e),
		newImportJobCmd(e),
	)
	return root
}

func (e *env) load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = logger.New(cfg)
	return nil
}

// withDB is for commands that only touch Postgres.
func (e *env) withDB(ctx context.Context, fn func(db database.DB) error) error {
	db, err := dbpostgres.Connect(ctx, e.cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return fn(db)
}

// withContainer starts the full infrastructure, so queued work drains
// before the command returns.
func (e *env) withContainer(ctx context.Context, fn func(c *app.Container) error) error {
	c, err := app.NewContainer(e.cfg, e.logger)
	if err != nil {
		return err
	}
	c.Start(ctx)
	runErr := fn(c)
	return errors.Join(runErr, c.Close())
}
