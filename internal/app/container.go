package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"careerhub/internal/config"
	"careerhub/internal/database"
	dbpostgres "careerhub/internal/database/postgres"
	"careerhub/internal/infrastructure/cache"
	"careerhub/internal/infrastructure/fetch"
	"careerhub/internal/infrastructure/llm"
	"careerhub/internal/infrastructure/storage"
	"careerhub/internal/pkg/jwt"
	"careerhub/internal/repository"
	"careerhub/internal/worker"
	"careerhub/internal/ws"
)

// Repositories is every Postgres store the usecases need.
type Repositories struct {
	Users       *repository.PostgresUserRepository
	Orgs        *repository.PostgresOrgRepository
	Skills      *repository.PostgresSkillRepository
	Jobs        *repository.PostgresJobRepository
	Apps        *repository.PostgresApplicationRepository
	Resumes     *repository.PostgresResumeRepository
	Analyses    *repository.PostgresAnalysisRepository
	Interviews  *repository.PostgresInterviewRepository
	Fairs       *repository.PostgresCareerFairRepository
	Connections *repository.PostgresConnectionRepository
	Students    *repository.PostgresStudentRepository
	Dashboard   *repository.PostgresDashboardRepository
}

func newRepositories(db database.DB) Repositories {
	return Repositories{
		Users:       repository.NewPostgresUserRepository(db),
		Orgs:        repository.NewPostgresOrgRepository(db),
		Skills:      repository.NewPostgresSkillRepository(db),
		Jobs:        repository.NewPostgresJobRepository(db),
		Apps:        repository.NewPostgresApplicationRepository(db),
		Resumes:     repository.NewPostgresResumeRepository(db),
		Analyses:    repository.NewPostgresAnalysisRepository(db),
		Interviews:  repository.NewPostgresInterviewRepository(db),
		Fairs:       repository.NewPostgresCareerFairRepository(db),
		Connections: repository.NewPostgresConnectionRepository(db),
		Students:    repository.NewPostgresStudentRepository(db),
		Dashboard:   repository.NewPostgresDashboardRepository(db),
	}
}

// Container owns the process-wide infrastructure.
type Container struct {
	Config config.Config
	Logger *logrus.Logger

	DB      database.DB
	Cache   *cache.Redis
	LLM     llm.Client
	Files   *storage.Local
	Pool    *worker.Pool
	Hub     *ws.Hub
	JWT     jwt.Service
	Fetcher *fetch.Fetcher
	Repos   Repositories

	stop       chan struct{}
	stopWorker context.CancelFunc
}

// drainTimeout bounds how long Close waits for queued background tasks.
const drainTimeout = 30 * time.Second

func NewContainer(cfg config.Config, logger *logrus.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	files, err := storage.NewLocal(cfg.Storage.Dir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Cache:   cache.NewRedis(cfg.Redis, logger),
		Files:   files,
		Pool:    worker.NewPool(cfg.Worker.Workers, cfg.Worker.Queue),
		Hub:     ws.NewHub(logger),
		JWT:     jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessExpiresIn, cfg.JWT.RefreshExpiresIn),
		Fetcher: fetch.New(logger),
		Repos:   newRepositories(db),
		stop:    make(chan struct{}),
	}

	gemini, err := llm.NewGemini(ctx, cfg.LLM, logger)
	switch {
	case err == nil:
		c.LLM = gemini
	case errors.Is(err, llm.ErrDisabled):
		logger.Info("GEMINI_API_KEY not set, AI features run in fallback mode")
	default:
		logger.WithError(err).Warn("language model unavailable, AI features run in fallback mode")
	}

	return c, nil
}

// Start runs the worker pool and the websocket hub until Close is called.
// The pool outlives ctx so Close can drain queued tasks.
func (c *Container) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.stopWorker = cancel
	go worker.Drain(c.Pool.Run(workerCtx), c.Logger)
	go c.Hub.Run(c.stop)
	ws.SetDefaultHub(c.Hub)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	ws.SetDefaultHub(nil)
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	c.drainPool()

	var errs []error
	if c.LLM != nil {
		errs = append(errs, c.LLM.Close())
	}
	errs = append(errs, c.Cache.Close())
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}

func (c *Container) drainPool() {
	c.Pool.Close()
	done := make(chan struct{})
	go func() {
		c.Pool.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		c.Logger.Warn("background tasks still running at shutdown, cancelling")
	}
	if c.stopWorker != nil {
		c.stopWorker()
	}
}
