package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"careerhub/internal/domain/job"
	"careerhub/internal/infrastructure/llm"
	"careerhub/internal/repository"
	"careerhub/internal/worker"
)

type Params struct {
	Workers int
	Limit   int
	// RPS caps task starts per second; zero means unlimited.
	RPS float64
}

func (p Params) normalized() Params {
	if p.Workers <= 0 {
		p.Workers = 4
	}
	if p.Limit <= 0 {
		p.Limit = 100
	}
	return p
}

type Summary struct {
	Total    int
	Failed   int
	Duration time.Duration
}

// Backfill fills in derived job data: dictionary skills and embeddings.
type Backfill struct {
	jobs   repository.JobRepository
	skills repository.SkillRepository
	llm    llm.Client
	log    *logrus.Logger
}

func NewBackfill(jobs repository.JobRepository, skills repository.SkillRepository, client llm.Client, logger *logrus.Logger) *Backfill {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Backfill{jobs: jobs, skills: skills, llm: client, log: logger}
}

// ExtractSkills links dictionary skills to active jobs that have none.
func (b *Backfill) ExtractSkills(ctx context.Context, params Params) (Summary, error) {
	params = params.normalized()

	dict, err := b.skills.All(ctx)
	if err != nil {
		return Summary{}, err
	}
	batch, err := b.jobs.ListMissingSkills(ctx, params.Limit)
	if err != nil {
		return Summary{}, err
	}

	return b.run(ctx, "extract_skills", params, batch, func(ctx context.Context, j job.Job) error {
		found := ExtractSkills(j.SearchText(), dict)
		if len(found) == 0 {
			b.log.WithFields(logrus.Fields{"component": "pipeline", "job_id": j.ID}).Debug("no dictionary skills found")
			return nil
		}
		return b.jobs.ReplaceSkills(ctx, j.ID, Links(found))
	})
}

// EmbedJobs stores embeddings for active jobs that have none.
func (b *Backfill) EmbedJobs(ctx context.Context, params Params) (Summary, error) {
	if b.llm == nil {
		return Summary{}, llm.ErrDisabled
	}
	params = params.normalized()

	batch, err := b.jobs.ListMissingEmbedding(ctx, params.Limit)
	if err != nil {
		return Summary{}, err
	}

	return b.run(ctx, "embed_jobs", params, batch, func(ctx context.Context, j job.Job) error {
		vec, err := b.llm.Embed(ctx, j.SearchText())
		if err != nil {
			return err
		}
		return b.jobs.SetEmbedding(ctx, j.ID, vec)
	})
}

func (b *Backfill) run(ctx context.Context, name string, params Params, batch []job.Job, fn func(context.Context, job.Job) error) (Summary, error) {
	start := time.Now()
	logger := b.log.WithFields(logrus.Fields{"component": "pipeline", "step": name})
	logger.WithField("jobs", len(batch)).Info("backfill started")

	pool := worker.NewPool(params.Workers, params.Workers*2)
	pool.SetRateLimit(params.RPS)
	results := pool.Run(ctx)

	var failed atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range results {
			if res.Err != nil {
				failed.Add(1)
				logger.WithError(res.Err).WithField("job_id", res.Name).Warn("backfill item failed")
			}
		}
	}()

	var submitErr error
	for _, j := range batch {
		j := j
		if err := pool.Submit(ctx, worker.Task{
			Name: j.ID.String(),
			Run:  func(ctx context.Context) error { return fn(ctx, j) },
		}); err != nil {
			submitErr = err
			break
		}
	}
	pool.Close()
	<-done

	sum := Summary{Total: len(batch), Failed: int(failed.Load()), Duration: time.Since(start)}
	logger.WithFields(logrus.Fields{"total": sum.Total, "failed": sum.Failed, "duration": sum.Duration}).Info("backfill finished")

	if submitErr != nil && !errors.Is(submitErr, context.Canceled) {
		return sum, fmt.Errorf("%s: %w", name, submitErr)
	}
	return sum, ctx.Err()
}
