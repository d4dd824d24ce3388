package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/matching"
	"careerhub/internal/infrastructure/llm"
	"careerhub/internal/pipeline"
	"careerhub/internal/repository"
	"careerhub/internal/worker"
)

type CompanySummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	LogoURL  string    `json:"logo_url"`
	Industry string    `json:"industry"`
}

// JobDetail is a single job as seen by the viewer.
type JobDetail struct {
	job.Job
	Company    CompanySummary `json:"company"`
	IsSaved    *bool          `json:"is_saved,omitempty"`
	HasApplied *bool          `json:"has_applied,omitempty"`
}

type JobUsecase interface {
	List(ctx context.Context, viewer *Actor, params JobListParams) ([]JobListItem, int, error)
	Get(ctx context.Context, viewer *Actor, id uuid.UUID) (JobDetail, error)
	Create(ctx context.Context, actor Actor, d job.Draft) (job.Job, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, d job.Draft) (job.Job, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	UpdateWeights(ctx context.Context, actor Actor, id uuid.UUID, w matching.PartialWeights) (matching.Weights, error)

	Save(ctx context.Context, actor Actor, id uuid.UUID) error
	Unsave(ctx context.Context, actor Actor, id uuid.UUID) error
	IsSaved(ctx context.Context, actor Actor, id uuid.UUID) (bool, error)
	ListSaved(ctx context.Context, actor Actor, p PageParams) ([]job.Job, int, error)

	Recommendations(ctx context.Context, actor Actor, limit int) ([]JobListItem, error)
	VectorScore(ctx context.Context, actor Actor, jobID uuid.UUID, resumeID *uuid.UUID) (MatchScore, error)
}

type JobDeps struct {
	Jobs     repository.JobRepository
	Apps     repository.ApplicationRepository
	Resumes  repository.ResumeRepository
	Analyses repository.AnalysisRepository
	Users    repository.UserRepository
	Skills   repository.SkillRepository
	Cache    Cache
	Tasks    Tasks
	LLM      llm.Client
	Logger   *logrus.Logger
}

type Jobs struct {
	jobs     repository.JobRepository
	apps     repository.ApplicationRepository
	analyses repository.AnalysisRepository
	users    repository.UserRepository
	skills   repository.SkillRepository
	scorer   *scorer
	cache    Cache
	tasks    Tasks
	llm      llm.Client
	logger   *logrus.Logger
	now      func() time.Time
	sleep    func(time.Duration)
}

func NewJobUsecase(d JobDeps) *Jobs {
	now := func() time.Time { return time.Now().UTC() }
	return &Jobs{
		jobs:     d.Jobs,
		apps:     d.Apps,
		analyses: d.Analyses,
		users:    d.Users,
		skills:   d.Skills,
		scorer:   &scorer{jobs: d.Jobs, resumes: d.Resumes, analyses: d.Analyses, users: d.Users, now: now},
		cache:    d.Cache,
		tasks:    d.Tasks,
		llm:      d.LLM,
		logger:   orLogger(d.Logger),
		now:      now,
		sleep:    time.Sleep,
	}
}

func (u *Jobs) Get(ctx context.Context, viewer *Actor, id uuid.UUID) (JobDetail, error) {
	j, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return JobDetail{}, notFound(err, "job", job.ErrNotFound)
	}
	if !j.IsActive && !u.ownsJob(ctx, viewer, j) {
		return JobDetail{}, fmt.Errorf("%w: job", ErrNotFound)
	}

	out := JobDetail{
		Job:     j,
		Company: CompanySummary{ID: j.CompanyID, Name: j.CompanyName, LogoURL: j.CompanyLogoURL, Industry: j.CompanyIndustry},
	}
	if viewer != nil && requireStudent(*viewer) == nil {
		saved, err := u.jobs.IsSaved(ctx, viewer.UserID, id)
		if err != nil {
			return JobDetail{}, internal(err)
		}
		applied, err := u.apps.HasApplied(ctx, viewer.UserID, id)
		if err != nil {
			return JobDetail{}, internal(err)
		}
		out.IsSaved = &saved
		out.HasApplied = &applied
	}
	return out, nil
}

func (u *Jobs) ownsJob(ctx context.Context, viewer *Actor, j job.Job) bool {
	if viewer == nil {
		return false
	}
	_, companyID, err := employerCompany(ctx, u.users, *viewer)
	return err == nil && companyID == j.CompanyID
}

func (u *Jobs) Create(ctx context.Context, actor Actor, d job.Draft) (job.Job, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return job.Job{}, err
	}
	posted := actor.UserID
	j, err := d.Apply(job.Job{CompanyID: companyID, PostedBy: &posted}, u.now(), false)
	if err != nil {
		return job.Job{}, fromDomain(err)
	}

	links, err := u.skillLinks(ctx, j, d.Skills)
	if err != nil {
		return job.Job{}, err
	}
	created, err := u.jobs.Create(ctx, j, links)
	if err != nil {
		return job.Job{}, internal(err)
	}

	u.invalidateJobLists(ctx)
	u.enqueueEmbedding(ctx, created)
	u.logger.WithFields(logrus.Fields{"component": "jobs", "job_id": created.ID, "skills": len(links)}).Info("job created")
	return created, nil
}

// skillLinks resolves explicit skill names, or extracts dictionary skills
// from the job text when none were given.
func (u *Jobs) skillLinks(ctx context.Context, j job.Job, names []string) ([]repository.SkillLink, error) {
	if len(names) > 0 {
		refs, err := u.skills.Resolve(ctx, names)
		if err != nil {
			return nil, internal(err)
		}
		links := make([]repository.SkillLink, 0, len(refs))
		for _, r := range refs {
			links = append(links, repository.SkillLink{SkillID: r.ID})
		}
		return links, nil
	}
	dict, err := u.skills.All(ctx)
	if err != nil {
		return nil, internal(err)
	}
	return pipeline.Links(pipeline.ExtractSkills(j.SearchText(), dict)), nil
}

func (u *Jobs) enqueueEmbedding(ctx context.Context, j job.Job) {
	if u.llm == nil {
		return
	}
	text := j.SearchText()
	id := j.ID
	submit(ctx, u.tasks, u.logger, worker.Task{
		Name: "embed-job:" + id.String(),
		Run: func(ctx context.Context) error {
			vec, err := u.llm.Embed(ctx, text)
			if err != nil {
				return err
			}
			return u.jobs.SetEmbedding(ctx, id, vec)
		},
	})
}

// companyJob loads a job and checks it belongs to the caller's company.
func (u *Jobs) companyJob(ctx context.Context, actor Actor, id uuid.UUID) (job.Job, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return job.Job{}, err
	}
	j, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return job.Job{}, notFound(err, "job", job.ErrNotFound)
	}
	if j.CompanyID != companyID {
		return job.Job{}, fmt.Errorf("%w: job belongs to another company", ErrForbidden)
	}
	return j, nil
}

func (u *Jobs) Update(ctx context.Context, actor Actor, id uuid.UUID, d job.Draft) (job.Job, error) {
	existing, err := u.companyJob(ctx, actor, id)
	if err != nil {
		return job.Job{}, err
	}
	next, err := d.Apply(existing, u.now(), true)
	if err != nil {
		return job.Job{}, fromDomain(err)
	}

	var links []repository.SkillLink
	if d.Skills != nil {
		if links, err = u.skillLinks(ctx, next, d.Skills); err != nil {
			return job.Job{}, err
		}
		if links == nil {
			links = []repository.SkillLink{}
		}
	}

	saved, err := u.jobs.Update(ctx, next, links)
	if err != nil {
		return job.Job{}, notFound(err, "job", job.ErrNotFound)
	}

	if job.ContentChanged(existing, saved) {
		if err := u.analyses.MarkStaleByJob(ctx, id); err != nil {
			u.logger.WithError(err).WithField("job_id", id).Warn("mark analyses stale failed")
		}
		u.enqueueEmbedding(ctx, saved)
	}
	u.invalidateJobLists(ctx)
	return saved, nil
}

func (u *Jobs) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := u.companyJob(ctx, actor, id); err != nil {
		return err
	}
	if err := u.jobs.Deactivate(ctx, id); err != nil {
		return notFound(err, "job", job.ErrNotFound)
	}
	u.invalidateJobLists(ctx)
	return nil
}

func (u *Jobs) UpdateWeights(ctx context.Context, actor Actor, id uuid.UUID, pw matching.PartialWeights) (matching.Weights, error) {
	w, err := pw.Resolve()
	if err != nil {
		return matching.Weights{}, invalid("matching_weights", err.Error())
	}
	if _, err := u.companyJob(ctx, actor, id); err != nil {
		return matching.Weights{}, err
	}
	if err := u.jobs.UpdateWeights(ctx, id, job.Weights(w)); err != nil {
		return matching.Weights{}, notFound(err, "job", job.ErrNotFound)
	}
	if err := u.analyses.MarkStaleByJob(ctx, id); err != nil {
		u.logger.WithError(err).WithField("job_id", id).Warn("mark analyses stale failed")
	}
	u.invalidateJobLists(ctx)
	return w, nil
}

func (u *Jobs) Save(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireStudent(actor); err != nil {
		return err
	}
	if err := u.jobs.Save(ctx, actor.UserID, id); err != nil {
		return notFound(err, "job", job.ErrNotFound)
	}
	return nil
}

func (u *Jobs) Unsave(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireStudent(actor); err != nil {
		return err
	}
	if err := u.jobs.Unsave(ctx, actor.UserID, id); err != nil {
		return internal(err)
	}
	return nil
}

func (u *Jobs) IsSaved(ctx context.Context, actor Actor, id uuid.UUID) (bool, error) {
	if err := requireStudent(actor); err != nil {
		return false, err
	}
	ok, err := u.jobs.IsSaved(ctx, actor.UserID, id)
	if err != nil {
		return false, internal(err)
	}
	return ok, nil
}

func (u *Jobs) ListSaved(ctx context.Context, actor Actor, p PageParams) ([]job.Job, int, error) {
	if err := requireStudent(actor); err != nil {
		return nil, 0, err
	}
	p = p.Normalize(20, 100)
	items, total, err := u.jobs.ListSaved(ctx, actor.UserID, p.repo())
	if err != nil {
		return nil, 0, internal(err)
	}
	return items, total, nil
}

// recommendationPool is how many recent jobs the skill fallback ranks.
const recommendationPool = 200

func (u *Jobs) Recommendations(ctx context.Context, actor Actor, limit int) ([]JobListItem, error) {
	if err := requireStudent(actor); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = 10
	}
	if limit < 1 || limit > 50 {
		return nil, invalid("limit", "must be between 1 and 50")
	}

	sc, err := u.scorer.student(ctx, actor.UserID, nil)
	if err != nil {
		return nil, err
	}

	if sc.Resume != nil && sc.Resume.HasVector {
		scored, err := u.jobs.SimilarToResume(ctx, sc.Resume.ID, limit)
		if err != nil {
			return nil, internal(err)
		}
		if len(scored) > 0 {
			out := make([]JobListItem, 0, len(scored))
			for _, s := range scored {
				out = append(out, withScore(s.Job, MatchScore{Score: matching.VectorScore(s.Similarity), Source: SourceVector}))
			}
			return out, nil
		}
	}

	recent, err := u.jobs.Recent(ctx, recommendationPool)
	if err != nil {
		return nil, internal(err)
	}
	type ranked struct {
		job   job.Job
		score int
	}
	rs := make([]ranked, 0, len(recent))
	for _, j := range recent {
		rs = append(rs, ranked{job: j, score: u.scorer.skillResult(sc, j).MatchScore})
	}
	sort.SliceStable(rs, func(a, b int) bool { return rs[a].score > rs[b].score })
	if len(rs) > limit {
		rs = rs[:limit]
	}
	out := make([]JobListItem, 0, len(rs))
	for _, r := range rs {
		out = append(out, withScore(r.job, MatchScore{Score: float64(r.score), Source: SourceSkills}))
	}
	return out, nil
}

func (u *Jobs) VectorScore(ctx context.Context, actor Actor, jobID uuid.UUID, resumeID *uuid.UUID) (MatchScore, error) {
	if err := requireStudent(actor); err != nil {
		return MatchScore{}, err
	}
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return MatchScore{}, notFound(err, "job", job.ErrNotFound)
	}
	sc, err := u.scorer.student(ctx, actor.UserID, resumeID)
	if err != nil {
		return MatchScore{}, err
	}
	return u.scorer.single(ctx, sc, j)
}
