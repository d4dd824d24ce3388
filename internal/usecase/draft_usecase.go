package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"careerhub/internal/domain/job"
	"careerhub/internal/infrastructure/fetch"
	"careerhub/internal/infrastructure/llm"
)

const draftTTL = 7 * 24 * time.Hour

// JobDraft is a job being composed over several wizard steps.
type JobDraft struct {
	ID        uuid.UUID `json:"id"`
	Step      int       `json:"step"`
	Data      job.Draft `json:"data"`
	SourceURL string    `json:"source_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DraftPatch struct {
	Step *int
	Data job.Draft
}

// PageFetcher loads a job advert page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Page, error)
}

type DraftUsecase interface {
	Create(ctx context.Context, actor Actor, step int, data job.Draft) (JobDraft, error)
	List(ctx context.Context, actor Actor) ([]JobDraft, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (JobDraft, error)
	Patch(ctx context.Context, actor Actor, id uuid.UUID, p DraftPatch) (JobDraft, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Publish(ctx context.Context, actor Actor, id uuid.UUID) (job.Job, error)
	Import(ctx context.Context, actor Actor, url string) (JobDraft, error)
	// Structure turns a job advert URL into draft fields without storing anything.
	Structure(ctx context.Context, url string) (job.Draft, error)
}

type Drafts struct {
	cache   Cache
	users   Profiles
	jobs    JobUsecase
	fetcher PageFetcher
	llm     llm.Client
	logger  *logrus.Logger
	now     func() time.Time
}

func NewDraftUsecase(cache Cache, users Profiles, jobs JobUsecase, fetcher PageFetcher, client llm.Client, logger *logrus.Logger) *Drafts {
	return &Drafts{
		cache:   cache,
		users:   users,
		jobs:    jobs,
		fetcher: fetcher,
		llm:     client,
		logger:  orLogger(logger),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func draftKey(userID, id uuid.UUID) string {
	return fmt.Sprintf("drafts:%s:%s", userID, id)
}

// ready checks the caller may use drafts and that Redis is reachable.
func (u *Drafts) ready(ctx context.Context, actor Actor) error {
	if _, _, err := employerCompany(ctx, u.users, actor); err != nil {
		return err
	}
	if u.cache == nil || !u.cache.Available() {
		return fmt.Errorf("%w: draft storage is offline", ErrUnavailable)
	}
	return nil
}

func (u *Drafts) store(ctx context.Context, userID uuid.UUID, d JobDraft) (JobDraft, error) {
	d.UpdatedAt = u.now()
	if err := u.cache.SetJSON(ctx, draftKey(userID, d.ID), d, draftTTL); err != nil {
		return JobDraft{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return d, nil
}

func (u *Drafts) Create(ctx context.Context, actor Actor, step int, data job.Draft) (JobDraft, error) {
	if err := u.ready(ctx, actor); err != nil {
		return JobDraft{}, err
	}
	if step < 0 {
		return JobDraft{}, invalid("step", "must not be negative")
	}
	return u.store(ctx, actor.UserID, JobDraft{ID: uuid.New(), Step: step, Data: data})
}

func (u *Drafts) List(ctx context.Context, actor Actor) ([]JobDraft, error) {
	if err := u.ready(ctx, actor); err != nil {
		return nil, err
	}
	keys, err := u.cache.Keys(ctx, fmt.Sprintf("drafts:%s:*", actor.UserID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	out := make([]JobDraft, 0, len(keys))
	for _, k := range keys {
		var d JobDraft
		hit, err := u.cache.GetJSON(ctx, k, &d)
		if err != nil || !hit {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (u *Drafts) Get(ctx context.Context, actor Actor, id uuid.UUID) (JobDraft, error) {
	if err := u.ready(ctx, actor); err != nil {
		return JobDraft{}, err
	}
	return u.load(ctx, actor.UserID, id)
}

func (u *Drafts) load(ctx context.Context, userID, id uuid.UUID) (JobDraft, error) {
	var d JobDraft
	hit, err := u.cache.GetJSON(ctx, draftKey(userID, id), &d)
	if err != nil {
		return JobDraft{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !hit {
		return JobDraft{}, fmt.Errorf("%w: draft", ErrNotFound)
	}
	return d, nil
}

func (u *Drafts) Patch(ctx context.Context, actor Actor, id uuid.UUID, p DraftPatch) (JobDraft, error) {
	if err := u.ready(ctx, actor); err != nil {
		return JobDraft{}, err
	}
	d, err := u.load(ctx, actor.UserID, id)
	if err != nil {
		return JobDraft{}, err
	}
	if p.Step != nil {
		if *p.Step < 0 {
			return JobDraft{}, invalid("step", "must not be negative")
		}
		d.Step = *p.Step
	}
	d.Data = d.Data.Merge(p.Data)
	return u.store(ctx, actor.UserID, d)
}

func (u *Drafts) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := u.ready(ctx, actor); err != nil {
		return err
	}
	if _, err := u.load(ctx, actor.UserID, id); err != nil {
		return err
	}
	if err := u.cache.Delete(ctx, draftKey(actor.UserID, id)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (u *Drafts) Publish(ctx context.Context, actor Actor, id uuid.UUID) (job.Job, error) {
	if err := u.ready(ctx, actor); err != nil {
		return job.Job{}, err
	}
	d, err := u.load(ctx, actor.UserID, id)
	if err != nil {
		return job.Job{}, err
	}
	created, err := u.jobs.Create(ctx, actor, d.Data)
	if err != nil {
		return job.Job{}, err
	}
	if err := u.cache.Delete(ctx, draftKey(actor.UserID, id)); err != nil {
		u.logger.WithError(err).WithField("draft_id", id).Warn("published draft not deleted")
	}
	return created, nil
}

func (u *Drafts) Import(ctx context.Context, actor Actor, rawURL string) (JobDraft, error) {
	if err := u.ready(ctx, actor); err != nil {
		return JobDraft{}, err
	}
	data, err := u.Structure(ctx, rawURL)
	if err != nil {
		return JobDraft{}, err
	}
	return u.store(ctx, actor.UserID, JobDraft{ID: uuid.New(), Step: 0, Data: data, SourceURL: strings.TrimSpace(rawURL)})
}

func (u *Drafts) Structure(ctx context.Context, rawURL string) (job.Draft, error) {
	if _, err := fetch.ValidateURL(rawURL); err != nil {
		return job.Draft{}, invalid("url", err.Error())
	}
	if u.fetcher == nil {
		return job.Draft{}, fmt.Errorf("%w: page fetching is disabled", ErrUnavailable)
	}
	page, err := u.fetcher.Fetch(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		if errors.Is(err, fetch.ErrInvalidURL) {
			return job.Draft{}, invalid("url", err.Error())
		}
		u.logger.WithError(err).WithField("url", rawURL).Warn("job page fetch failed")
		return job.Draft{}, invalid("url", "page could not be fetched")
	}

	if u.llm != nil {
		raw, err := u.llm.GenerateJSON(ctx, llm.SchemaJobImport, importPrompt(page))
		if err == nil {
			return draftFromModel(raw), nil
		}
		u.logger.WithError(err).WithField("url", rawURL).Warn("model import failed, using page structure")
	}
	return draftFromPage(page), nil
}

func importPrompt(p fetch.Page) string {
	var b strings.Builder
	b.WriteString("Extract the job advert below into JSON with title, description, requirements, responsibilities, location, ")
	b.WriteString("job_type (FULL_TIME, PART_TIME, CONTRACT, INTERNSHIP or TEMPORARY), remote_option (ON_SITE, HYBRID or REMOTE), ")
	b.WriteString("salary_min, salary_max, currency (ISO code) and skills. Use null for unknown salaries. Respond with JSON only.\n\n")
	fmt.Fprintf(&b, "PAGE TITLE: %s\nURL: %s\n\n%s", p.Title, p.URL, clip(p.Text, 15000))
	return b.String()
}

func draftFromModel(raw string) job.Draft {
	res := gjson.Parse(raw)
	d := job.Draft{
		Title:            optString(res.Get("title").String()),
		Description:      optString(res.Get("description").String()),
		Location:         optString(res.Get("location").String()),
		Requirements:     stringsAt(res, "requirements"),
		Responsibilities: stringsAt(res, "responsibilities"),
		Skills:           stringsAt(res, "skills"),
	}
	if t, ok := job.ParseType(res.Get("job_type").String()); ok {
		s := string(t)
		d.Type = &s
	}
	if r, ok := job.ParseRemoteOption(res.Get("remote_option").String()); ok {
		s := string(r)
		d.RemoteOption = &s
	}
	if c := strings.ToUpper(strings.TrimSpace(res.Get("currency").String())); len(c) == 3 {
		d.Currency = &c
	}
	if v := res.Get("salary_min"); v.Type == gjson.Number {
		n := int(v.Int())
		d.SalaryMin = &n
	}
	if v := res.Get("salary_max"); v.Type == gjson.Number {
		n := int(v.Int())
		d.SalaryMax = &n
	}
	return d
}

// draftFromPage builds a draft from JSON-LD job data when the page has it,
// else from the page title and visible text.
func draftFromPage(p fetch.Page) job.Draft {
	if post, ok := p.JobPosting(); ok && post.Title != "" {
		d := job.Draft{
			Title:       optString(post.Title),
			Description: optString(post.Description),
			Location:    optString(post.Location),
			SalaryMin:   post.SalaryMin,
			SalaryMax:   post.SalaryMax,
		}
		if t, ok := job.ParseType(post.EmploymentType); ok {
			s := string(t)
			d.Type = &s
		}
		if post.Remote {
			s := string(job.Remote)
			d.RemoteOption = &s
		}
		if c := strings.ToUpper(strings.TrimSpace(post.Currency)); len(c) == 3 {
			d.Currency = &c
		}
		return d
	}
	return job.Draft{
		Title:       optString(p.Title),
		Description: optString(clip(p.Text, 5000)),
	}
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
