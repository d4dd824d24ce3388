package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careerhub/internal/domain/job"
	"careerhub/internal/repository"
	"careerhub/internal/search"
)

const (
	SortRecent     = "recent"
	SortSalaryDesc = "salary-desc"
	SortSalaryAsc  = "salary-asc"
	SortRelevance  = "relevance"
	SortMatch      = "match"

	// rankWindow bounds how many rows relevance and match sorting rank in
	// memory before paginating.
	rankWindow = 500

	listLockTTL = 30 * time.Second
)

type JobListParams struct {
	Keyword      string
	Types        []string
	Industry     string
	CompanySize  string
	RemoteOption string
	Location     string
	CompanyID    *uuid.UUID
	SalaryMin    *int
	SalaryMax    *int
	SortBy       string
	PageParams
}

type JobListItem struct {
	job.Job
	MatchScore  *float64 `json:"match_score,omitempty"`
	MatchSource string   `json:"match_source,omitempty"`
}

// cachedJobPage is the viewer-independent part of a listing.
type cachedJobPage struct {
	Items []job.Job `json:"items"`
	Total int       `json:"total"`
}

// List returns one page of active jobs. viewer is nil for anonymous callers.
func (u *Jobs) List(ctx context.Context, viewer *Actor, params JobListParams) ([]JobListItem, int, error) {
	params.PageParams = params.PageParams.Normalize(20, 100)
	params.SortBy = strings.ToLower(strings.TrimSpace(params.SortBy))
	if params.SortBy == "" {
		params.SortBy = SortRecent
	}

	student := viewer != nil && requireStudent(*viewer) == nil
	if params.SortBy == SortMatch && !student {
		params.SortBy = SortRecent
	}

	f, err := jobFilter(params)
	if err != nil {
		return nil, 0, err
	}

	if params.SortBy == SortMatch {
		return u.listByMatch(ctx, *viewer, f, params.PageParams)
	}

	page, err := u.cachedPage(ctx, params, f)
	if err != nil {
		return nil, 0, err
	}

	items := make([]JobListItem, 0, len(page.Items))
	for _, j := range page.Items {
		items = append(items, JobListItem{Job: j})
	}
	if student {
		if err := u.annotate(ctx, viewer.UserID, items); err != nil {
			return nil, 0, err
		}
	}
	return items, page.Total, nil
}

func jobFilter(params JobListParams) (repository.JobFilter, error) {
	f := repository.JobFilter{
		Industry:     strings.TrimSpace(params.Industry),
		CompanySize:  strings.TrimSpace(params.CompanySize),
		Location:     strings.TrimSpace(params.Location),
		CompanyID:    params.CompanyID,
		SalaryMin:    params.SalaryMin,
		SalaryMax:    params.SalaryMax,
		Sort:         repository.SortRecent,
		Page:         params.PageParams.repo(),
	}

	for _, raw := range params.Types {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		t, ok := job.ParseType(raw)
		if !ok {
			return f, invalid("job_type", "unknown job type "+raw)
		}
		f.Types = append(f.Types, t)
	}
	if s := strings.TrimSpace(params.RemoteOption); s != "" {
		r, ok := job.ParseRemoteOption(s)
		if !ok {
			return f, invalid("remote_option", "unknown remote option")
		}
		f.RemoteOption = string(r)
	}

	if q := search.ProcessQuery(params.Keyword); q.Normalized != "" {
		f.Keywords = q.Variants
	}

	switch params.SortBy {
	case SortRecent:
	case SortSalaryDesc:
		f.Sort = repository.SortSalaryDesc
	case SortSalaryAsc:
		f.Sort = repository.SortSalaryAsc
	case SortRelevance, SortMatch:
		f.Page = repository.Page{Limit: rankWindow}
	default:
		return f, invalid("sort_by", "must be one of recent, salary-desc, salary-asc, relevance, match")
	}
	return f, nil
}

// cachedPage serves the listing from Redis when possible. Concurrent misses
// for the same key are collapsed with a short-lived lock.
func (u *Jobs) cachedPage(ctx context.Context, params JobListParams, f repository.JobFilter) (cachedJobPage, error) {
	cacheable := u.cache != nil && u.cache.Available()
	cacheKey := JobListCacheKey(params)
	if cacheable {
		var gen int64
		if _, err := u.cache.GetJSON(ctx, JobListGenerationKey, &gen); err != nil {
			cacheable = false
		}
		cacheKey = generationKey(cacheKey, gen)
	}
	lockKey := JobListLockKey(cacheKey)
	log := u.logger.WithFields(logrus.Fields{"component": "job_list", "key": cacheKey})

	if cacheable {
		var cached cachedJobPage
		hit, err := u.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil && hit {
			log.Debug("cache hit")
			return cached, nil
		}
		log.Debug("cache miss")
	}

	lockAcquired := false
	if cacheable {
		ok, err := u.cache.SetIfNotExists(ctx, lockKey, "1", listLockTTL)
		if err == nil && ok {
			lockAcquired = true
			log.Debug("lock acquired")
		} else if err == nil && !ok {
			jitter := time.Duration(time.Now().UnixNano()%201) * time.Millisecond
			u.sleep(300*time.Millisecond + jitter)
			var cached cachedJobPage
			hit, err2 := u.cache.GetJSON(ctx, cacheKey, &cached)
			if err2 == nil && hit {
				log.Debug("cache hit after lock wait")
				return cached, nil
			}
			log.Debug("lock wait fallback")
		}
	}

	rows, total, err := u.jobs.List(ctx, f)
	if err != nil {
		if lockAcquired {
			_ = u.cache.Delete(ctx, lockKey)
		}
		return cachedJobPage{}, internal(err)
	}

	if params.SortBy == SortRelevance {
		rows = rankByRelevance(rows, f.Keywords, u.now())
		rows = window(rows, params.PageParams)
	}

	page := cachedJobPage{Items: rows, Total: total}
	if page.Items == nil {
		page.Items = []job.Job{}
	}

	if cacheable {
		if err := u.cache.SetJSON(ctx, cacheKey, page, 0); err != nil {
			log.WithError(err).Warn("cache set failed")
		} else {
			log.Debug("cache set")
		}
		if lockAcquired {
			_ = u.cache.Delete(ctx, lockKey)
		}
	}
	return page, nil
}

func (u *Jobs) listByMatch(ctx context.Context, viewer Actor, f repository.JobFilter, p PageParams) ([]JobListItem, int, error) {
	rows, total, err := u.jobs.List(ctx, f)
	if err != nil {
		return nil, 0, internal(err)
	}
	sc, err := u.scorer.student(ctx, viewer.UserID, nil)
	if err != nil {
		return nil, 0, err
	}
	scores, err := u.scorer.bulk(ctx, sc, rows)
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return scores[rows[a].ID].Score > scores[rows[b].ID].Score
	})

	rows = window(rows, p)
	items := make([]JobListItem, 0, len(rows))
	for _, j := range rows {
		items = append(items, withScore(j, scores[j.ID]))
	}
	return items, total, nil
}

// annotate adds the student's match score to every item of a page.
func (u *Jobs) annotate(ctx context.Context, studentID uuid.UUID, items []JobListItem) error {
	if len(items) == 0 {
		return nil
	}
	sc, err := u.scorer.student(ctx, studentID, nil)
	if err != nil {
		return err
	}
	jobs := make([]job.Job, 0, len(items))
	for _, it := range items {
		jobs = append(jobs, it.Job)
	}
	scores, err := u.scorer.bulk(ctx, sc, jobs)
	if err != nil {
		return err
	}
	for i := range items {
		if s, ok := scores[items[i].ID]; ok {
			items[i] = withScore(items[i].Job, s)
		}
	}
	return nil
}

func withScore(j job.Job, s MatchScore) JobListItem {
	score := s.Score
	return JobListItem{Job: j, MatchScore: &score, MatchSource: s.Source}
}

func rankByRelevance(rows []job.Job, variants []string, now time.Time) []job.Job {
	if len(rows) == 0 {
		return rows
	}
	docs := make([]search.Document, 0, len(rows))
	for _, r := range rows {
		skills := make([]string, 0, len(r.Skills))
		for _, s := range r.Skills {
			skills = append(skills, s.Name)
		}
		docs = append(docs, search.Document{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			CompanyName: r.CompanyName,
			Skills:      skills,
			CreatedAt:   r.CreatedAt,
		})
	}
	order := search.Rank(docs, variants, now)
	out := make([]job.Job, 0, len(rows))
	for _, idx := range order {
		out = append(out, rows[idx])
	}
	return out
}

func window[T any](rows []T, p PageParams) []T {
	start := (p.Page - 1) * p.PageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// invalidateJobLists drops every cached listing after a job mutation.
func (u *Jobs) invalidateJobLists(ctx context.Context) {
	if u.cache == nil || !u.cache.Available() {
		return
	}
	log := u.logger.WithField("component", "job_list")
	if _, err := u.cache.Incr(ctx, JobListGenerationKey); err != nil {
		log.WithError(err).Warn("cache generation not bumped")
	}
	if err := u.cache.DeleteByPattern(ctx, JobListCachePattern); err != nil {
		log.WithError(err).Warn("cache invalidation failed")
	}
}
