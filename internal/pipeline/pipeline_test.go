package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/domain/job"
	"careerhub/internal/infrastructure/llm"
	"careerhub/internal/repository"
)

var (
	goSkill     = repository.SkillRef{ID: uuid.New(), Name: "Go"}
	pgSkill     = repository.SkillRef{ID: uuid.New(), Name: "PostgreSQL"}
	dockerSkill = repository.SkillRef{ID: uuid.New(), Name: "Docker"}
	rustSkill   = repository.SkillRef{ID: uuid.New(), Name: "Rust"}
	dict        = []repository.SkillRef{goSkill, pgSkill, dockerSkill, rustSkill}
)

func TestExtractSkills(t *testing.T) {
	text := "Docker is required for local setup.\n" +
		"We write Go every day: Go services, Go tooling and Go CLIs, talking to a database over a long and winding road of queues.\n" +
		"Nice to have: PostgreSQL."

	got := ExtractSkills(text, dict)
	require.Len(t, got, 3)

	assert.Equal(t, "Go", got[0].Skill.Name)
	assert.Equal(t, 4, got[0].Count)
	assert.Equal(t, 5, got[0].Importance)
	assert.True(t, got[0].IsMandatory)

	byName := map[string]ExtractedSkill{}
	for _, s := range got {
		byName[s.Skill.Name] = s
	}
	assert.True(t, byName["Docker"].IsMandatory)
	assert.False(t, byName["PostgreSQL"].IsMandatory)
	assert.NotContains(t, byName, "Rust")

	links := Links(got)
	assert.Equal(t, goSkill.ID, links[0].SkillID)
	assert.Equal(t, []string{"Go", "Docker", "PostgreSQL"}, Names(got))
}

func TestExtractSkills_WordBoundaries(t *testing.T) {
	assert.Empty(t, ExtractSkills("We love google and golang", []repository.SkillRef{goSkill}))
	assert.Empty(t, ExtractSkills("", dict))
}

type fakeJobs struct {
	repository.JobRepository

	mu         sync.Mutex
	missing    []job.Job
	replaced   map[uuid.UUID][]repository.SkillLink
	embeddings map[uuid.UUID][]float32
}

func (f *fakeJobs) ListMissingSkills(_ context.Context, limit int) ([]job.Job, error) {
	return f.missing, nil
}

func (f *fakeJobs) ListMissingEmbedding(_ context.Context, limit int) ([]job.Job, error) {
	return f.missing, nil
}

func (f *fakeJobs) ReplaceSkills(_ context.Context, id uuid.UUID, links []repository.SkillLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaced == nil {
		f.replaced = map[uuid.UUID][]repository.SkillLink{}
	}
	f.replaced[id] = links
	return nil
}

func (f *fakeJobs) SetEmbedding(_ context.Context, id uuid.UUID, vec []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.embeddings == nil {
		f.embeddings = map[uuid.UUID][]float32{}
	}
	f.embeddings[id] = vec
	return nil
}

type fakeSkills struct {
	repository.SkillRepository
}

func (fakeSkills) All(context.Context) ([]repository.SkillRef, error) { return dict, nil }

type fakeLLM struct {
	llm.Client
	failFor string
}

func (f fakeLLM) Embed(_ context.Context, text string) ([]float32, error) {
	if f.failFor != "" && text == f.failFor {
		return nil, errors.New("quota")
	}
	return []float32{0.1, 0.2}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestBackfill_ExtractSkills(t *testing.T) {
	withSkills := job.Job{ID: uuid.New(), Title: "Backend Engineer", Description: "Go and Docker required"}
	without := job.Job{ID: uuid.New(), Title: "Office Manager", Description: "Keep things tidy"}
	jobs := &fakeJobs{missing: []job.Job{withSkills, without}}

	b := NewBackfill(jobs, fakeSkills{}, nil, quietLogger())
	sum, err := b.ExtractSkills(context.Background(), Params{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Total)
	assert.Zero(t, sum.Failed)
	assert.Len(t, jobs.replaced[withSkills.ID], 2)
	assert.NotContains(t, jobs.replaced, without.ID)
}

func TestBackfill_EmbedJobs(t *testing.T) {
	ok := job.Job{ID: uuid.New(), Title: "Data Engineer"}
	bad := job.Job{ID: uuid.New(), Title: "Broken"}
	jobs := &fakeJobs{missing: []job.Job{ok, bad}}

	b := NewBackfill(jobs, fakeSkills{}, fakeLLM{failFor: "Broken"}, quietLogger())
	sum, err := b.EmbedJobs(context.Background(), Params{Workers: 1, RPS: 100})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Failed)
	assert.Contains(t, jobs.embeddings, ok.ID)
	assert.NotContains(t, jobs.embeddings, bad.ID)
}

func TestBackfill_EmbedJobsWithoutModel(t *testing.T) {
	b := NewBackfill(&fakeJobs{}, fakeSkills{}, nil, quietLogger())
	_, err := b.EmbedJobs(context.Background(), Params{})
	assert.ErrorIs(t, err, llm.ErrDisabled)
}
