package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/matching"
	"careerhub/internal/domain/resume"
)

type scorerFixture struct {
	s         *scorer
	jobs      *mockJobRepo
	resumes   *mockResumeRepo
	analyses  *mockAnalyses
	users     *mockUsers
	studentID uuid.UUID
}

func newScorerFixture() scorerFixture {
	f := scorerFixture{
		jobs:     &mockJobRepo{sims: map[uuid.UUID]float64{}},
		resumes:  &mockResumeRepo{rows: map[uuid.UUID]resume.Resume{}},
		analyses: &mockAnalyses{cv: map[uuid.UUID]resume.Analysis{}, fresh: map[uuid.UUID]int{}, reports: map[uuid.UUID]matching.Report{}},
		users:    newMockUsers(),
	}
	f.studentID = f.users.addStudent("Go")
	f.s = &scorer{
		jobs:     f.jobs,
		resumes:  f.resumes,
		analyses: f.analyses,
		users:    f.users,
		now:      func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f scorerFixture) addResume(status resume.ParseStatus, vector bool) resume.Resume {
	rs := resume.Resume{ID: uuid.New(), StudentID: f.studentID, IsPrimary: true, Status: status, HasVector: vector}
	f.resumes.rows[rs.ID] = rs
	return rs
}

func TestScorer_BulkPrefersReportThenVectorThenSkills(t *testing.T) {
	f := newScorerFixture()
	f.addResume(resume.StatusParsed, true)
	ctx := context.Background()

	reported := sampleJob("Reported")
	embedded := sampleJob("Embedded")
	plain := sampleJob("Plain", job.Skill{ID: uuid.New(), Name: "Go", IsMandatory: true})
	f.analyses.fresh[reported.ID] = 77
	f.jobs.sims[embedded.ID] = 0.834
	f.jobs.sims[reported.ID] = 0.1

	sc, err := f.s.student(ctx, f.studentID, nil)
	require.NoError(t, err)
	require.NotNil(t, sc.Resume)

	scores, err := f.s.bulk(ctx, sc, []job.Job{reported, embedded, plain})
	require.NoError(t, err)
	assert.Equal(t, MatchScore{Score: 77, Source: SourceLLM}, scores[reported.ID])
	assert.Equal(t, MatchScore{Score: 83.4, Source: SourceVector}, scores[embedded.ID])
	assert.Equal(t, SourceSkills, scores[plain.ID].Source)
	assert.Greater(t, scores[plain.ID].Score, 60.0)
}

func TestScorer_BulkSkipsVectorsWhileParsing(t *testing.T) {
	f := newScorerFixture()
	f.addResume(resume.StatusProcessing, true)
	ctx := context.Background()
	j := sampleJob("Embedded")
	f.jobs.sims[j.ID] = 0.9

	sc, err := f.s.student(ctx, f.studentID, nil)
	require.NoError(t, err)
	scores, err := f.s.bulk(ctx, sc, []job.Job{j})
	require.NoError(t, err)
	assert.Equal(t, SourceSkills, scores[j.ID].Source)
	assert.Zero(t, f.jobs.simCalls)
}

func TestScorer_Single(t *testing.T) {
	ctx := context.Background()
	j := sampleJob("Role")

	t.Run("fresh report", func(t *testing.T) {
		f := newScorerFixture()
		f.addResume(resume.StatusParsed, true)
		f.analyses.reports[j.ID] = matching.Report{OverallScore: 64}
		sc, err := f.s.student(ctx, f.studentID, nil)
		require.NoError(t, err)
		got, err := f.s.single(ctx, sc, j)
		require.NoError(t, err)
		assert.Equal(t, MatchScore{Score: 64, Source: SourceLLM}, got)
	})

	t.Run("stale report while parsing", func(t *testing.T) {
		f := newScorerFixture()
		f.addResume(resume.StatusPending, false)
		f.analyses.reports[j.ID] = matching.Report{OverallScore: 64, IsStale: true}
		sc, err := f.s.student(ctx, f.studentID, nil)
		require.NoError(t, err)
		_, err = f.s.single(ctx, sc, j)
		assert.ErrorIs(t, err, ErrProcessing)
	})

	t.Run("vector", func(t *testing.T) {
		f := newScorerFixture()
		f.addResume(resume.StatusParsed, true)
		f.jobs.sims[j.ID] = 0.5
		sc, err := f.s.student(ctx, f.studentID, nil)
		require.NoError(t, err)
		got, err := f.s.single(ctx, sc, j)
		require.NoError(t, err)
		assert.Equal(t, MatchScore{Score: 50, Source: SourceVector}, got)
	})

	t.Run("no resume", func(t *testing.T) {
		f := newScorerFixture()
		sc, err := f.s.student(ctx, f.studentID, nil)
		require.NoError(t, err)
		assert.Nil(t, sc.Resume)
		got, err := f.s.single(ctx, sc, j)
		require.NoError(t, err)
		assert.Equal(t, SourceSkills, got.Source)
	})
}

func TestScorer_StudentUsesCVKeywords(t *testing.T) {
	f := newScorerFixture()
	rs := f.addResume(resume.StatusParsed, false)
	f.analyses.cv[rs.ID] = resume.Analysis{KeywordsFound: []string{"Docker"}}

	sc, err := f.s.student(context.Background(), f.studentID, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(sc.Skills))
	for _, s := range sc.Skills {
		names = append(names, s.SkillName)
	}
	assert.ElementsMatch(t, []string{"Go", "Docker"}, names)
}

func TestScorer_StudentRejectsForeignResume(t *testing.T) {
	f := newScorerFixture()
	foreign := resume.Resume{ID: uuid.New(), StudentID: uuid.New(), Status: resume.StatusParsed}
	f.resumes.rows[foreign.ID] = foreign

	_, err := f.s.student(context.Background(), f.studentID, &foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	missing := uuid.New()
	_, err = f.s.student(context.Background(), f.studentID, &missing)
	assert.ErrorIs(t, err, ErrNotFound)
}
