package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/matching"
	"careerhub/internal/domain/resume"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
)

const (
	SourceLLM    = "llm"
	SourceVector = "vector"
	SourceSkills = "skills"
)

type MatchScore struct {
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// studentContext is everything scoring needs about one student.
type studentContext struct {
	Resume    *resume.Resume
	Skills    []matching.StudentSkill
	Readiness matching.Readiness
	Profile   user.StudentProfile
}

// scorer resolves match scores in order of trust: a fresh model report,
// then embedding similarity, then skill overlap.
type scorer struct {
	jobs     repository.JobRepository
	resumes  repository.ResumeRepository
	analyses repository.AnalysisRepository
	users    repository.UserRepository
	now      func() time.Time
}

// student loads the context for studentID. With resumeID nil the primary
// resume is used; a student without resumes scores on profile skills only.
func (s *scorer) student(ctx context.Context, studentID uuid.UUID, resumeID *uuid.UUID) (studentContext, error) {
	var (
		sc      studentContext
		profile user.StudentProfile
		skills  []repository.SkillRef
		rs      *resume.Resume
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.users.GetStudentProfile(gctx, studentID)
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		profile = p
		return err
	})
	g.Go(func() error {
		var err error
		skills, err = s.users.ListStudentSkills(gctx, studentID)
		return err
	})
	g.Go(func() error {
		var (
			r   resume.Resume
			err error
		)
		if resumeID != nil {
			r, err = s.resumes.GetByID(gctx, *resumeID)
			if err == nil && r.StudentID != studentID {
				return fmt.Errorf("%w: resume", ErrNotFound)
			}
		} else {
			r, err = s.resumes.GetPrimary(gctx, studentID)
			if errors.Is(err, resume.ErrNotFound) {
				return nil
			}
		}
		if err != nil {
			return err
		}
		rs = &r
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrNotFound) {
			return studentContext{}, err
		}
		return studentContext{}, notFound(err, "resume", resume.ErrNotFound)
	}

	sc.Resume = rs
	sc.Profile = profile
	sc.Readiness = matching.ReadinessFromGraduation(profile.GraduationYear, s.now().Year())
	for _, sk := range skills {
		sc.Skills = append(sc.Skills, matching.StudentSkill{SkillID: sk.ID, SkillName: sk.Name})
	}
	if rs != nil && rs.Status == resume.StatusParsed {
		cv, err := s.analyses.GetCV(ctx, rs.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return studentContext{}, internal(err)
		}
		for _, kw := range cv.KeywordsFound {
			sc.Skills = append(sc.Skills, matching.StudentSkill{SkillName: kw})
		}
	}
	return sc, nil
}

func (s *scorer) skillResult(sc studentContext, j job.Job) matching.Result {
	reqs := make([]matching.JobSkill, 0, len(j.Skills))
	for _, sk := range j.Skills {
		reqs = append(reqs, matching.JobSkill{SkillID: sk.ID, SkillName: sk.Name, IsMandatory: sk.IsMandatory})
	}
	return matching.Calculate(sc.Skills, reqs, sc.Readiness)
}

// bulk scores every job for the student. Embedding similarity is skipped
// while the resume is being re-parsed since its vector may be outdated.
func (s *scorer) bulk(ctx context.Context, sc studentContext, jobs []job.Job) (map[uuid.UUID]MatchScore, error) {
	out := make(map[uuid.UUID]MatchScore, len(jobs))
	if len(jobs) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}

	if sc.Resume != nil {
		fresh, err := s.analyses.FreshScores(ctx, sc.Resume.ID, ids)
		if err != nil {
			return nil, internal(err)
		}
		for id, score := range fresh {
			out[id] = MatchScore{Score: float64(score), Source: SourceLLM}
		}

		if sc.Resume.HasVector && !sc.Resume.Status.InFlight() {
			rest := make([]uuid.UUID, 0, len(ids))
			for _, id := range ids {
				if _, ok := out[id]; !ok {
					rest = append(rest, id)
				}
			}
			sims, err := s.jobs.Similarities(ctx, sc.Resume.ID, rest)
			if err != nil {
				return nil, internal(err)
			}
			for id, sim := range sims {
				out[id] = MatchScore{Score: matching.VectorScore(sim), Source: SourceVector}
			}
		}
	}

	for _, j := range jobs {
		if _, ok := out[j.ID]; ok {
			continue
		}
		out[j.ID] = MatchScore{Score: float64(s.skillResult(sc, j).MatchScore), Source: SourceSkills}
	}
	return out, nil
}

// single scores one job, reporting ErrProcessing when no model report
// exists and the resume is still being parsed.
func (s *scorer) single(ctx context.Context, sc studentContext, j job.Job) (MatchScore, error) {
	if sc.Resume != nil {
		rep, err := s.analyses.GetJobReport(ctx, sc.Resume.ID, j.ID)
		switch {
		case err == nil && !rep.IsStale:
			return MatchScore{Score: float64(rep.OverallScore), Source: SourceLLM}, nil
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return MatchScore{}, internal(err)
		}

		if sc.Resume.Status.InFlight() {
			return MatchScore{}, ErrProcessing
		}

		if sc.Resume.HasVector {
			sims, err := s.jobs.Similarities(ctx, sc.Resume.ID, []uuid.UUID{j.ID})
			if err != nil {
				return MatchScore{}, internal(err)
			}
			if sim, ok := sims[j.ID]; ok {
				return MatchScore{Score: matching.VectorScore(sim), Source: SourceVector}, nil
			}
		}
	}
	return MatchScore{Score: float64(s.skillResult(sc, j).MatchScore), Source: SourceSkills}, nil
}
