package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/matching"
	"careerhub/internal/domain/resume"
	"careerhub/internal/infrastructure/llm"
	"careerhub/internal/repository"
)

type AnalysisUsecase interface {
	// JobAnalysis returns the student's primary resume report for a job,
	// generating it when missing or stale.
	JobAnalysis(ctx context.Context, actor Actor, jobID uuid.UUID) (matching.Report, error)
	// ApplicationAnalysis is the employer view of an applicant's report.
	ApplicationAnalysis(ctx context.Context, actor Actor, applicationID uuid.UUID) (matching.Report, error)
}

type Analysis struct {
	jobs     repository.JobRepository
	apps     repository.ApplicationRepository
	analyses repository.AnalysisRepository
	users    repository.UserRepository
	scorer   *scorer
	llm      llm.Client
	logger   *logrus.Logger
}

func NewAnalysisUsecase(jobs repository.JobRepository, apps repository.ApplicationRepository, resumes repository.ResumeRepository,
	analyses repository.AnalysisRepository, users repository.UserRepository, client llm.Client, logger *logrus.Logger) *Analysis {
	return &Analysis{
		jobs:     jobs,
		apps:     apps,
		analyses: analyses,
		users:    users,
		scorer:   &scorer{jobs: jobs, resumes: resumes, analyses: analyses, users: users, now: func() time.Time { return time.Now().UTC() }},
		llm:      client,
		logger:   orLogger(logger),
	}
}

func (u *Analysis) JobAnalysis(ctx context.Context, actor Actor, jobID uuid.UUID) (matching.Report, error) {
	if err := requireStudent(actor); err != nil {
		return matching.Report{}, err
	}
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return matching.Report{}, notFound(err, "job", job.ErrNotFound)
	}
	sc, err := u.scorer.student(ctx, actor.UserID, nil)
	if err != nil {
		return matching.Report{}, err
	}
	if sc.Resume == nil {
		return matching.Report{}, fmt.Errorf("%w: upload a resume first", ErrNotFound)
	}
	return u.report(ctx, sc, j)
}

func (u *Analysis) ApplicationAnalysis(ctx context.Context, actor Actor, applicationID uuid.UUID) (matching.Report, error) {
	_, companyID, err := employerCompany(ctx, u.users, actor)
	if err != nil {
		return matching.Report{}, err
	}
	app, err := u.apps.GetByID(ctx, applicationID)
	if err != nil {
		return matching.Report{}, notFound(err, "application", job.ErrApplicationNotFound)
	}
	if app.CompanyID != companyID {
		return matching.Report{}, fmt.Errorf("%w: application belongs to another company", ErrForbidden)
	}
	if app.ResumeID == nil {
		return matching.Report{}, fmt.Errorf("%w: application has no resume", ErrNotFound)
	}
	j, err := u.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return matching.Report{}, notFound(err, "job", job.ErrNotFound)
	}
	sc, err := u.scorer.student(ctx, app.ApplicantID, app.ResumeID)
	if err != nil {
		return matching.Report{}, err
	}
	rep, err := u.report(ctx, sc, j)
	if err != nil {
		return matching.Report{}, err
	}
	return rep.EmployerOnly(), nil
}

// report returns the stored report unless it is missing or stale, in which
// case the model produces a new one.
func (u *Analysis) report(ctx context.Context, sc studentContext, j job.Job) (matching.Report, error) {
	rs := sc.Resume
	existing, err := u.analyses.GetJobReport(ctx, rs.ID, j.ID)
	switch {
	case err == nil && !existing.IsStale:
		return existing, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return matching.Report{}, internal(err)
	}

	if rs.Status.InFlight() {
		return matching.Report{}, ErrProcessing
	}
	if u.llm == nil {
		return matching.Report{}, fmt.Errorf("%w: analysis requires the language model", ErrUnavailable)
	}
	if rs.Status != resume.StatusParsed || strings.TrimSpace(rs.ParsedText) == "" {
		return matching.Report{}, invalid("resume", "resume could not be parsed; upload it again")
	}

	skills := u.scorer.skillResult(sc, j)
	weights := matching.DefaultWeights
	if j.MatchingWeights != nil {
		if w, err := matching.Weights(*j.MatchingWeights).Normalize(); err == nil {
			weights = w
		}
	}
	bonus := matching.PreferenceBonus(sc.Profile.CareerPreferences, j)

	raw, err := u.llm.GenerateJSON(ctx, llm.SchemaJobAnalysis, jobAnalysisPrompt(rs.ParsedText, j, skills))
	if err != nil {
		u.logger.WithError(err).WithFields(logrus.Fields{"resume_id": rs.ID, "job_id": j.ID}).Warn("job analysis failed")
		return matching.Report{}, fmt.Errorf("%w: analysis could not be generated", ErrUnavailable)
	}

	rep := matching.BuildReport(skills, parseAssessment(raw), weights, bonus, u.llm.Model())
	rep.ResumeID = rs.ID
	rep.JobID = j.ID
	rep.UpdatedAt = time.Now().UTC()
	if err := u.analyses.UpsertJobReport(ctx, rep); err != nil {
		return matching.Report{}, internal(err)
	}
	return rep, nil
}

func parseAssessment(raw string) matching.Assessment {
	res := gjson.Parse(raw)
	a := matching.Assessment{
		ExperienceScore:      res.Get("experience_score").Float(),
		CultureFitScore:      res.Get("culture_fit_score").Float(),
		GrowthPotentialScore: res.Get("growth_potential_score").Float(),
		Summary:              res.Get("summary").String(),
		Strengths:            stringsAt(res, "strengths"),
		Gaps:                 stringsAt(res, "gaps"),
		Recommendations:      stringsAt(res, "recommendations"),
		EmployerSummary:      res.Get("employer_summary").String(),
		InterviewFocus:       stringsAt(res, "interview_focus"),
	}
	if b := res.Get("bonus"); b.Exists() && b.Type == gjson.Number {
		v := b.Float()
		a.Bonus = &v
	}
	return a
}

func stringsAt(res gjson.Result, path string) []string {
	out := []string{}
	res.Get(path).ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}

func jobAnalysisPrompt(cv string, j job.Job, skills matching.Result) string {
	var b strings.Builder
	b.WriteString("You assess how well a student's CV fits a job. Score experience, culture fit and growth potential from 0 to 100. ")
	b.WriteString("Optionally award a bonus of 0 to 5 for a strong fit with the student's stated goals. Write summary, strengths, gaps and recommendations for the student, ")
	b.WriteString("and employer_summary plus interview_focus for the hiring team. Respond with JSON only.\n\n")
	fmt.Fprintf(&b, "JOB TITLE: %s\nCOMPANY: %s\nLOCATION: %s\nTYPE: %s (%s)\n", j.Title, j.CompanyName, j.Location, j.Type, j.RemoteOption)
	fmt.Fprintf(&b, "DESCRIPTION:\n%s\n", clip(j.Description, 4000))
	if len(j.Requirements) > 0 {
		fmt.Fprintf(&b, "REQUIREMENTS:\n- %s\n", strings.Join(j.Requirements, "\n- "))
	}
	matched := make([]string, 0, len(skills.MatchedSkills))
	for _, m := range skills.MatchedSkills {
		matched = append(matched, m.SkillName)
	}
	missing := make([]string, 0, len(skills.MissingSkills))
	for _, m := range skills.MissingSkills {
		missing = append(missing, m.SkillName)
	}
	fmt.Fprintf(&b, "MATCHED SKILLS: %s\nMISSING SKILLS: %s\n\n", strings.Join(matched, ", "), strings.Join(missing, ", "))
	fmt.Fprintf(&b, "CV:\n%s\n", clip(cv, 12000))
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
