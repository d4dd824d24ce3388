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

	"careerhub/internal/domain/interview"
	"careerhub/internal/domain/job"
	"careerhub/internal/domain/user"
	"careerhub/internal/infrastructure/llm"
	"careerhub/internal/repository"
	"careerhub/internal/worker"
	"careerhub/internal/ws"
)

// AnswerResult is the interview after an answer, plus the next question when
// the interview continues.
type AnswerResult struct {
	Interview    interview.Interview `json:"interview"`
	NextQuestion *interview.Question `json:"next_question,omitempty"`
	Completed    bool                `json:"completed"`
}

type InterviewUsecase interface {
	Start(ctx context.Context, actor Actor, applicationID uuid.UUID) (interview.Interview, error)
	Get(ctx context.Context, actor Actor, applicationID uuid.UUID) (interview.Interview, error)
	Answer(ctx context.Context, actor Actor, applicationID uuid.UUID, text string) (AnswerResult, error)
	GenerateReport(ctx context.Context, actor Actor, applicationID uuid.UUID) (interview.Report, error)
	GetReport(ctx context.Context, actor Actor, applicationID uuid.UUID) (interview.Report, error)
}

type InterviewDeps struct {
	Interviews repository.InterviewRepository
	Apps       repository.ApplicationRepository
	Jobs       repository.JobRepository
	Resumes    repository.ResumeRepository
	Orgs       repository.OrgRepository
	Users      Profiles
	Tasks      Tasks
	Notify     Notifier
	LLM        llm.Client
	Logger     *logrus.Logger
}

type Interviews struct {
	interviews repository.InterviewRepository
	apps       repository.ApplicationRepository
	jobs       repository.JobRepository
	resumes    repository.ResumeRepository
	orgs       repository.OrgRepository
	users      Profiles
	tasks      Tasks
	notify     Notifier
	llm        llm.Client
	logger     *logrus.Logger
	now        func() time.Time
}

func NewInterviewUsecase(d InterviewDeps) *Interviews {
	return &Interviews{
		interviews: d.Interviews,
		apps:       d.Apps,
		jobs:       d.Jobs,
		resumes:    d.Resumes,
		orgs:       d.Orgs,
		users:      d.Users,
		tasks:      d.Tasks,
		notify:     d.Notify,
		llm:        d.LLM,
		logger:     orLogger(d.Logger),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ownInterview loads the application and its interview for the applicant.
func (u *Interviews) ownInterview(ctx context.Context, actor Actor, applicationID uuid.UUID) (job.Application, interview.Interview, error) {
	if err := requireStudent(actor); err != nil {
		return job.Application{}, interview.Interview{}, err
	}
	app, err := u.apps.GetByID(ctx, applicationID)
	if err != nil {
		return job.Application{}, interview.Interview{}, notFound(err, "application", job.ErrApplicationNotFound)
	}
	if app.ApplicantID != actor.UserID {
		return job.Application{}, interview.Interview{}, fmt.Errorf("%w: application", ErrNotFound)
	}
	iv, err := u.interviews.GetByApplication(ctx, applicationID)
	if err != nil {
		return job.Application{}, interview.Interview{}, notFound(err, "interview", interview.ErrNotFound)
	}
	return app, iv, nil
}

func interviewError(err error) error {
	switch {
	case errors.Is(err, interview.ErrEmptyAnswer):
		return invalid("text", "answer must not be empty")
	case errors.Is(err, interview.ErrNotStarted),
		errors.Is(err, interview.ErrAlreadyDone),
		errors.Is(err, interview.ErrNoOpenQuestion),
		errors.Is(err, interview.ErrNotCompleted):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repository.ErrStale):
		return fmt.Errorf("%w: interview changed concurrently", ErrConflict)
	}
	return internal(err)
}

func (u *Interviews) Start(ctx context.Context, actor Actor, applicationID uuid.UUID) (interview.Interview, error) {
	app, iv, err := u.ownInterview(ctx, actor, applicationID)
	if err != nil {
		return interview.Interview{}, err
	}
	if iv.Status == interview.StatusInProgress {
		return iv, nil
	}
	if iv.Status == interview.StatusCompleted {
		return interview.Interview{}, interviewError(interview.ErrAlreadyDone)
	}

	q := u.nextQuestion(ctx, app, iv)
	prev := len(iv.Answers)
	if err := iv.Start(q, u.now()); err != nil {
		return interview.Interview{}, interviewError(err)
	}
	saved, err := u.interviews.Save(ctx, iv, prev)
	if err != nil {
		return interview.Interview{}, interviewError(err)
	}
	return saved, nil
}

func (u *Interviews) Get(ctx context.Context, actor Actor, applicationID uuid.UUID) (interview.Interview, error) {
	_, iv, err := u.ownInterview(ctx, actor, applicationID)
	return iv, err
}

func (u *Interviews) Answer(ctx context.Context, actor Actor, applicationID uuid.UUID, text string) (AnswerResult, error) {
	app, iv, err := u.ownInterview(ctx, actor, applicationID)
	if err != nil {
		return AnswerResult{}, err
	}
	prev := len(iv.Answers)
	completed, err := iv.Answer(text, u.now())
	if err != nil {
		return AnswerResult{}, interviewError(err)
	}

	var next *interview.Question
	if !completed {
		q := u.nextQuestion(ctx, app, iv)
		if err := iv.AddQuestion(q); err != nil {
			return AnswerResult{}, interviewError(err)
		}
		next = &q
	}

	saved, err := u.interviews.Save(ctx, iv, prev)
	if err != nil {
		return AnswerResult{}, interviewError(err)
	}

	if completed && u.llm != nil {
		submit(ctx, u.tasks, u.logger, worker.Task{
			Name: "interview-report:" + saved.ID.String(),
			Run: func(ctx context.Context) error {
				_, err := u.generate(ctx, app, saved)
				return err
			},
		})
	}
	return AnswerResult{Interview: saved, NextQuestion: next, Completed: completed}, nil
}

// nextQuestion asks the model for the question after the current transcript
// and falls back to the bank when the model is off or fails.
func (u *Interviews) nextQuestion(ctx context.Context, app job.Application, iv interview.Interview) interview.Question {
	idx := len(iv.Questions)
	bank := interview.FallbackQuestions(app.JobTitle)
	fallback := bank[idx%len(bank)]
	if u.llm == nil {
		return fallback
	}

	j, err := u.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		u.logger.WithError(err).WithField("job_id", app.JobID).Warn("interview job lookup failed")
		return fallback
	}
	var cv string
	if app.ResumeID != nil {
		if rs, err := u.resumes.GetByID(ctx, *app.ResumeID); err == nil {
			cv = rs.ParsedText
		}
	}

	raw, err := u.llm.GenerateJSON(ctx, llm.SchemaInterviewQuestion, questionPrompt(j, cv, iv, idx))
	if err != nil {
		u.logger.WithError(err).WithField("application_id", app.ID).Warn("interview question generation failed, using bank")
		return fallback
	}
	res := gjson.Parse(raw)
	q := interview.Question{
		Text: strings.TrimSpace(res.Get("question_text").String()),
		Type: interview.QuestionType(res.Get("type").String()),
	}
	if q.Text == "" {
		return fallback
	}
	return q
}

func questionPrompt(j job.Job, cv string, iv interview.Interview, idx int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are interviewing a student for %q at %s. Ask question %d of %d. ", j.Title, j.CompanyName, idx+1, interview.MaxQuestions)
	b.WriteString("Mix technical, behavioral and situational questions and build on earlier answers. ")
	b.WriteString("Respond with JSON {\"question_text\": ..., \"type\": \"technical|behavioral|situational\"}.\n\n")
	fmt.Fprintf(&b, "JOB DESCRIPTION:\n%s\n\n", clip(j.Description, 3000))
	if cv != "" {
		fmt.Fprintf(&b, "CV:\n%s\n\n", clip(cv, 6000))
	}
	if t := iv.Transcript(); t != "" {
		fmt.Fprintf(&b, "TRANSCRIPT SO FAR:\n%s", t)
	}
	return b.String()
}

func (u *Interviews) GenerateReport(ctx context.Context, actor Actor, applicationID uuid.UUID) (interview.Report, error) {
	app, iv, err := u.ownInterview(ctx, actor, applicationID)
	if err != nil {
		return interview.Report{}, err
	}
	if iv.Status != interview.StatusCompleted {
		return interview.Report{}, interviewError(interview.ErrNotCompleted)
	}
	if iv.ReportGenerated {
		rep, err := u.interviews.GetReport(ctx, iv.ID)
		if err == nil {
			return rep, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return interview.Report{}, internal(err)
		}
	}
	if u.llm == nil {
		return interview.Report{}, fmt.Errorf("%w: interview reports require the language model", ErrUnavailable)
	}
	return u.generate(ctx, app, iv)
}

// generate produces and stores the report. When another request stored one
// first, that report is returned instead.
func (u *Interviews) generate(ctx context.Context, app job.Application, iv interview.Interview) (interview.Report, error) {
	log := u.logger.WithFields(logrus.Fields{"component": "interviews", "interview_id": iv.ID})
	j, err := u.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return interview.Report{}, notFound(err, "job", job.ErrNotFound)
	}

	raw, err := u.llm.GenerateJSON(ctx, llm.SchemaInterviewReport, reportPrompt(j, iv))
	if err != nil {
		log.WithError(err).Warn("interview report generation failed")
		return interview.Report{}, fmt.Errorf("%w: report could not be generated", ErrUnavailable)
	}
	rep := parseInterviewReport(raw)
	rep.Version = u.llm.Model()

	created, err := u.interviews.SaveReport(ctx, iv, rep)
	if err != nil {
		return interview.Report{}, internal(err)
	}
	if !created {
		existing, err := u.interviews.GetReport(ctx, iv.ID)
		if err != nil {
			return interview.Report{}, notFound(err, "report")
		}
		return existing, nil
	}
	log.Info("interview report stored")

	team, err := u.orgs.ListCompanyEmployerIDs(ctx, app.CompanyID)
	if err != nil {
		log.WithError(err).Warn("report notification skipped")
		return rep, nil
	}
	u.notify.send(team, ws.EventInterviewReportReady, map[string]any{
		"application_id": app.ID,
		"interview_id":   iv.ID,
		"job_id":         app.JobID,
		"fit_score":      rep.FitScore,
	})
	return rep, nil
}

func parseInterviewReport(raw string) interview.Report {
	res := gjson.Parse(raw)
	return interview.Report{
		Summary:             res.Get("summary").String(),
		Strengths:           stringsAt(res, "strengths"),
		Weaknesses:          stringsAt(res, "weaknesses"),
		FitScore:            int(res.Get("fit_score").Int()),
		CultureFitScore:     int(res.Get("culture_fit_score").Int()),
		CommunicationScore:  int(res.Get("communication_score").Int()),
		TechnicalDepthScore: int(res.Get("technical_depth_score").Int()),
		SuggestedNextStep:   res.Get("suggested_next_step").String(),
		Rationale:           res.Get("rationale").String(),
		FollowUpQuestions:   stringsAt(res, "follow_up_questions"),
	}
}

func reportPrompt(j job.Job, iv interview.Interview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assess this screening interview for %q at %s. Score fit, culture fit, communication and technical depth from 0 to 100, ", j.Title, j.CompanyName)
	b.WriteString("list strengths and weaknesses, suggest a next step (advance, hold or reject) with a rationale, and propose follow-up questions. Respond with JSON only.\n\n")
	fmt.Fprintf(&b, "JOB DESCRIPTION:\n%s\n\nTRANSCRIPT:\n%s", clip(j.Description, 3000), iv.Transcript())
	return b.String()
}

func (u *Interviews) GetReport(ctx context.Context, actor Actor, applicationID uuid.UUID) (interview.Report, error) {
	app, err := u.apps.GetByID(ctx, applicationID)
	if err != nil {
		return interview.Report{}, notFound(err, "application", job.ErrApplicationNotFound)
	}
	if err := canViewApplication(ctx, u.users, actor, app); err != nil {
		if errors.Is(err, ErrForbidden) && actor.Is(user.RoleStudent) {
			return interview.Report{}, fmt.Errorf("%w: application", ErrNotFound)
		}
		return interview.Report{}, err
	}
	iv, err := u.interviews.GetByApplication(ctx, applicationID)
	if err != nil {
		return interview.Report{}, notFound(err, "interview", interview.ErrNotFound)
	}
	rep, err := u.interviews.GetReport(ctx, iv.ID)
	if err != nil {
		return interview.Report{}, notFound(err, "report")
	}
	return rep, nil
}
