package app

import (
	"careerhub/internal/usecase"
	"careerhub/internal/ws"
)

// Usecases is the application layer wired to the container.
type Usecases struct {
	Health       usecase.HealthUsecase
	Auth         usecase.AuthUsecase
	Users        usecase.UserUsecase
	Directory    usecase.DirectoryUsecase
	Jobs         usecase.JobUsecase
	Drafts       usecase.DraftUsecase
	Analysis     usecase.AnalysisUsecase
	Applications usecase.ApplicationUsecase
	Interviews   usecase.InterviewUsecase
	Resumes      usecase.ResumeUsecase
	CareerFairs  usecase.CareerFairUsecase
	Employer     usecase.EmployerUsecase
	University   usecase.UniversityUsecase
	Connections  usecase.ConnectionUsecase
}

func (c *Container) Usecases() Usecases {
	r := c.Repos
	notify := usecase.Notifier(ws.Notify)
	jobs := c.JobUsecase()

	return Usecases{
		Health:       usecase.NewHealthUsecase(c.DB, c.Cache, c.Logger),
		Auth:         usecase.NewAuthUsecase(r.Users, r.Orgs, c.JWT),
		Users:        usecase.NewUserUsecase(r.Users, r.Orgs, r.Skills),
		Directory:    usecase.NewDirectoryUsecase(r.Orgs, r.Skills),
		Jobs:         jobs,
		Drafts:       usecase.NewDraftUsecase(c.Cache, r.Users, jobs, c.Fetcher, c.LLM, c.Logger),
		Analysis:     usecase.NewAnalysisUsecase(r.Jobs, r.Apps, r.Resumes, r.Analyses, r.Users, c.LLM, c.Logger),
		Applications: usecase.NewApplicationUsecase(r.Apps, r.Jobs, r.Resumes, r.Users, notify, c.Logger),
		Interviews: usecase.NewInterviewUsecase(usecase.InterviewDeps{
			Interviews: r.Interviews,
			Apps:       r.Apps,
			Jobs:       r.Jobs,
			Resumes:    r.Resumes,
			Orgs:       r.Orgs,
			Users:      r.Users,
			Tasks:      c.Pool,
			Notify:     notify,
			LLM:        c.LLM,
			Logger:     c.Logger,
		}),
		Resumes:     c.ResumeUsecase(),
		CareerFairs: usecase.NewCareerFairUsecase(r.Fairs, r.Jobs, r.Orgs, r.Users, notify, c.Logger),
		Employer:    usecase.NewEmployerUsecase(r.Users, r.Orgs, r.Jobs, r.Apps, r.Students, r.Dashboard, c.Logger),
		University:  usecase.NewUniversityUsecase(r.Users, r.Orgs, r.Fairs, r.Students, r.Dashboard, c.Logger),
		Connections: usecase.NewConnectionUsecase(r.Connections, r.Users, notify, c.Logger),
	}
}

func (c *Container) JobUsecase() *usecase.Jobs {
	r := c.Repos
	return usecase.NewJobUsecase(usecase.JobDeps{
		Jobs:     r.Jobs,
		Apps:     r.Apps,
		Resumes:  r.Resumes,
		Analyses: r.Analyses,
		Users:    r.Users,
		Skills:   r.Skills,
		Cache:    c.Cache,
		Tasks:    c.Pool,
		LLM:      c.LLM,
		Logger:   c.Logger,
	})
}

// ResumeUsecase is exposed on its own for the reparse command.
func (c *Container) ResumeUsecase() *usecase.Resumes {
	r := c.Repos
	return usecase.NewResumeUsecase(usecase.ResumeDeps{
		Resumes:  r.Resumes,
		Analyses: r.Analyses,
		Apps:     r.Apps,
		Users:    r.Users,
		Skills:   r.Skills,
		Files:    c.Files,
		Tasks:    c.Pool,
		Notify:   usecase.Notifier(ws.Notify),
		LLM:      c.LLM,
		MaxBytes: int64(c.Config.App.MaxUploadMB) << 20,
		Logger:   c.Logger,
	})
}
