package v1

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/handler"
	"careerhub/internal/ws"
)

type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Directory    *handler.DirectoryHandler
	Jobs         *handler.JobsHandler
	Drafts       *handler.DraftHandler
	Analysis     *handler.AnalysisHandler
	Applications *handler.ApplicationHandler
	Resumes      *handler.ResumeHandler
	CareerFairs  *handler.CareerFairHandler
	Employer     *handler.EmployerHandler
	University   *handler.UniversityHandler
	Connections  *handler.ConnectionHandler
	WS           *ws.Handler
}

func Register(r fiber.Router, h Handlers, g handler.Guards) {
	if r == nil {
		return
	}

	if h.Health != nil {
		h.Health.RegisterRoutes(r)
	}

	if h.Auth != nil {
		authGroup := r.Group("/auth")
		h.Auth.RegisterRoutes(authGroup, g.Auth)
	}

	RegisterUsers(r, h, g)
	RegisterJobs(r, h, g)
	RegisterCareerFairs(r, h, g)
	RegisterWorkspaces(r, h, g)

	if h.WS != nil {
		h.WS.RegisterRoutes(r)
	}
}
