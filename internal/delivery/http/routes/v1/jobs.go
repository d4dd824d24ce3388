package v1

import (
	"github.com/gofiber/fiber/v3"

	"careerhub/internal/delivery/http/handler"
)

// RegisterJobs covers jobs, drafts, applications, resumes and analysis.
func RegisterJobs(r fiber.Router, h Handlers, g handler.Guards) {
	if r == nil {
		return
	}

	if h.Jobs != nil {
		h.Jobs.RegisterRoutes(r, g)
	}
	if h.Analysis != nil {
		h.Analysis.RegisterRoutes(r, g)
	}
	if h.Drafts != nil {
		h.Drafts.RegisterRoutes(r, g)
	}
	if h.Applications != nil {
		h.Applications.RegisterRoutes(r, g)
	}
	if h.Resumes != nil {
		h.Resumes.RegisterRoutes(r, g)
	}
}
