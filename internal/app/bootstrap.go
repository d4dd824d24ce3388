package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/sirupsen/logrus"

	"careerhub/internal/config"
	"careerhub/internal/delivery/http/handler"
	"careerhub/internal/delivery/http/middleware"
	"careerhub/internal/delivery/http/routes"
	v1 "careerhub/internal/delivery/http/routes/v1"
	"careerhub/internal/pkg/jwt"
	"careerhub/internal/ws"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the fiber app around already-constructed usecases. Tests
// call it with mocks.
func New(cfg config.Config, logger *logrus.Logger, uc Usecases, tokens jwt.Service, hub *ws.Hub) *fiber.App {
	f := fiber.New(fiber.Config{
		AppName:         cfg.App.AppName,
		BodyLimit:       (cfg.App.MaxUploadMB + 1) << 20,
		StructValidator: middleware.NewStructValidator(),
	})

	registerGlobalMiddleware(f, cfg, logger)

	guards := handler.NewGuards(middleware.NewAuthMiddleware(tokens))
	routes.NewRegistry(newHandlers(uc, tokens, hub, logger), guards).Register(f)

	return f
}

// Bootstrap connects the infrastructure and returns the app plus its
// cleanup function.
func Bootstrap(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	c.Start(ctx)

	f := New(cfg, logger, c.Usecases(), c.JWT, c.Hub)
	return &App{Fiber: f, Container: c}, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, cfg config.Config, logger *logrus.Logger) {
	if app == nil {
		return
	}

	accessLog := middleware.NewAccessLogMiddleware(logger)
	app.Use(accessLog.Middleware())

	corsCfg := cors.Config{
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
	}
	if len(cfg.App.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.App.CORSOrigins
		corsCfg.AllowCredentials = true
	}
	app.Use(cors.New(corsCfg))

	errMw := middleware.NewErrorMiddleware(logger)
	app.Use(errMw.Middleware())
}

// newHandlers skips usecases left nil so tests can mount a subset.
func newHandlers(uc Usecases, tokens jwt.Service, hub *ws.Hub, logger *logrus.Logger) v1.Handlers {
	var h v1.Handlers
	if uc.Health != nil {
		h.Health = handler.NewHealthHandler(uc.Health)
	}
	if uc.Auth != nil {
		h.Auth = handler.NewAuthHandler(uc.Auth)
	}
	if uc.Users != nil {
		h.Users = handler.NewUserHandler(uc.Users)
	}
	if uc.Directory != nil {
		h.Directory = handler.NewDirectoryHandler(uc.Directory)
	}
	if uc.Jobs != nil {
		h.Jobs = handler.NewJobsHandler(uc.Jobs)
	}
	if uc.Drafts != nil {
		h.Drafts = handler.NewDraftHandler(uc.Drafts)
	}
	if uc.Analysis != nil {
		h.Analysis = handler.NewAnalysisHandler(uc.Analysis)
	}
	if uc.Applications != nil && uc.Interviews != nil {
		h.Applications = handler.NewApplicationHandler(uc.Applications, uc.Interviews)
	}
	if uc.Resumes != nil {
		h.Resumes = handler.NewResumeHandler(uc.Resumes)
	}
	if uc.CareerFairs != nil {
		h.CareerFairs = handler.NewCareerFairHandler(uc.CareerFairs)
	}
	if uc.Employer != nil {
		h.Employer = handler.NewEmployerHandler(uc.Employer)
	}
	if uc.University != nil {
		h.University = handler.NewUniversityHandler(uc.University)
	}
	if uc.Connections != nil {
		h.Connections = handler.NewConnectionHandler(uc.Connections)
	}
	if hub != nil {
		h.WS = ws.NewHandler(hub, tokens, logger)
	}
	return h
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
