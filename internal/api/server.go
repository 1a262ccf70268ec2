// Package api exposes the engine over HTTP. Handlers only decode requests,
// call the engine components and encode their results.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/analysis"
	"github.com/spigell/hire-engine/internal/interview"
	"github.com/spigell/hire-engine/internal/jobspec"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/normalizer"
	"github.com/spigell/hire-engine/internal/scoring"
	"github.com/spigell/hire-engine/internal/store"
)

const appName = "hire-engine"

// Archiver stores a completed session with its report outside the primary store.
type Archiver interface {
	Archive(ctx context.Context, session *model.InterviewSession, report *model.AssessmentReport) error
}

// Deps are the engine components served by the API. Archiver may be nil.
type Deps struct {
	Stores     store.Stores
	Normalizer *normalizer.Normalizer
	Parser     *jobspec.Parser
	Scorer     *scoring.Scorer
	Planner    *interview.Planner
	Analyzer   *analysis.Analyzer
	Archiver   Archiver
	Logger     *zap.Logger
}

type Server struct {
	deps   Deps
	app    *fiber.App
	logger *zap.Logger
}

func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{deps: deps, logger: log}
	s.app = fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())
	s.app.Use(s.logRequests)
	s.routes()

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", zap.String("listen", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")

	api.Post("/profiles", s.createProfile)
	api.Get("/profiles/:id", s.getProfile)
	api.Get("/profiles/:id/recommendations", s.recommendJobs)

	api.Post("/jobs", s.createJob)
	api.Get("/jobs/:id", s.getJob)
	api.Get("/jobs/:id/ranking", s.rankJob)
	api.Get("/jobs/:id/stats", s.jobStats)

	api.Post("/match", s.match)

	api.Post("/sessions", s.startSession)
	api.Get("/sessions/:id", s.getSession)
	api.Post("/sessions/:id/next", s.nextQuestion)
	api.Post("/sessions/:id/answer", s.submitAnswer)
	api.Post("/sessions/:id/end", s.endSession)
	api.Post("/sessions/:id/report", s.createReport)
	api.Get("/sessions/:id/report", s.getReport)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = statusOf(err)
	}

	s.logger.Debug("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
	)
	return err
}
