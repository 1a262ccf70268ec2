package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/analysis"
	"github.com/spigell/hire-engine/internal/interview"
	"github.com/spigell/hire-engine/internal/logger"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/schema"
	"github.com/spigell/hire-engine/internal/store"
)

var validate = validator.New()

type profileRequest struct {
	Text string          `json:"text" validate:"max=1000000"`
	Hint json.RawMessage `json:"hint"`
}

type jobRequest struct {
	Text string `json:"text" validate:"required,max=1000000"`
}

type matchRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
	JobID       string `json:"job_id" validate:"required"`
}

type sessionRequest struct {
	CandidateID     string   `json:"candidate_id" validate:"required"`
	JobID           string   `json:"job_id"`
	FocusAreas      []string `json:"focus_areas" validate:"dive,max=200"`
	CustomQuestions []string `json:"custom_questions" validate:"dive,max=2000"`
	QuestionBudget  int      `json:"question_budget" validate:"gte=0,lte=100"`
}

type answerRequest struct {
	Answer string `json:"answer" validate:"max=100000"`
}

type endRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type rankingQuery struct {
	Limit int `query:"limit" validate:"gte=0"`
}

// bind decodes the JSON body into v and validates it.
func bind(c *fiber.Ctx, v any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(v); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		}
	}
	return validate.Struct(v)
}

func (s *Server) createProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var hint *model.ProfileHint
	if raw := bytes.TrimSpace(req.Hint); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		decoded, err := schema.DecodeHint(raw)
		if err != nil {
			return err
		}
		hint = decoded
	}

	profile, err := s.deps.Normalizer.Normalize(c.UserContext(), req.Text, hint)
	if err != nil {
		return err
	}
	if err := s.deps.Stores.Profiles.PutProfile(c.UserContext(), profile); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	profile, err := s.deps.Stores.Profiles.GetProfile(c.UserContext(), model.CandidateID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

func (s *Server) recommendJobs(c *fiber.Ctx) error {
	var q rankingQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid query: %v", err))
	}
	if err := validate.Struct(q); err != nil {
		return err
	}

	ctx := c.UserContext()
	profile, err := s.deps.Stores.Profiles.GetProfile(ctx, model.CandidateID(c.Params("id")))
	if err != nil {
		return err
	}
	requirements, err := s.deps.Stores.Jobs.ListRequirements(ctx)
	if err != nil {
		return err
	}

	recommendations, err := s.deps.Scorer.RecommendJobs(ctx, profile, requirements, q.Limit)
	if err != nil {
		return err
	}
	return c.JSON(recommendations)
}

func (s *Server) createJob(c *fiber.Ctx) error {
	var req jobRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	requirement := s.deps.Parser.Parse(req.Text)
	if err := s.deps.Stores.Jobs.PutRequirement(c.UserContext(), requirement); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(requirement)
}

func (s *Server) getJob(c *fiber.Ctx) error {
	requirement, err := s.deps.Stores.Jobs.GetRequirement(c.UserContext(), model.JobID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(requirement)
}

func (s *Server) rankJob(c *fiber.Ctx) error {
	var q rankingQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid query: %v", err))
	}
	if err := validate.Struct(q); err != nil {
		return err
	}

	ctx := c.UserContext()
	requirement, err := s.deps.Stores.Jobs.GetRequirement(ctx, model.JobID(c.Params("id")))
	if err != nil {
		return err
	}
	profiles, err := s.deps.Stores.Profiles.ListProfiles(ctx)
	if err != nil {
		return err
	}

	results, err := s.deps.Scorer.Rank(ctx, requirement, profiles, q.Limit)
	if err != nil {
		return err
	}
	return c.JSON(results)
}

func (s *Server) jobStats(c *fiber.Ctx) error {
	reports, err := s.deps.Stores.Reports.ListReportsByJob(c.UserContext(), model.JobID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(analysis.CompareReports(reports))
}

func (s *Server) match(c *fiber.Ctx) error {
	var req matchRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	profile, err := s.deps.Stores.Profiles.GetProfile(ctx, model.CandidateID(req.CandidateID))
	if err != nil {
		return err
	}
	requirement, err := s.deps.Stores.Jobs.GetRequirement(ctx, model.JobID(req.JobID))
	if err != nil {
		return err
	}

	result, err := s.deps.Scorer.Score(profile, requirement)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) startSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	profile, err := s.deps.Stores.Profiles.GetProfile(ctx, model.CandidateID(req.CandidateID))
	if err != nil {
		return err
	}

	start := interview.StartRequest{
		Profile:         profile,
		FocusAreas:      req.FocusAreas,
		CustomQuestions: req.CustomQuestions,
		QuestionBudget:  req.QuestionBudget,
	}
	if req.JobID != "" {
		requirement, err := s.deps.Stores.Jobs.GetRequirement(ctx, model.JobID(req.JobID))
		if err != nil {
			return err
		}
		start.Requirement = requirement
	}

	session, err := s.deps.Planner.Start(ctx, start)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (s *Server) getSession(c *fiber.Ctx) error {
	session, err := s.deps.Planner.Get(c.UserContext(), model.SessionID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func (s *Server) nextQuestion(c *fiber.Ctx) error {
	turn, err := s.deps.Planner.NextQuestion(c.UserContext(), model.SessionID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(turn)
}

func (s *Server) submitAnswer(c *fiber.Ctx) error {
	var req answerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := s.deps.Planner.SubmitAnswer(c.UserContext(), model.SessionID(c.Params("id")), req.Answer)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func (s *Server) endSession(c *fiber.Ctx) error {
	var req endRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := s.deps.Planner.End(c.UserContext(), model.SessionID(c.Params("id")), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// createReport analyzes a completed session once and archives it when an
// archiver is configured. Archive failures are logged, the report stays stored.
func (s *Server) createReport(c *fiber.Ctx) error {
	ctx := c.UserContext()

	session, err := s.deps.Planner.Get(ctx, model.SessionID(c.Params("id")))
	if err != nil {
		return err
	}
	if _, err := s.deps.Stores.Reports.GetReport(ctx, session.ID); err == nil {
		return fmt.Errorf("session %s: %w", session.ID, store.ErrReportExists)
	}

	profile, err := s.deps.Stores.Profiles.GetProfile(ctx, session.CandidateID)
	if err != nil {
		return err
	}

	report, err := s.deps.Analyzer.Analyze(ctx, session, profile)
	if err != nil {
		return err
	}
	if err := s.deps.Stores.Reports.PutReport(ctx, report); err != nil {
		return err
	}

	if s.deps.Archiver != nil {
		if err := s.deps.Archiver.Archive(ctx, session, report); err != nil {
			log := logger.WithFields(s.logger, logger.SessionFields(session.ID.String(), session.CandidateID.String(), session.JobID.String())...)
			log.Warn("archiving session failed", zap.Error(err))
		}
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (s *Server) getReport(c *fiber.Ctx) error {
	report, err := s.deps.Stores.Reports.GetReport(c.UserContext(), model.SessionID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(report)
}
