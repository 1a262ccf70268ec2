// Package interview drives an interview session one turn at a time.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/ai"
	"github.com/spigell/hire-engine/internal/config"
	"github.com/spigell/hire-engine/internal/logger"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/scoring"
	"github.com/spigell/hire-engine/internal/skills"
	"github.com/spigell/hire-engine/internal/store"
)

var (
	// ErrAnswerPending is returned when a question is requested while the previous one is unanswered.
	ErrAnswerPending  = errors.New("previous question has not been answered")
	ErrNoOpenQuestion = errors.New("no open question to answer")
)

const (
	reasonBudgetExhausted = "question budget exhausted"
	reasonNothingToAsk    = "no questions left to ask"
	reasonEndedByCaller   = "ended by candidate"
)

type Planner struct {
	cfg      config.Engine
	sessions store.SessionStore
	locker   Locker
	gateway  ai.Gateway
	scorer   *scoring.Scorer
	table    *skills.Table
	logger   *zap.Logger
	now      func() time.Time
}

// New builds a planner. A nil locker falls back to an in-process KeyedMutex and
// a nil gateway means every question comes from templates.
func New(cfg config.Engine, sessions store.SessionStore, locker Locker, gateway ai.Gateway, scorer *scoring.Scorer, table *skills.Table, log *zap.Logger) *Planner {
	if table == nil {
		table = skills.NewTable(cfg.SkillSynonyms)
	}
	if scorer == nil {
		scorer = scoring.New(cfg, table)
	}
	if locker == nil {
		locker = NewKeyedMutex()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{
		cfg:      cfg,
		sessions: sessions,
		locker:   locker,
		gateway:  gateway,
		scorer:   scorer,
		table:    table,
		logger:   log,
		now:      time.Now,
	}
}

func (p *Planner) WithClock(now func() time.Time) *Planner {
	p.now = now
	return p
}

type StartRequest struct {
	Profile *model.CandidateProfile
	// Requirement is nil for a generic practice session.
	Requirement     *model.JobRequirement
	FocusAreas      []string
	CustomQuestions []string
	// QuestionBudget of 0 means the configured default.
	QuestionBudget int
}

// Start creates an in-progress session. Focus areas are the requirement's
// unsatisfied skills followed by the caller's own, without duplicates.
func (p *Planner) Start(ctx context.Context, req StartRequest) (*model.InterviewSession, error) {
	if req.Profile == nil || req.Profile.ID.IsEmpty() {
		return nil, &model.MalformedInputError{Source: "session", Reason: "candidate profile is required"}
	}
	if req.QuestionBudget < 0 {
		return nil, &model.MalformedInputError{Source: "session", Reason: "question budget must not be negative"}
	}

	budget := req.QuestionBudget
	if budget == 0 {
		budget = p.cfg.QuestionBudgetDefault
	}

	var gaps []string
	session := &model.InterviewSession{
		ID:          model.NewSessionID(),
		CandidateID: req.Profile.ID,
		State:       model.StateNotStarted,
		Turns:       []model.Turn{},
	}
	if req.Requirement != nil {
		result, err := p.scorer.Score(req.Profile, req.Requirement)
		if err != nil {
			return nil, fmt.Errorf("score candidate: %w", err)
		}
		gaps = result.UnsatisfiedSkills()
		session.JobID = req.Requirement.ID
		session.Role = req.Requirement.Title
	}

	session.FocusAreas = p.focusAreas(gaps, req.FocusAreas)
	session.CustomQuestions = nonBlank(req.CustomQuestions)
	session.RemainingQuestionBudget = budget

	now := p.now()
	session.CreatedAt = now
	session.UpdatedAt = now
	if err := session.Transition(model.StateInProgress); err != nil {
		return nil, err
	}

	if err := p.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	p.sessionLogger(session).Info("interview session started",
		zap.Strings("focus_areas", session.FocusAreas),
		zap.Int("question_budget", budget),
	)
	return session, nil
}

// NextQuestion appends the next question to the session and spends one unit of budget.
func (p *Planner) NextQuestion(ctx context.Context, id model.SessionID) (*model.Turn, error) {
	var turn model.Turn
	err := p.mutate(ctx, id, func(s *model.InterviewSession) error {
		if s.OpenTurn() != nil {
			return ErrAnswerPending
		}

		choice, ok := Select(s, p.cfg.Probes)
		if !ok {
			reason := reasonNothingToAsk
			if s.RemainingQuestionBudget <= 0 {
				reason = reasonBudgetExhausted
			}
			if err := p.complete(s, reason); err != nil {
				return err
			}
			return errClosedAfterSave
		}

		turn = model.Turn{
			Index:      len(s.Turns),
			Kind:       choice.Kind,
			Target:     choice.Target,
			Question:   p.phrase(ctx, s, choice),
			FollowUpOf: choice.FollowUpOf,
			AskedAt:    p.now(),
		}
		s.Turns = append(s.Turns, turn)
		s.RemainingQuestionBudget--
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &turn, nil
}

// SubmitAnswer records the answer to the open question. The answer that spends
// the last unit of budget completes the session.
func (p *Planner) SubmitAnswer(ctx context.Context, id model.SessionID, answer string) (*model.InterviewSession, error) {
	return p.mutateAndReturn(ctx, id, func(s *model.InterviewSession) error {
		open := s.OpenTurn()
		if open == nil {
			return ErrNoOpenQuestion
		}
		open.Answer = strings.TrimSpace(answer)
		open.Answered = true
		open.AnsweredAt = p.now()

		if s.RemainingQuestionBudget <= 0 {
			return p.complete(s, reasonBudgetExhausted)
		}
		return nil
	})
}

// End completes the session early. An unanswered trailing question is withdrawn
// and its budget returned.
func (p *Planner) End(ctx context.Context, id model.SessionID, reason string) (*model.InterviewSession, error) {
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = reasonEndedByCaller
	}
	return p.mutateAndReturn(ctx, id, func(s *model.InterviewSession) error {
		if s.OpenTurn() != nil {
			s.Turns = s.Turns[:len(s.Turns)-1]
			s.RemainingQuestionBudget++
		}
		return p.complete(s, reason)
	})
}

func (p *Planner) Get(ctx context.Context, id model.SessionID) (*model.InterviewSession, error) {
	return p.sessions.GetSession(ctx, id)
}

// errClosedAfterSave lets a mutation persist a state change and still report
// the session as closed to the caller.
var errClosedAfterSave = errors.New("session closed")

func (p *Planner) mutateAndReturn(ctx context.Context, id model.SessionID, fn func(*model.InterviewSession) error) (*model.InterviewSession, error) {
	var out *model.InterviewSession
	err := p.mutate(ctx, id, func(s *model.InterviewSession) error {
		if err := fn(s); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// mutate loads the session under its lock, applies fn and saves the result.
func (p *Planner) mutate(ctx context.Context, id model.SessionID, fn func(*model.InterviewSession) error) error {
	unlock, err := p.locker.Lock(ctx, id.String())
	if err != nil {
		return err
	}
	defer unlock()

	s, err := p.sessions.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if s.Closed() {
		return &model.SessionClosedError{SessionID: s.ID, State: s.State}
	}

	fnErr := fn(s)
	if fnErr != nil && !errors.Is(fnErr, errClosedAfterSave) {
		return fnErr
	}

	s.UpdatedAt = p.now()
	if err := p.sessions.SaveSession(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if fnErr != nil {
		return &model.SessionClosedError{SessionID: s.ID, State: s.State}
	}
	return nil
}

func (p *Planner) complete(s *model.InterviewSession, reason string) error {
	if err := s.Transition(model.StateCompleted); err != nil {
		return err
	}
	s.EndedAt = p.now()
	s.EndReason = reason
	p.sessionLogger(s).Info("interview session completed",
		zap.String("reason", reason),
		zap.Int("turns", len(s.Turns)),
	)
	return nil
}

// phrase asks the gateway to word the question and falls back to a template
// when it is unavailable or slow.
func (p *Planner) phrase(ctx context.Context, s *model.InterviewSession, c Choice) string {
	fallback := templateQuestion(c, len(s.Turns))
	if c.Kind == model.KindCustom || p.gateway == nil {
		return fallback
	}

	resp, err := ai.Call(ctx, p.gateway, p.cfg.GatewayTimeout, ai.Request{
		Task:    ai.TaskGenerateQuestion,
		Context: questionContext(s, c, fallback),
	})
	if err != nil {
		p.sessionLogger(s).Warn("question generation failed, using template",
			zap.String("task", string(ai.TaskGenerateQuestion)),
			zap.String("kind", string(c.Kind)),
			zap.Error(err),
		)
		return fallback
	}
	question := strings.TrimSpace(resp.Question)
	if question == "" {
		return fallback
	}
	return question
}

func questionContext(s *model.InterviewSession, c Choice, fallback string) map[string]any {
	asked := make([]string, 0, len(s.Turns))
	for _, t := range s.Turns {
		asked = append(asked, t.Question)
	}
	out := map[string]any{
		"kind":             string(c.Kind),
		"target":           c.Target,
		"role":             s.Role,
		"focus_areas":      s.FocusAreas,
		"asked_questions":  asked,
		"example_question": fallback,
	}
	if c.Claim != "" {
		out["claim"] = c.Claim
	}
	if n := len(s.Turns); n > 0 {
		out["previous_answer"] = s.Turns[n-1].Answer
	}
	return out
}

func (p *Planner) focusAreas(gaps, explicit []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(gaps)+len(explicit))
	for _, area := range append(append([]string{}, gaps...), explicit...) {
		area = strings.TrimSpace(area)
		if area == "" {
			continue
		}
		key := p.table.Key(area)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, area)
	}
	return out
}

func (p *Planner) sessionLogger(s *model.InterviewSession) *zap.Logger {
	return logger.WithFields(p.logger, logger.SessionFields(s.ID.String(), s.CandidateID.String(), s.JobID.String())...)
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
