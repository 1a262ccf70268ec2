// Package analysis turns a completed interview transcript into an assessment report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hire-engine/internal/ai"
	"github.com/spigell/hire-engine/internal/config"
	"github.com/spigell/hire-engine/internal/logger"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/signals"
	"github.com/spigell/hire-engine/internal/skills"
)

var ErrSessionNotCompleted = errors.New("session is not completed")

const (
	precision     = 1e6
	claimsByModel = "model"
	claimsByRules = "rules"
)

type band struct {
	min     float64
	verdict string
}

var verdicts = []band{
	{0.85, "excellent"},
	{0.70, "good"},
	{0.50, "satisfactory"},
	{0, "below expectations"},
}

const verdictNotAssessed = "not assessed"

// Analyzer is stateless apart from its configuration and safe for concurrent use.
type Analyzer struct {
	cfg     config.Engine
	table   *skills.Table
	gateway ai.Gateway
	logger  *zap.Logger
	now     func() time.Time
}

// New builds an analyzer. With a nil gateway claims come from the rule-based extractor.
func New(cfg config.Engine, table *skills.Table, gateway ai.Gateway, log *zap.Logger) *Analyzer {
	if table == nil {
		table = skills.NewTable(cfg.SkillSynonyms)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, table: table, gateway: gateway, logger: log, now: time.Now}
}

func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

type turnResult struct {
	turn           model.Turn
	strength       float64
	contradictions []string
}

// Analyze scores every focus area recorded on the session. Scores depend only on
// the transcript, the profile and the configuration; model output only adds claims.
func (a *Analyzer) Analyze(ctx context.Context, session *model.InterviewSession, profile *model.CandidateProfile) (*model.AssessmentReport, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}
	if session.State != model.StateCompleted {
		return nil, fmt.Errorf("session %s in state %s: %w", session.ID, session.State, ErrSessionNotCompleted)
	}

	owned := a.termsOf(profile)
	results := make([]turnResult, 0, len(session.Turns))
	answers := make([]string, 0, len(session.Turns))
	for _, t := range session.Turns {
		if !t.Answered {
			continue
		}
		results = append(results, turnResult{
			turn:           t,
			strength:       signals.Strength(t.Answer, a.table),
			contradictions: a.contradictions(t.Answer, owned),
		})
		answers = append(answers, t.Answer)
	}

	report := &model.AssessmentReport{
		SessionID:         session.ID,
		CandidateID:       session.CandidateID,
		JobID:             session.JobID,
		Competencies:      make([]model.CompetencyScore, 0, len(session.FocusAreas)),
		PersonalityTraits: signals.Traits(answers...),
		Flags:             make([]model.Flag, 0),
		CreatedAt:         a.now(),
	}

	report.Flags = append(report.Flags, a.turnFlags(results)...)

	var assessed []float64
	for _, area := range session.FocusAreas {
		cs := a.competency(area, results)
		if cs.Score == nil {
			report.Flags = append(report.Flags, model.Flag{
				Kind: model.FlagNotAssessed,
				Note: fmt.Sprintf("no question covered %q", area),
			})
		} else {
			assessed = append(assessed, *cs.Score)
		}
		report.Competencies = append(report.Competencies, cs)
	}

	if profile != nil {
		for _, note := range profile.Notes {
			if strings.Contains(strings.ToLower(note), "unparsable") {
				report.Flags = append(report.Flags, model.Flag{Kind: model.FlagUnparsableDate, Note: note})
			}
		}
	}

	// Sessions without focus areas still get an overall score from all answers.
	if len(assessed) == 0 && len(session.FocusAreas) == 0 {
		for _, r := range results {
			assessed = append(assessed, a.penalize(r.strength, len(r.contradictions)))
		}
	}
	if len(assessed) > 0 {
		report.OverallScore = model.FloatPtr(round(mean(assessed)))
	}
	report.Verdict, report.Summary = summarize(report.OverallScore, len(assessed), len(session.FocusAreas))

	report.Claims = a.claims(ctx, session, results)

	logger.WithFields(a.logger, logger.SessionFields(session.ID.String(), session.CandidateID.String(), session.JobID.String())...).
		Info("interview analyzed",
			zap.Int("competencies", len(report.Competencies)),
			zap.Int("flags", len(report.Flags)),
			zap.String("verdict", report.Verdict),
		)

	return report, nil
}

func (a *Analyzer) competency(area string, results []turnResult) model.CompetencyScore {
	cs := model.CompetencyScore{Competency: area, Evidence: []int{}}
	key := a.table.Key(area)

	var strengths []float64
	contradictions := 0
	for _, r := range results {
		if r.turn.Target == "" || a.table.Key(r.turn.Target) != key {
			continue
		}
		cs.Evidence = append(cs.Evidence, r.turn.Index)
		strengths = append(strengths, r.strength)
		contradictions += len(r.contradictions)
	}
	if len(strengths) == 0 {
		return cs
	}

	cs.Score = model.FloatPtr(round(a.penalize(mean(strengths), contradictions)))
	return cs
}

func (a *Analyzer) penalize(score float64, contradictions int) float64 {
	return math.Max(0, math.Min(1, score-a.cfg.ConsistencyPenalty*float64(contradictions)))
}

func (a *Analyzer) turnFlags(results []turnResult) []model.Flag {
	var flags []model.Flag
	for _, r := range results {
		idx := model.IntPtr(r.turn.Index)
		if n := utf8.RuneCountInString(r.turn.Answer); n < a.cfg.MinAnswerSignalLen {
			flags = append(flags, model.Flag{
				Kind:      model.FlagShortAnswer,
				TurnIndex: idx,
				Note:      fmt.Sprintf("answer has %d characters, below the minimum of %d", n, a.cfg.MinAnswerSignalLen),
			})
		}
		for _, tech := range r.contradictions {
			flags = append(flags, model.Flag{
				Kind:      model.FlagContradiction,
				TurnIndex: idx,
				Note:      fmt.Sprintf("claims experience with %s, which the profile never mentions", tech),
			})
		}
		for _, claim := range signals.UnverifiedClaims(r.turn.Answer) {
			flags = append(flags, model.Flag{
				Kind:      model.FlagUnverifiedClaim,
				TurnIndex: idx,
				Note:      fmt.Sprintf("claim without a measurable result: %q", claim),
			})
		}
	}
	return flags
}

// termsOf collects the canonical keys of everything the profile lists plus
// its lowercased text for looser mentions.
func (a *Analyzer) termsOf(profile *model.CandidateProfile) *profileTerms {
	if profile == nil {
		return nil
	}
	terms := &profileTerms{keys: map[string]struct{}{}, text: strings.ToLower(profile.Text())}
	for _, s := range profile.Skills {
		terms.keys[a.table.Key(s.Name)] = struct{}{}
	}
	for _, c := range profile.Certifications {
		terms.keys[a.table.Key(c)] = struct{}{}
	}
	for _, found := range a.table.Find(profile.Text()) {
		terms.keys[a.table.Key(found)] = struct{}{}
	}
	return terms
}

type profileTerms struct {
	keys map[string]struct{}
	text string
}

// contradictions returns technologies the answer claims in a non-negated
// sentence that the profile never mentions.
func (a *Analyzer) contradictions(answer string, terms *profileTerms) []string {
	if terms == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, sentence := range signals.Sentences(answer) {
		if signals.Negated(sentence) {
			continue
		}
		for _, tech := range a.table.Find(sentence) {
			key := a.table.Key(tech)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, ok := terms.keys[key]; ok {
				continue
			}
			if strings.Contains(terms.text, strings.ToLower(tech)) {
				continue
			}
			out = append(out, tech)
		}
	}
	return out
}

// claims extracts claims per answered turn through the gateway, falling back to
// the rule-based extractor for any turn the gateway cannot serve.
func (a *Analyzer) claims(ctx context.Context, session *model.InterviewSession, results []turnResult) []model.Claim {
	perTurn := make([][]model.Claim, len(results))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range results {
		g.Go(func() error {
			perTurn[i] = a.turnClaims(gCtx, session, r.turn)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.Claim, 0)
	for _, c := range perTurn {
		out = append(out, c...)
	}
	return out
}

func (a *Analyzer) turnClaims(ctx context.Context, session *model.InterviewSession, t model.Turn) []model.Claim {
	if a.gateway != nil {
		resp, err := ai.Call(ctx, a.gateway, a.cfg.GatewayTimeout, ai.Request{
			Task: ai.TaskExtractClaims,
			Context: map[string]any{
				"question": t.Question,
				"answer":   t.Answer,
				"target":   t.Target,
				"role":     session.Role,
			},
		})
		if err == nil {
			out := make([]model.Claim, 0, len(resp.Claims))
			for _, c := range resp.Claims {
				out = append(out, model.Claim{TurnIndex: t.Index, Claim: c.Claim, Confidence: c.Confidence, Source: claimsByModel})
			}
			return out
		}
		a.logger.Warn("claim extraction failed, using rules",
			zap.String("task", string(ai.TaskExtractClaims)),
			zap.Int("turn", t.Index),
			zap.Error(err),
		)
	}

	var out []model.Claim
	for _, c := range signals.Claims(t.Answer) {
		out = append(out, model.Claim{TurnIndex: t.Index, Claim: c.Text, Confidence: c.Confidence, Source: claimsByRules})
	}
	return out
}

func summarize(overall *float64, assessed, declared int) (string, string) {
	if overall == nil {
		return verdictNotAssessed, "No competency could be assessed from the transcript."
	}

	verdict := verdicts[len(verdicts)-1].verdict
	for _, b := range verdicts {
		if *overall >= b.min {
			verdict = b.verdict
			break
		}
	}

	summary := fmt.Sprintf("Overall score: %d/100. Performance was %s.", int(math.Round(*overall*100)), verdict)
	if declared > 0 {
		summary += fmt.Sprintf(" %d of %d focus areas assessed.", assessed, declared)
	}
	return verdict, summary
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round(v float64) float64 {
	return math.Round(v*precision) / precision
}
