// Package config holds the engine configuration surface shared by the scorer,
// parser, planner and analyzer.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const weightSumTolerance = 1e-9

// ConfigurationError reports an invalid engine configuration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

type Weights struct {
	Skill      float64 `mapstructure:"skill" json:"skill" validate:"gte=0,lte=1"`
	Preferred  float64 `mapstructure:"preferred" json:"preferred" validate:"gte=0,lte=1"`
	Experience float64 `mapstructure:"experience" json:"experience" validate:"gte=0,lte=1"`
}

func (w Weights) Sum() float64 {
	return w.Skill + w.Preferred + w.Experience
}

type Engine struct {
	// SkillSynonyms maps a canonical skill name to its aliases.
	SkillSynonyms         map[string][]string `mapstructure:"skill-synonyms" json:"skill_synonyms"`
	ScoreWeights          Weights             `mapstructure:"score-weights" json:"score_weights"`
	PreferredScoreCap     float64             `mapstructure:"preferred-score-cap" json:"preferred_score_cap" validate:"gte=0,lte=1"`
	QuestionBudgetDefault int                 `mapstructure:"question-budget-default" json:"question_budget_default" validate:"gte=1,lte=100"`
	MinAnswerSignalLen    int                 `mapstructure:"min-answer-signal-len" json:"min_answer_signal_len" validate:"gte=0"`
	PositionDecay         float64             `mapstructure:"position-decay" json:"position_decay" validate:"gt=0,lte=1"`
	Probes                []string            `mapstructure:"probes" json:"probes" validate:"min=1,dive,required"`
	GatewayTimeout        time.Duration       `mapstructure:"gateway-timeout" json:"gateway_timeout" validate:"gte=0"`
	ConsistencyPenalty    float64             `mapstructure:"consistency-penalty" json:"consistency_penalty" validate:"gte=0,lte=1"`
}

// Default returns the engine configuration used when nothing is overridden.
func Default() Engine {
	return Engine{
		SkillSynonyms: map[string][]string{},
		ScoreWeights: Weights{
			Skill:      0.6,
			Preferred:  0.2,
			Experience: 0.2,
		},
		PreferredScoreCap:     0.2,
		QuestionBudgetDefault: 8,
		MinAnswerSignalLen:    40,
		PositionDecay:         0.85,
		Probes:                []string{"system design", "conflict handling", "learning habits"},
		GatewayTimeout:        10 * time.Second,
		ConsistencyPenalty:    0.2,
	}
}

var validate = validator.New()

// Validate checks ranges and that the score weights sum to 1.
func (e *Engine) Validate() error {
	if e == nil {
		return &ConfigurationError{Reason: "engine configuration is required"}
	}

	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return &ConfigurationError{
				Field:  first.Namespace(),
				Reason: fmt.Sprintf("failed on %q rule (value %v)", first.Tag(), first.Value()),
			}
		}
		return &ConfigurationError{Reason: err.Error()}
	}

	if sum := e.ScoreWeights.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return &ConfigurationError{
			Field:  "score-weights",
			Reason: fmt.Sprintf("weights must sum to 1, got %g", sum),
		}
	}

	for canonical := range e.SkillSynonyms {
		if strings.TrimSpace(canonical) == "" {
			return &ConfigurationError{Field: "skill-synonyms", Reason: "canonical skill name must not be empty"}
		}
	}

	return nil
}
