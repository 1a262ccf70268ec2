package normalizer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/skills"
)

// Stage extracts one part of the profile from a sectioned document.
type Stage interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, doc *Document, p *model.CandidateProfile) (Step, error)
}

// Deps aggregates dependencies shared across all stages.
type Deps struct {
	Table  *skills.Table
	Logger *zap.Logger
}

// Step describes the result of executing a stage.
type Step struct {
	Found int
	Notes int
}

// Status represents runtime information about a stage.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
}

type base struct {
	name    string
	enabled bool
	reason  string
}

func newBase(name string) base {
	return base{name: name, enabled: true}
}

func (b *base) Name() string { return b.name }

func (b *base) Disable(reason string) {
	b.enabled = false
	b.reason = reason
}

func (b *base) IsEnabled() bool { return b.enabled }

func (b *base) Status() Status {
	return Status{Name: b.name, Enabled: b.enabled, Reason: b.reason}
}

type statusProvider interface {
	Status() Status
}

// DisableByName marks a stage with the provided name as disabled while keeping it in the list.
func DisableByName(stages []Stage, name, reason string) {
	for _, stage := range stages {
		if stage.Name() == name {
			stage.Disable(reason)
		}
	}
}

// Run executes the enabled stages in order against the same profile.
func Run(ctx context.Context, deps Deps, stages []Stage, doc *Document, p *model.CandidateProfile) error {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !stage.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("stage disabled", zap.String("name", stage.Name()))
			}
			continue
		}

		notesBefore := len(p.Notes)
		info, err := stage.Apply(ctx, deps, doc, p)
		if err != nil {
			return fmt.Errorf("%s: %w", stage.Name(), err)
		}
		info.Notes = len(p.Notes) - notesBefore

		if deps.Logger != nil {
			deps.Logger.Debug("normalizer stage",
				zap.String("name", stage.Name()),
				zap.Int("found", info.Found),
				zap.Int("notes", info.Notes),
			)
		}
	}
	return nil
}

// Describe returns status entries for the provided stages.
func Describe(stages []Stage) []Status {
	statuses := make([]Status, 0, len(stages))
	for _, stage := range stages {
		if reporter, ok := stage.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}
		statuses = append(statuses, Status{Name: stage.Name(), Enabled: stage.IsEnabled()})
	}
	return statuses
}
