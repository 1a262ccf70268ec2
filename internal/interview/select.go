package interview

import (
	"strings"

	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/signals"
)

// Choice describes the next question before it is phrased.
type Choice struct {
	Kind   model.QuestionKind
	Target string
	// Text is set for custom questions, which are asked verbatim.
	Text       string
	FollowUpOf *int
	Claim      string
}

// Select picks the next question from the session history alone. It returns
// false when nothing is left to ask. Priority: caller questions in order, then
// uncovered focus areas, then the probe rotation. Once a whole probe cycle has
// been asked, a follow-up on an unverified claim in the latest answer goes
// before the next cycle starts.
func Select(s *model.InterviewSession, probes []string) (Choice, bool) {
	if s == nil || s.RemainingQuestionBudget <= 0 {
		return Choice{}, false
	}

	var custom, probed int
	for _, t := range s.Turns {
		switch t.Kind {
		case model.KindCustom:
			custom++
		case model.KindProbe:
			probed++
		}
	}

	if custom < len(s.CustomQuestions) {
		return Choice{Kind: model.KindCustom, Text: s.CustomQuestions[custom]}, true
	}

	for _, area := range s.FocusAreas {
		if !covered(s.Turns, area) {
			return Choice{Kind: model.KindFocus, Target: area}, true
		}
	}

	cycleDone := len(probes) == 0 || (probed > 0 && probed%len(probes) == 0)
	if cycleDone {
		if c, ok := followUp(s.Turns); ok {
			return c, true
		}
	}
	if len(probes) == 0 {
		return Choice{}, false
	}

	return Choice{Kind: model.KindProbe, Target: probes[probed%len(probes)]}, true
}

func covered(turns []model.Turn, area string) bool {
	for _, t := range turns {
		if t.Kind != model.KindCustom && strings.EqualFold(strings.TrimSpace(t.Target), strings.TrimSpace(area)) {
			return true
		}
	}
	return false
}

// followUp drills into the latest unverified claim of the most recent answer.
// A follow-up never gets a follow-up of its own.
func followUp(turns []model.Turn) (Choice, bool) {
	if len(turns) == 0 {
		return Choice{}, false
	}
	last := turns[len(turns)-1]
	if !last.Answered || last.Kind == model.KindFollowUp {
		return Choice{}, false
	}

	claims := signals.UnverifiedClaims(last.Answer)
	if len(claims) == 0 {
		return Choice{}, false
	}

	return Choice{
		Kind:       model.KindFollowUp,
		Target:     last.Target,
		FollowUpOf: model.IntPtr(last.Index),
		Claim:      claims[len(claims)-1],
	}, true
}
