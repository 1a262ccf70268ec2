package interview

import (
	"fmt"
	"strings"

	"github.com/spigell/hire-engine/internal/model"
)

var probeQuestions = map[string]string{
	"system design":     "Walk me through the design of a system you built. Which trade-offs did you make and how did it hold up under load?",
	"conflict handling": "Tell me about a disagreement with a teammate or stakeholder. How did you resolve it and what was the outcome?",
	"learning habits":   "Describe the last technology you had to learn quickly. How did you approach it and how did you apply it?",
}

var focusTemplates = []string{
	"Tell me about a project where you used %s. What was your role and what was the measurable result?",
	"How have you applied %s in production? Describe a concrete problem you solved with it.",
	"What is the most difficult thing you have done with %s, and how did you know it worked?",
}

// templateQuestion phrases a choice without the language model.
func templateQuestion(c Choice, asked int) string {
	switch c.Kind {
	case model.KindCustom:
		return c.Text
	case model.KindFocus:
		return fmt.Sprintf(focusTemplates[asked%len(focusTemplates)], c.Target)
	case model.KindProbe:
		if q, ok := probeQuestions[strings.ToLower(strings.TrimSpace(c.Target))]; ok {
			return q
		}
		return fmt.Sprintf("Tell me how you approach %s. Give a recent example.", c.Target)
	case model.KindFollowUp:
		return fmt.Sprintf("You said: %q. Can you back that up with concrete numbers or a specific outcome?", strings.TrimSpace(c.Claim))
	default:
		return "Tell me about a recent piece of work you are proud of."
	}
}
