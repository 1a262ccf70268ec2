// Package signals holds the lightweight text heuristics used to judge how
// specific and verifiable a free-text answer is.
package signals

import (
	"math"
	"regexp"
	"strings"

	"github.com/spigell/hire-engine/internal/skills"
)

const (
	metricSignal      = 0.35
	technologySignal  = 0.15
	technologyMax     = 0.30
	outcomeSignal     = 0.25
	lengthSignalMax   = 0.10
	lengthSignalWords = 60
)

var (
	metricRe   = regexp.MustCompile(`\d`)
	sentenceRe = regexp.MustCompile(`[^.!?\n]+[.!?]?`)
	wordRe     = regexp.MustCompile(`[\p{L}\p{N}'+#.]+`)
)

var achievementVerbs = []string{
	"improved", "increased", "reduced", "decreased", "led", "built", "designed",
	"launched", "optimized", "optimised", "delivered", "grew", "scaled", "saved",
	"cut", "boosted", "created", "implemented", "migrated", "automated", "shipped",
	"drove", "accelerated", "managed",
}

var outcomeWords = []string{
	"increased", "reduced", "decreased", "improved", "launched", "delivered",
	"saved", "resulted", "achieved", "shipped", "grew", "cut", "won", "released",
}

var negations = []string{
	"never", "not", "no experience", "haven't", "have not", "didn't", "did not",
	"don't", "do not", "without", "unfamiliar",
}

// Sentences splits text into trimmed, non-empty sentences.
func Sentences(text string) []string {
	matches := sentenceRe.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// Words returns the word tokens of text.
func Words(text string) []string {
	return wordRe.FindAllString(text, -1)
}

func HasMetric(text string) bool {
	return metricRe.MatchString(text)
}

func HasOutcome(text string) bool {
	return containsAnyWord(text, outcomeWords)
}

// Negated reports whether a sentence denies rather than claims something.
func Negated(sentence string) bool {
	lower := " " + strings.ToLower(sentence) + " "
	for _, n := range negations {
		if strings.Contains(lower, " "+n+" ") || strings.Contains(lower, " "+n+",") || strings.Contains(lower, " "+n+".") {
			return true
		}
	}
	return false
}

// Strength scores the specificity of an answer in [0,1]: concrete numbers, named
// technologies, named outcomes and length each add a bounded increment.
func Strength(text string, table *skills.Table) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	score := 0.0
	if HasMetric(text) {
		score += metricSignal
	}
	score += math.Min(technologyMax, technologySignal*float64(len(table.Find(text))))
	if HasOutcome(text) {
		score += outcomeSignal
	}
	words := len(Words(text))
	score += lengthSignalMax * math.Min(1, float64(words)/lengthSignalWords)

	return math.Min(1, score)
}

// Claim is an achievement statement found in free text.
type Claim struct {
	Text       string
	Confidence float64
	Verified   bool
}

// Claims returns achievement statements. A claim backed by a number counts as verified.
func Claims(text string) []Claim {
	var out []Claim
	for _, sentence := range Sentences(text) {
		if !containsAnyWord(sentence, achievementVerbs) || Negated(sentence) {
			continue
		}
		verified := HasMetric(sentence)
		confidence := 0.5
		if verified {
			confidence = 0.8
		}
		out = append(out, Claim{Text: sentence, Confidence: confidence, Verified: verified})
	}
	return out
}

// UnverifiedClaims returns achievement statements without a quantifiable metric.
func UnverifiedClaims(text string) []string {
	var out []string
	for _, c := range Claims(text) {
		if !c.Verified {
			out = append(out, c.Text)
		}
	}
	return out
}

func containsAnyWord(text string, words []string) bool {
	for _, token := range Words(strings.ToLower(text)) {
		token = strings.Trim(token, ".'")
		for _, w := range words {
			if token == w {
				return true
			}
		}
	}
	return false
}
