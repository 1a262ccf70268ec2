package normalizer

import (
	"context"
	"strings"

	"github.com/spigell/hire-engine/internal/model"
)

const skillsStage = "skills"

var proficiencyWords = map[string]string{
	"expert":       "expert",
	"advanced":     "advanced",
	"proficient":   "advanced",
	"strong":       "advanced",
	"intermediate": "intermediate",
	"good":         "intermediate",
	"working":      "intermediate",
	"basic":        "basic",
	"beginner":     "basic",
	"familiar":     "basic",
	"novice":       "basic",
}

type skillsExtractor struct{ base }

func newSkillsExtractor() *skillsExtractor {
	return &skillsExtractor{base: newBase(skillsStage)}
}

func (s *skillsExtractor) Apply(_ context.Context, deps Deps, doc *Document, p *model.CandidateProfile) (Step, error) {
	if !doc.Has(sectionSkills) {
		for _, name := range deps.Table.Find(doc.Text) {
			p.Skills = append(p.Skills, model.SkillTag{Name: name})
		}
		return Step{Found: len(p.Skills)}, nil
	}

	var lines []string
	for _, line := range doc.Lines(sectionSkills) {
		lines = append(lines, stripLabel(line))
	}

	for _, item := range splitItems(lines, ",;|•") {
		name, level := splitProficiency(item)
		if name == "" {
			continue
		}
		p.Skills = append(p.Skills, model.SkillTag{Name: deps.Table.Canonical(name), Proficiency: level})
	}
	return Step{Found: len(p.Skills)}, nil
}

// stripLabel drops group labels like "Languages: Go, Python".
func stripLabel(line string) string {
	label, rest, found := strings.Cut(stripBullet(line), ":")
	if !found || !strings.Contains(rest, ",") || len(strings.Fields(label)) > 3 {
		return line
	}
	return rest
}

// splitProficiency understands "Go (expert)", "Go - advanced" and "Go: basic".
func splitProficiency(item string) (string, string) {
	item = strings.TrimSpace(item)

	if open := strings.LastIndex(item, "("); open > 0 && strings.HasSuffix(item, ")") {
		if level, ok := proficiencyOf(item[open+1 : len(item)-1]); ok {
			return strings.TrimSpace(item[:open]), level
		}
		return strings.TrimSpace(item[:open]), ""
	}

	for _, sep := range []string{" - ", " – ", ": "} {
		if name, rest, found := strings.Cut(item, sep); found {
			if level, ok := proficiencyOf(rest); ok {
				return strings.TrimSpace(name), level
			}
		}
	}
	return item, ""
}

func proficiencyOf(s string) (string, bool) {
	for _, word := range strings.Fields(strings.ToLower(s)) {
		if level, ok := proficiencyWords[strings.Trim(word, ".,")]; ok {
			return level, true
		}
	}
	return "", false
}
