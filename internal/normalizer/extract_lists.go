package normalizer

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/signals"
)

const (
	nameStage           = "name"
	certificationsStage = "certifications"
	languagesStage      = "languages"
	interestsStage      = "interests"
	personalityStage    = "personality"
)

// level words are checked in this order, so "professional working proficiency"
// resolves before the generic "working".
var levelTable = []struct {
	level model.LanguageLevel
	words []string
}{
	{model.LevelNative, []string{"native", "mother", "bilingual", "c2"}},
	{model.LevelBasic, []string{"basic", "elementary", "beginner", "a1", "a2", "limited"}},
	{model.LevelProfessional, []string{"professional", "fluent", "advanced", "proficient", "c1"}},
	{model.LevelIntermediate, []string{"intermediate", "conversational", "working", "good", "b1", "b2"}},
}

type nameExtractor struct{ base }

func newNameExtractor() *nameExtractor {
	return &nameExtractor{base: newBase(nameStage)}
}

func (e *nameExtractor) Apply(_ context.Context, _ Deps, doc *Document, p *model.CandidateProfile) (Step, error) {
	if len(doc.Preamble) == 0 {
		return Step{}, nil
	}
	if candidate := doc.Preamble[0]; looksLikeName(candidate) {
		p.Name = candidate
		return Step{Found: 1}, nil
	}
	return Step{}, nil
}

func looksLikeName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 1 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		for i, r := range w {
			if i == 0 && !unicode.IsUpper(r) {
				return false
			}
			if !unicode.IsLetter(r) && r != '-' && r != '\'' && r != '.' {
				return false
			}
		}
	}
	return true
}

type certificationsExtractor struct{ base }

func newCertificationsExtractor() *certificationsExtractor {
	return &certificationsExtractor{base: newBase(certificationsStage)}
}

func (e *certificationsExtractor) Apply(_ context.Context, _ Deps, doc *Document, p *model.CandidateProfile) (Step, error) {
	p.Certifications = model.DedupFold(splitItems(doc.Lines(sectionCertifications), ";|•"))
	return Step{Found: len(p.Certifications)}, nil
}

type languagesExtractor struct{ base }

func newLanguagesExtractor() *languagesExtractor {
	return &languagesExtractor{base: newBase(languagesStage)}
}

func (e *languagesExtractor) Apply(_ context.Context, _ Deps, doc *Document, p *model.CandidateProfile) (Step, error) {
	seen := make(map[string]struct{})
	p.Languages = make([]model.LanguageProficiency, 0)

	for _, item := range splitItems(doc.Lines(sectionLanguages), ",;|•") {
		language, levelText := splitLanguage(item)
		if language == "" {
			continue
		}
		key := strings.ToLower(language)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		level, ok := languageLevel(levelText)
		if !ok {
			level = model.LevelIntermediate
			p.Notes = append(p.Notes, fmt.Sprintf("unknown level %q for language %s, assumed %s", levelText, language, level))
		}
		p.Languages = append(p.Languages, model.LanguageProficiency{Language: language, Level: level})
	}
	return Step{Found: len(p.Languages)}, nil
}

// splitLanguage understands "English (C1)", "German - native", "French: basic" and "Spanish fluent".
func splitLanguage(item string) (string, string) {
	item = strings.TrimSpace(item)
	if open := strings.Index(item, "("); open > 0 {
		return strings.TrimSpace(item[:open]), strings.Trim(item[open:], "() ")
	}
	for _, sep := range []string{" - ", " – ", ":", " — "} {
		if language, level, found := strings.Cut(item, sep); found {
			return strings.TrimSpace(language), strings.TrimSpace(level)
		}
	}
	fields := strings.Fields(item)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func languageLevel(text string) (model.LanguageLevel, bool) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, row := range levelTable {
		for _, w := range row.words {
			for _, t := range tokens {
				if t == w {
					return row.level, true
				}
			}
		}
	}
	return "", false
}

type interestsExtractor struct{ base }

func newInterestsExtractor() *interestsExtractor {
	return &interestsExtractor{base: newBase(interestsStage)}
}

func (e *interestsExtractor) Apply(_ context.Context, _ Deps, doc *Document, p *model.CandidateProfile) (Step, error) {
	p.CareerInterests = model.DedupFold(splitItems(doc.Lines(sectionInterests), ",;|•"))
	return Step{Found: len(p.CareerInterests)}, nil
}

type personalityExtractor struct{ base }

func newPersonalityExtractor() *personalityExtractor {
	return &personalityExtractor{base: newBase(personalityStage)}
}

// Apply reads an explicit personality section, falling back to trait keywords in the summary.
func (e *personalityExtractor) Apply(_ context.Context, _ Deps, doc *Document, p *model.CandidateProfile) (Step, error) {
	if doc.Has(sectionPersonality) {
		p.PersonalityTraits = model.DedupFold(splitItems(doc.Lines(sectionPersonality), ",;|•"))
	} else {
		p.PersonalityTraits = signals.Traits(doc.Lines(sectionSummary)...)
	}
	return Step{Found: len(p.PersonalityTraits)}, nil
}
