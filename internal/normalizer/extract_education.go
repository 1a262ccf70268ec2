package normalizer

import (
	"context"
	"strings"

	"github.com/spigell/hire-engine/internal/model"
)

const educationStage = "education"

var degreeWords = []string{
	"bachelor", "bachelor's", "master", "master's", "bsc", "b.sc", "msc", "m.sc", "ba", "b.a",
	"bs", "b.s", "ms", "m.s", "ma", "m.a", "phd", "ph.d", "mba", "diploma", "degree",
	"doctorate", "associate", "beng", "meng", "specialist",
}

var institutionWords = []string{
	"university", "college", "institute", "school", "academy", "polytechnic", "universität",
}

type educationExtractor struct{ base }

func newEducationExtractor() *educationExtractor {
	return &educationExtractor{base: newBase(educationStage)}
}

func (e *educationExtractor) Apply(_ context.Context, _ Deps, doc *Document, p *model.CandidateProfile) (Step, error) {
	entries := make([]model.EducationEntry, 0)

	for _, raw := range doc.Lines(sectionEducation) {
		line := stripBullet(raw)
		if line == "" {
			continue
		}

		next, ok := parseEducationLine(line)
		if !ok {
			continue
		}

		if n := len(entries); n > 0 && mergeable(entries[n-1], next) {
			prev := &entries[n-1]
			if prev.Degree == "" {
				prev.Degree = next.Degree
			}
			if prev.Institution == "" {
				prev.Institution = next.Institution
			}
			if prev.Period == "" {
				prev.Period = next.Period
			}
			continue
		}
		entries = append(entries, next)
	}

	p.Education = entries
	return Step{Found: len(entries)}, nil
}

// mergeable reports whether next completes prev, as in a degree line followed by
// an institution and period line.
func mergeable(prev, next model.EducationEntry) bool {
	if prev.Degree != "" && next.Degree != "" {
		return false
	}
	if prev.Institution != "" && next.Institution != "" {
		return false
	}
	if prev.Period != "" && next.Period != "" {
		return false
	}
	return true
}

func parseEducationLine(line string) (model.EducationEntry, bool) {
	var entry model.EducationEntry

	rest := line
	if r, ok := findRange(line); ok {
		entry.Period = strings.TrimSpace(r.raw)
		rest = r.rest
	}

	var leftovers []string
	for _, part := range splitAny(cleanHeader(rest), []string{" | ", " — ", " – ", " - ", ", ", " at ", "; "}) {
		part = cleanHeader(part)
		switch {
		case part == "":
		case entry.Degree == "" && containsWord(part, degreeWords):
			entry.Degree = part
		case entry.Institution == "" && containsWord(part, institutionWords):
			entry.Institution = part
		default:
			leftovers = append(leftovers, part)
		}
	}

	// a bare name like "MIT" is an institution when nothing else claims it
	if entry.Institution == "" && len(leftovers) > 0 && len(strings.Fields(leftovers[0])) <= 8 {
		entry.Institution = leftovers[0]
		leftovers = leftovers[1:]
	}
	if entry.Degree != "" && len(leftovers) > 0 && !strings.Contains(entry.Degree, " in ") {
		entry.Degree += ", " + strings.Join(leftovers, ", ")
	}

	return entry, entry.Degree != "" || entry.Institution != "" || entry.Period != ""
}

func splitAny(s string, seps []string) []string {
	parts := []string{s}
	for _, sep := range seps {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	return parts
}

func containsWord(s string, words []string) bool {
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ",;:()")
		w = strings.TrimSuffix(w, ".")
		for _, candidate := range words {
			if w == candidate {
				return true
			}
		}
	}
	return false
}
