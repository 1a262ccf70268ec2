package normalizer

import (
	"context"
	"strings"

	"github.com/spigell/hire-engine/internal/model"
)

const experienceStage = "experience"

var titleWords = []string{
	"engineer", "developer", "manager", "lead", "analyst", "designer", "scientist",
	"intern", "architect", "consultant", "director", "specialist", "administrator",
	"officer", "head", "cto", "ceo", "coordinator", "assistant", "associate",
	"programmer", "devops", "sre", "tester", "qa", "owner", "founder", "researcher",
}

var headerSeparators = []string{" at ", " @ ", " | ", " — ", " – ", " - ", ", "}

type experienceExtractor struct{ base }

func newExperienceExtractor() *experienceExtractor {
	return &experienceExtractor{base: newBase(experienceStage)}
}

func (e *experienceExtractor) Apply(_ context.Context, _ Deps, doc *Document, p *model.CandidateProfile) (Step, error) {
	b := &experienceBuilder{profile: p}
	for _, line := range doc.Lines(sectionExperience) {
		b.feed(line)
	}
	b.finish()

	if p.Experience == nil {
		p.Experience = []model.ExperienceEntry{}
	}
	return Step{Found: len(p.Experience)}, nil
}

// experienceBuilder groups lines into entries. Undated header lines are held as
// pending until a date line or a bullet decides what they belong to.
type experienceBuilder struct {
	profile *model.CandidateProfile
	current *model.ExperienceEntry
	pending []string
}

func (b *experienceBuilder) feed(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	if isBullet(line) {
		if len(b.pending) > 0 {
			b.flushPending(true)
		}
		if b.current != nil {
			b.current.Achievements = append(b.current.Achievements, stripBullet(line))
		}
		return
	}

	if r, ok := findRange(line); ok {
		rest := cleanHeader(r.rest)
		title, org := splitTitleOrg(rest)
		if org != "" {
			for _, held := range b.pending {
				b.describe(held)
			}
		} else {
			title, org = headerFields(append(b.pending, rest))
		}
		b.pending = nil
		b.open(model.ExperienceEntry{
			Title:        title,
			Organization: org,
			Start:        r.start,
			End:          r.end,
			Present:      r.present,
		})
		if r.note != "" {
			b.profile.Notes = append(b.profile.Notes, r.note)
		}
		return
	}

	b.pending = append(b.pending, line)
	if len(b.pending) > 2 {
		b.describe(b.pending[0])
		b.pending = b.pending[1:]
	}
}

// flushPending turns held lines into an undated entry when they look like a role
// header, otherwise into description of the current entry.
func (b *experienceBuilder) flushPending(beforeBullets bool) {
	pending := b.pending
	b.pending = nil

	if b.current == nil || (beforeBullets && looksLikeRole(pending)) {
		title, org := headerFields(pending)
		b.open(model.ExperienceEntry{Title: title, Organization: org})
		return
	}
	for _, line := range pending {
		b.describe(line)
	}
}

func (b *experienceBuilder) describe(line string) {
	if b.current == nil {
		return
	}
	b.current.Achievements = append(b.current.Achievements, line)
}

func (b *experienceBuilder) open(entry model.ExperienceEntry) {
	b.profile.Experience = append(b.profile.Experience, entry)
	b.current = &b.profile.Experience[len(b.profile.Experience)-1]
}

func (b *experienceBuilder) finish() {
	if len(b.pending) > 0 {
		b.flushPending(false)
	}
	b.current = nil
}

func looksLikeRole(lines []string) bool {
	for _, l := range lines {
		if hasTitleWord(l) {
			return true
		}
	}
	return false
}

func hasTitleWord(s string) bool {
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:()|")
		for _, t := range titleWords {
			if w == t {
				return true
			}
		}
	}
	return false
}

// headerFields picks a title and an organization out of up to two header lines.
func headerFields(parts []string) (string, string) {
	var candidates []string
	for _, p := range parts {
		if p = cleanHeader(p); p != "" {
			candidates = append(candidates, p)
		}
	}

	switch len(candidates) {
	case 0:
		return "", ""
	case 1:
		return splitTitleOrg(candidates[0])
	}

	first, second := candidates[len(candidates)-2], candidates[len(candidates)-1]
	// a line that already splits in two wins over line pairing
	if title, org := splitTitleOrg(second); org != "" {
		return title, org
	}
	if title, org := splitTitleOrg(first); org != "" {
		return title, org
	}
	if hasTitleWord(second) && !hasTitleWord(first) {
		return second, first
	}
	return first, second
}

func splitTitleOrg(s string) (string, string) {
	for _, sep := range headerSeparators {
		left, right, found := strings.Cut(s, sep)
		if !found {
			continue
		}
		left, right = cleanHeader(left), cleanHeader(right)
		if left == "" || right == "" {
			continue
		}
		if sep != " at " && sep != " @ " && hasTitleWord(right) && !hasTitleWord(left) {
			return right, left
		}
		return left, right
	}
	return cleanHeader(s), ""
}

var emptyBrackets = strings.NewReplacer("()", "", "[]", "", "( )", "")

func cleanHeader(s string) string {
	s = emptyBrackets.Replace(strings.TrimSpace(s))
	return strings.Trim(s, " \t|,;:-–—·•")
}
