// Package jobspec turns raw job-description text into a weighted JobRequirement.
package jobspec

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/hire-engine/internal/config"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/skills"
)

type segment int

const (
	segmentBody segment = iota
	segmentRequired
	segmentPreferred
	segmentResponsibilities
)

var markers = map[string]segment{
	"requirements":              segmentRequired,
	"required skills":           segmentRequired,
	"required qualifications":   segmentRequired,
	"must have":                 segmentRequired,
	"must-have":                 segmentRequired,
	"minimum qualifications":    segmentRequired,
	"basic qualifications":      segmentRequired,
	"qualifications":            segmentRequired,
	"what you need":             segmentRequired,
	"what we're looking for":    segmentRequired,
	"preferred qualifications":  segmentPreferred,
	"preferred":                 segmentPreferred,
	"preferred skills":          segmentPreferred,
	"nice to have":              segmentPreferred,
	"nice-to-have":              segmentPreferred,
	"bonus":                     segmentPreferred,
	"bonus points":              segmentPreferred,
	"pluses":                    segmentPreferred,
	"responsibilities":          segmentResponsibilities,
	"key responsibilities":      segmentResponsibilities,
	"what you'll do":            segmentResponsibilities,
	"what you will do":          segmentResponsibilities,
	"duties":                    segmentResponsibilities,
	"the role":                  segmentResponsibilities,
}

var fillerPrefixes = []string{
	"working knowledge of", "hands-on experience with", "experience with", "experience in",
	"knowledge of", "proficiency in", "proficiency with", "proficient in", "proficient with",
	"familiarity with", "familiar with", "understanding of", "expertise in", "expertise with",
	"excellent", "strong", "solid", "good", "great", "deep", "hands-on",
}

var (
	yearsRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+\s*(?:years|yrs|year)`),
		regexp.MustCompile(`(?i)(?:at least|minimum(?: of)?|min\.?)\s+(\d+(?:\.\d+)?)\s*(?:years|yrs|year)`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s+or more\s+(?:years|yrs)`),
	}
	phraseSplitRe = regexp.MustCompile(`(?i)[,;•]|\s+and\s+|\s+or\s+|\s+&\s+`)
	titleLineRe   = regexp.MustCompile(`(?i)^\s*(?:job title|title|position|role)\s*:\s*(.+)$`)
	digitsRe      = regexp.MustCompile(`\d`)
)

type Parser struct {
	cfg   config.Engine
	table *skills.Table
}

func New(cfg config.Engine, table *skills.Table) *Parser {
	if table == nil {
		table = skills.NewTable(cfg.SkillSynonyms)
	}
	return &Parser{cfg: cfg, table: table}
}

type segments struct {
	title            string
	body             []string
	required         []string
	preferred        []string
	responsibilities []string
	hasRequired      bool
}

// Parse never fails: empty text yields an empty requirement.
func (p *Parser) Parse(text string) *model.JobRequirement {
	req := &model.JobRequirement{
		ID:     model.NewJobID(),
		Skills: []model.RequiredSkill{},
	}
	if strings.TrimSpace(text) == "" {
		return req
	}

	seg := split(text)
	req.Title = seg.title
	req.MinimumYears = minimumYears(text)
	req.Responsibilities = strings.Join(seg.responsibilities, "\n")

	requiredLines := seg.required
	if !seg.hasRequired {
		requiredLines = append(append([]string{}, seg.body...), seg.responsibilities...)
	}

	seen := make(map[string]struct{})
	required := p.skillsOf(requiredLines, seen)
	preferred := p.skillsOf(seg.preferred, seen)

	decay := p.cfg.PositionDecay
	if decay <= 0 || decay > 1 {
		decay = config.Default().PositionDecay
	}
	req.Skills = append(req.Skills, weigh(required, decay, true)...)
	req.Skills = append(req.Skills, weigh(preferred, decay, false)...)

	for _, line := range seg.preferred {
		if line = strings.TrimSpace(stripBullet(line)); line != "" {
			req.Preferred = append(req.Preferred, line)
		}
	}
	req.Preferred = model.DedupFold(req.Preferred)

	return req
}

func split(text string) segments {
	var seg segments
	current := segmentBody

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := titleLineRe.FindStringSubmatch(line); m != nil && seg.title == "" {
			seg.title = strings.TrimSpace(m[1])
			continue
		}

		if s, inline, ok := markerOf(line); ok {
			current = s
			if s == segmentRequired {
				seg.hasRequired = true
			}
			if inline != "" {
				seg.add(current, inline)
			}
			continue
		}

		if seg.title == "" && current == segmentBody && len(seg.body) == 0 && !isBullet(line) && looksLikeTitle(line) {
			seg.title = strings.TrimRight(line, ".:")
			continue
		}
		seg.add(current, line)
	}
	return seg
}

func looksLikeTitle(line string) bool {
	return len(strings.Fields(line)) <= 12 && !strings.ContainsAny(line, ",;")
}

func (s *segments) add(to segment, line string) {
	switch to {
	case segmentRequired:
		s.required = append(s.required, line)
	case segmentPreferred:
		s.preferred = append(s.preferred, line)
	case segmentResponsibilities:
		s.responsibilities = append(s.responsibilities, stripBullet(line))
	default:
		s.body = append(s.body, line)
	}
}

func markerOf(line string) (segment, string, bool) {
	if isBullet(line) {
		return 0, "", false
	}
	if s, ok := markers[normalizeMarker(line)]; ok {
		return s, "", true
	}
	label, inline, found := strings.Cut(line, ":")
	if !found {
		return 0, "", false
	}
	if s, ok := markers[normalizeMarker(label)]; ok {
		return s, strings.TrimSpace(inline), true
	}
	return 0, "", false
}

func normalizeMarker(s string) string {
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.Trim(s, "#*=_:- \t")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// skillsOf returns skill names in listing order, skipping keys already in seen.
func (p *Parser) skillsOf(lines []string, seen map[string]struct{}) []string {
	var out []string
	add := func(name string) {
		key := p.table.Key(name)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, p.table.Canonical(name))
	}

	for _, line := range lines {
		for _, phrase := range phraseSplitRe.Split(stripBullet(line), -1) {
			phrase = strings.Trim(strings.TrimSpace(phrase), ".:()")
			if phrase == "" {
				continue
			}
			if found := p.table.Find(phrase); len(found) > 0 {
				for _, name := range found {
					add(name)
				}
				continue
			}
			if name, ok := unknownSkill(phrase); ok {
				add(name)
			}
		}
	}
	return out
}

// unknownSkill keeps short phrases that are not sentences as skill names.
func unknownSkill(phrase string) (string, bool) {
	lower := strings.ToLower(phrase)
	for _, prefix := range fillerPrefixes {
		if strings.HasPrefix(lower, prefix+" ") {
			phrase = strings.TrimSpace(phrase[len(prefix)+1:])
			lower = strings.ToLower(phrase)
		}
	}
	phrase = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(phrase, " skills"), " skill"))

	words := strings.Fields(phrase)
	if len(words) == 0 || len(words) > 3 || digitsRe.MatchString(phrase) {
		return "", false
	}
	return phrase, true
}

// weigh assigns decay^i by listing position and renormalizes to sum 1.
func weigh(names []string, decay float64, required bool) []model.RequiredSkill {
	if len(names) == 0 {
		return nil
	}
	raw := make([]float64, len(names))
	total := 0.0
	for i := range names {
		raw[i] = math.Pow(decay, float64(i))
		total += raw[i]
	}
	out := make([]model.RequiredSkill, len(names))
	for i, name := range names {
		out[i] = model.RequiredSkill{Name: name, Weight: raw[i] / total, Required: required}
	}
	return out
}

func minimumYears(text string) float64 {
	best := 0.0
	for _, re := range yearsRe {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > best && v < 60 {
				best = v
			}
		}
	}
	return best
}

func isBullet(line string) bool {
	for _, prefix := range []string{"- ", "* ", "• ", "· ", "– ", "+ "} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func stripBullet(line string) string {
	line = strings.TrimSpace(line)
	if isBullet(line) {
		_, rest, _ := strings.Cut(line, " ")
		return strings.TrimSpace(rest)
	}
	return line
}
