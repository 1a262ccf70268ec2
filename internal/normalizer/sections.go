package normalizer

import (
	"strings"
	"unicode"
)

type section string

const (
	sectionSkills         section = "skills"
	sectionExperience     section = "experience"
	sectionEducation      section = "education"
	sectionCertifications section = "certifications"
	sectionLanguages      section = "languages"
	sectionInterests      section = "interests"
	sectionPersonality    section = "personality"
	sectionSummary        section = "summary"
)

var headerSynonyms = map[section][]string{
	sectionSkills: {
		"skills", "technical skills", "core skills", "key skills", "skill set", "skillset",
		"competencies", "core competencies", "technologies", "tech stack", "tools",
		"skills & tools", "skills and tools", "programming languages",
	},
	sectionExperience: {
		"experience", "work experience", "professional experience", "employment",
		"employment history", "work history", "career history", "relevant experience",
	},
	sectionEducation: {
		"education", "academic background", "academics", "education & training",
		"education and training", "studies",
	},
	sectionCertifications: {
		"certifications", "certificates", "certification", "licenses", "licenses & certifications",
	},
	sectionLanguages: {
		"languages", "language skills", "spoken languages",
	},
	sectionInterests: {
		"interests", "career interests", "career goals", "objective", "objectives", "goals",
	},
	sectionPersonality: {
		"personality", "personality traits", "soft skills", "traits",
	},
	sectionSummary: {
		"summary", "profile", "about", "about me", "professional summary",
	},
}

var headerIndex = func() map[string]section {
	idx := make(map[string]section)
	for s, names := range headerSynonyms {
		for _, n := range names {
			idx[n] = s
		}
	}
	return idx
}()

// Document is CV text split into recognized sections.
type Document struct {
	Text     string
	Preamble []string
	Sections map[section][]string
	// Found lists sections in order of first appearance.
	Found []section
}

// Lines returns the content lines of a section.
func (d *Document) Lines(s section) []string {
	return d.Sections[s]
}

func (d *Document) Has(s section) bool {
	_, ok := d.Sections[s]
	return ok
}

func splitSections(text string) *Document {
	doc := &Document{Text: text, Sections: make(map[section][]string)}

	var current section
	inSection := false

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimRightFunc(raw, unicode.IsSpace)

		if s, inline, ok := headerOf(line); ok {
			current = s
			inSection = true
			if _, seen := doc.Sections[s]; !seen {
				doc.Sections[s] = []string{}
				doc.Found = append(doc.Found, s)
			}
			if inline != "" {
				doc.Sections[s] = append(doc.Sections[s], inline)
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if !inSection {
			doc.Preamble = append(doc.Preamble, strings.TrimSpace(line))
			continue
		}
		doc.Sections[current] = append(doc.Sections[current], line)
	}

	return doc
}

// headerOf recognizes "Experience", "## Work history", "SKILLS:" and the inline
// "Skills: Go, Python" form.
func headerOf(line string) (section, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || isBullet(trimmed) {
		return "", "", false
	}

	clean := normalizeHeader(trimmed)
	if s, ok := headerIndex[clean]; ok {
		return s, "", true
	}

	label, inline, found := strings.Cut(trimmed, ":")
	if !found {
		return "", "", false
	}
	if s, ok := headerIndex[normalizeHeader(label)]; ok {
		return s, strings.TrimSpace(inline), true
	}
	return "", "", false
}

func normalizeHeader(s string) string {
	s = strings.Trim(s, "#*=_:- \t")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
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

// splitItems breaks list-style lines into trimmed items.
func splitItems(lines []string, separators string) []string {
	var out []string
	for _, line := range lines {
		line = stripBullet(line)
		if line == "" {
			continue
		}
		for _, item := range strings.FieldsFunc(line, func(r rune) bool {
			return strings.ContainsRune(separators, r)
		}) {
			if item = strings.Trim(strings.TrimSpace(item), "."); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
