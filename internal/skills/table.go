// Package skills resolves skill name variants to canonical skills and finds
// known technologies in free text.
package skills

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// defaultSynonyms maps canonical names to their common variants.
var defaultSynonyms = map[string][]string{
	"Go":               {"golang", "go lang"},
	"JavaScript":       {"js", "ecmascript"},
	"TypeScript":       {"ts"},
	"Kubernetes":       {"k8s"},
	"React":            {"react.js", "reactjs"},
	"Vue":              {"vue.js", "vuejs"},
	"Node.js":          {"nodejs", "node"},
	"PostgreSQL":       {"postgres", "psql"},
	"AWS":              {"amazon web services"},
	"GCP":              {"google cloud", "google cloud platform"},
	"Azure":            {"microsoft azure"},
	"C#":               {"csharp", "c sharp"},
	"C++":              {"cpp"},
	"Machine Learning": {"ml"},
	"CI/CD":            {"ci", "cicd", "continuous integration"},
}

// lexicon lists technologies recognized inside free text in addition to the synonym table.
var lexicon = []string{
	"Python", "Java", "Rust", "Ruby", "PHP", "Scala", "Kotlin", "Swift", "Elixir",
	"HTML", "CSS", "SQL", "MySQL", "MongoDB", "Redis", "Kafka", "RabbitMQ",
	"Elasticsearch", "Docker", "Terraform", "Ansible", "Linux", "Git", "REST",
	"GraphQL", "gRPC", "Spark", "Hadoop", "Airflow", "TensorFlow", "PyTorch",
	"Django", "Flask", "Spring", "Angular", "Next.js", "Prometheus", "Grafana",
	"Jenkins", "Snowflake", "Tableau", "Excel", "Figma", "Jira", "Scrum",
}

// ambiguous terms are ordinary words too and only count in their canonical spelling.
var ambiguous = map[string]struct{}{
	"rest": {}, "spring": {}, "swift": {}, "rust": {}, "excel": {}, "node": {}, "ci": {},
}

// Table resolves skill names to canonical keys through a synonym mapping.
type Table struct {
	// canonical lowercase key per lowercase alias or name
	keys map[string]string
	// display name per canonical key
	display map[string]string
	terms   []string
}

// NewTable builds a table from the built-in synonyms overlaid with extra.
// Keys of extra are canonical names, values their aliases.
func NewTable(extra map[string][]string) *Table {
	t := &Table{
		keys:    make(map[string]string),
		display: make(map[string]string),
	}

	for canonical, aliases := range defaultSynonyms {
		t.add(canonical, aliases)
	}
	for _, term := range lexicon {
		t.add(term, nil)
	}

	names := make([]string, 0, len(extra))
	for canonical := range extra {
		names = append(names, canonical)
	}
	sort.Strings(names)
	for _, canonical := range names {
		t.add(canonical, extra[canonical])
	}

	seen := make(map[string]struct{})
	for alias := range t.keys {
		if _, ok := seen[alias]; ok {
			continue
		}
		seen[alias] = struct{}{}
		t.terms = append(t.terms, alias)
	}
	// longest first so "google cloud platform" wins over "google cloud"
	sort.Slice(t.terms, func(i, j int) bool {
		if len(t.terms[i]) != len(t.terms[j]) {
			return len(t.terms[i]) > len(t.terms[j])
		}
		return t.terms[i] < t.terms[j]
	})

	return t
}

func (t *Table) add(canonical string, aliases []string) {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return
	}
	key := strings.ToLower(canonical)
	if existing, ok := t.keys[key]; ok {
		key = existing
	} else {
		t.keys[key] = key
	}
	if _, ok := t.display[key]; !ok {
		t.display[key] = canonical
	}
	for _, alias := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" {
			continue
		}
		t.keys[alias] = key
	}
}

// Key returns the canonical comparison key for a skill name.
func (t *Table) Key(name string) string {
	lower := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if lower == "" {
		return ""
	}
	if t != nil {
		if key, ok := t.keys[lower]; ok {
			return key
		}
	}
	return lower
}

// Equivalent reports whether two skill names denote the same skill.
func (t *Table) Equivalent(a, b string) bool {
	ka := t.Key(a)
	return ka != "" && ka == t.Key(b)
}

// Canonical returns the display form of a known skill, or the trimmed input.
func (t *Table) Canonical(name string) string {
	trimmed := strings.Join(strings.Fields(name), " ")
	if t == nil {
		return trimmed
	}
	if display, ok := t.display[t.Key(trimmed)]; ok {
		return display
	}
	return trimmed
}

// Known reports whether the name is a synonym-table or lexicon entry.
func (t *Table) Known(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.keys[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Find returns canonical names of known technologies mentioned in text, in order of
// first appearance. Short and ambiguous terms only match in their canonical spelling
// or upper case so that words like "go" or "rest" in prose do not count.
// A canonical spelling that opens a sentence is skipped unless it is listed.
func (t *Table) Find(text string) []string {
	if t == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	lower := asciiLower(text)
	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	taken := make([]bool, len(text))
	seen := make(map[string]struct{})

	for _, term := range t.terms {
		for from := 0; from < len(lower); {
			idx := strings.Index(lower[from:], term)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(term)
			from = start + 1

			if !boundary(text, start, end) || overlaps(taken, start, end) {
				continue
			}
			key := t.keys[term]
			if requiresCase(term) && !shortTermMatches(text, start, end, t.display[key]) {
				continue
			}
			for i := start; i < end; i++ {
				taken[i] = true
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			hits = append(hits, hit{pos: start, name: t.display[key]})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.name)
	}
	return out
}

func requiresCase(term string) bool {
	if len(term) <= 2 {
		return true
	}
	_, ok := ambiguous[term]
	return ok
}

// shortTermMatches accepts an all caps spelling anywhere and the display
// spelling unless it opens a sentence and reads as an ordinary word there, as in
// "Go ahead" or "Spring was busy".
func shortTermMatches(text string, start, end int, display string) bool {
	original := text[start:end]
	if original == strings.ToUpper(original) {
		return true
	}
	if original != display {
		return false
	}
	return !sentenceStart(text, start) || listed(text, end)
}

// sentenceStart reports whether only spaces separate start from the beginning
// of text or from a sentence terminator.
func sentenceStart(text string, start int) bool {
	prefix := strings.TrimRightFunc(text[:start], unicode.IsSpace)
	if prefix == "" {
		return true
	}
	switch prefix[len(prefix)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// listed reports whether the term ends the text or is followed by a list separator.
func listed(text string, end int) bool {
	rest := strings.TrimLeftFunc(text[end:], unicode.IsSpace)
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ',', ';', '/', '|', ')':
		return true
	}
	return false
}

// asciiLower lowers ASCII letters only, keeping byte offsets aligned with the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func overlaps(taken []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if taken[i] {
			return true
		}
	}
	return false
}

// boundary reports whether text[start:end] is not glued to surrounding letters or digits.
func boundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) || r == '+' || r == '#' {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
