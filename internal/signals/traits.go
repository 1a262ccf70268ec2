package signals

import "strings"

type trait struct {
	name     string
	keywords []string
}

// traitTable is ordered; detected traits are reported in this order.
var traitTable = []trait{
	{name: "Analytical", keywords: []string{"analyzed", "analysed", "data", "metrics", "measured", "root cause"}},
	{name: "Problem-solver", keywords: []string{"solved", "debugged", "fixed", "troubleshot", "workaround"}},
	{name: "Team player", keywords: []string{"team", "together", "collaborated", "pair", "paired"}},
	{name: "Leadership", keywords: []string{"led", "mentored", "coached", "ownership", "owned"}},
	{name: "Clear communicator", keywords: []string{"explained", "presented", "documented", "wrote", "aligned"}},
	{name: "Curious", keywords: []string{"learned", "learning", "curious", "explored", "experimented"}},
	{name: "Detail-oriented", keywords: []string{"tested", "reviewed", "validated", "carefully", "edge cases"}},
	{name: "Creative", keywords: []string{"designed", "invented", "prototyped", "idea", "ideas"}},
}

// Traits returns personality trait tags suggested by the given answers.
func Traits(answers ...string) []string {
	var b strings.Builder
	for _, a := range answers {
		b.WriteString(" ")
		b.WriteString(strings.ToLower(a))
	}
	b.WriteString(" ")
	text := b.String()
	tokens := make(map[string]struct{})
	for _, w := range Words(text) {
		tokens[strings.Trim(w, ".'")] = struct{}{}
	}

	out := make([]string, 0)
	for _, t := range traitTable {
		for _, k := range t.keywords {
			matched := false
			if strings.Contains(k, " ") {
				matched = strings.Contains(text, " "+k)
			} else {
				_, matched = tokens[k]
			}
			if matched {
				out = append(out, t.name)
				break
			}
		}
	}
	return out
}
