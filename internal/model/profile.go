package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// YearMonth is a normalized date. Month is 1-12, or 0 when only the year is known.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
}

func FromTime(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

func (ym YearMonth) String() string {
	if ym.Month == 0 {
		return fmt.Sprintf("%04d", ym.Year)
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// monthIndex returns an absolute month number, substituting fallback for an unknown month.
func (ym YearMonth) monthIndex(fallback int) int {
	month := ym.Month
	if month == 0 {
		month = fallback
	}
	return ym.Year*12 + month - 1
}

type SkillTag struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

type ExperienceEntry struct {
	Organization string     `json:"organization"`
	Title        string     `json:"title"`
	Start        *YearMonth `json:"start,omitempty"`
	// End is nil for ongoing roles (Present) and for unknown end dates.
	End          *YearMonth `json:"end,omitempty"`
	Present      bool       `json:"present,omitempty"`
	Achievements []string   `json:"achievements,omitempty"`
}

type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Period      string `json:"period,omitempty"`
}

type LanguageLevel string

const (
	LevelNative       LanguageLevel = "native"
	LevelProfessional LanguageLevel = "professional"
	LevelIntermediate LanguageLevel = "intermediate"
	LevelBasic        LanguageLevel = "basic"
)

type LanguageProficiency struct {
	Language string        `json:"language"`
	Level    LanguageLevel `json:"level"`
}

type CandidateProfile struct {
	ID                CandidateID           `json:"id"`
	Name              string                `json:"name,omitempty"`
	Skills            []SkillTag            `json:"skills"`
	Experience        []ExperienceEntry     `json:"experience"`
	Education         []EducationEntry      `json:"education"`
	YearsOfExperience float64               `json:"years_of_experience"`
	Certifications    []string              `json:"certifications"`
	Languages         []LanguageProficiency `json:"languages"`
	CareerInterests   []string              `json:"career_interests"`
	PersonalityTraits []string              `json:"personality_traits,omitempty"`
	// Notes keeps best-effort extraction problems, e.g. unparsable dates.
	Notes []string `json:"notes,omitempty"`
}

// ProfileHint is a partially structured profile. Nil fields are absent and get
// extracted from text; present fields are taken verbatim.
type ProfileHint struct {
	ID                CandidateID           `json:"id,omitempty" mapstructure:"id"`
	Name              *string               `json:"name,omitempty" mapstructure:"name"`
	Skills            []SkillTag            `json:"skills,omitempty" mapstructure:"skills"`
	Experience        []ExperienceEntry     `json:"experience,omitempty" mapstructure:"experience"`
	Education         []EducationEntry      `json:"education,omitempty" mapstructure:"education"`
	Certifications    []string              `json:"certifications,omitempty" mapstructure:"certifications"`
	Languages         []LanguageProficiency `json:"languages,omitempty" mapstructure:"languages"`
	CareerInterests   []string              `json:"career_interests,omitempty" mapstructure:"career_interests"`
	PersonalityTraits []string              `json:"personality_traits,omitempty" mapstructure:"personality_traits"`
}

// Empty reports whether the hint carries no field at all.
func (h *ProfileHint) Empty() bool {
	return h == nil || (h.ID == "" && h.Name == nil && h.Skills == nil && h.Experience == nil &&
		h.Education == nil && h.Certifications == nil && h.Languages == nil &&
		h.CareerInterests == nil && h.PersonalityTraits == nil)
}

// Canonicalize restores the profile invariants: case-insensitive unique skills and
// certifications, reverse-chronological experience and derived years of experience.
func (p *CandidateProfile) Canonicalize(asOf YearMonth) {
	p.Skills = dedupSkills(p.Skills)
	p.Certifications = DedupFold(p.Certifications)
	SortExperience(p.Experience)
	p.YearsOfExperience = YearsOfExperience(p.Experience, asOf)
}

// SkillNames returns skill names in profile order.
func (p *CandidateProfile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}

// Text flattens the profile into free text used for consistency checks.
func (p *CandidateProfile) Text() string {
	var b strings.Builder
	for _, s := range p.Skills {
		b.WriteString(s.Name)
		b.WriteString("\n")
	}
	for _, e := range p.Experience {
		b.WriteString(e.Title)
		b.WriteString(" ")
		b.WriteString(e.Organization)
		b.WriteString("\n")
		for _, a := range e.Achievements {
			b.WriteString(a)
			b.WriteString("\n")
		}
	}
	for _, c := range p.Certifications {
		b.WriteString(c)
		b.WriteString("\n")
	}
	return b.String()
}

func dedupSkills(skills []SkillTag) []SkillTag {
	if skills == nil {
		return []SkillTag{}
	}
	seen := make(map[string]struct{}, len(skills))
	out := make([]SkillTag, 0, len(skills))
	for _, s := range skills {
		s.Name = strings.TrimSpace(s.Name)
		key := strings.ToLower(s.Name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// DedupFold removes blank and case-insensitive duplicate strings, keeping the first spelling.
func DedupFold(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SortExperience orders entries newest first: by start, then by end. Entries
// without a start date go last, keeping their relative order.
func SortExperience(entries []ExperienceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.Start == nil) != (b.Start == nil) {
			return a.Start != nil
		}
		if a.Start != nil {
			as, bs := a.Start.monthIndex(1), b.Start.monthIndex(1)
			if as != bs {
				return as > bs
			}
		}
		return endRank(a) > endRank(b)
	})
}

func endRank(e ExperienceEntry) int {
	switch {
	case e.Present:
		return int(^uint(0) >> 1)
	case e.End != nil:
		return e.End.monthIndex(12)
	default:
		return -1
	}
}

// YearsOfExperience sums the durations of the entries, counting overlapping months once.
// Unknown start months count from January, unknown end months to December and ongoing
// roles to asOf. Entries without a start or with an unknown end are skipped.
func YearsOfExperience(entries []ExperienceEntry, asOf YearMonth) float64 {
	type interval struct{ from, to int }

	intervals := make([]interval, 0, len(entries))
	for _, e := range entries {
		if e.Start == nil {
			continue
		}
		var to int
		switch {
		case e.Present:
			to = asOf.monthIndex(12)
		case e.End != nil:
			to = e.End.monthIndex(12)
		default:
			continue
		}
		from := e.Start.monthIndex(1)
		if to < from {
			continue
		}
		intervals = append(intervals, interval{from: from, to: to})
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].from < intervals[j].from })

	months := 0
	for i := 0; i < len(intervals); {
		cur := intervals[i]
		j := i + 1
		for j < len(intervals) && intervals[j].from <= cur.to+1 {
			if intervals[j].to > cur.to {
				cur.to = intervals[j].to
			}
			j++
		}
		months += cur.to - cur.from + 1
		i = j
	}

	return float64(months) / 12
}
