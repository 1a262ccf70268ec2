package model

type RequiredSkill struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Required bool    `json:"required"`
}

type JobRequirement struct {
	ID               JobID           `json:"id"`
	Title            string          `json:"title,omitempty"`
	Skills           []RequiredSkill `json:"skills"`
	MinimumYears     float64         `json:"minimum_years"`
	Preferred        []string        `json:"preferred,omitempty"`
	Responsibilities string          `json:"responsibilities,omitempty"`
}

// RequiredSkills returns the skills with Required set, in listing order.
func (r *JobRequirement) RequiredSkills() []RequiredSkill {
	return r.filter(true)
}

// PreferredSkills returns the skills with Required unset, in listing order.
func (r *JobRequirement) PreferredSkills() []RequiredSkill {
	return r.filter(false)
}

func (r *JobRequirement) filter(required bool) []RequiredSkill {
	out := make([]RequiredSkill, 0, len(r.Skills))
	for _, s := range r.Skills {
		if s.Required == required {
			out = append(out, s)
		}
	}
	return out
}

type SkillGap struct {
	Skill     string  `json:"skill"`
	Weight    float64 `json:"weight"`
	Required  bool    `json:"required"`
	Satisfied bool    `json:"satisfied"`
}

type MatchResult struct {
	CandidateID     CandidateID `json:"candidate_id"`
	JobID           JobID       `json:"job_id"`
	Score           float64     `json:"score"`
	SkillScore      float64     `json:"skill_score"`
	PreferredScore  float64     `json:"preferred_score"`
	ExperienceScore float64     `json:"experience_score"`
	Gaps            []SkillGap  `json:"gaps"`
	Matched         []string    `json:"matched,omitempty"`
	ExperienceGap   float64     `json:"experience_gap"`
}

// UnsatisfiedSkills returns gap skill names in gap order.
func (m *MatchResult) UnsatisfiedSkills() []string {
	out := make([]string, 0, len(m.Gaps))
	for _, g := range m.Gaps {
		if !g.Satisfied {
			out = append(out, g.Skill)
		}
	}
	return out
}

// Recommendation is one job suggested for a candidate.
type Recommendation struct {
	JobID JobID   `json:"job_id"`
	Title string  `json:"title,omitempty"`
	Score float64 `json:"score"`
	// RoleMatch is set when the job title matches a career interest or the
	// candidate's most recent title.
	RoleMatch bool         `json:"role_match"`
	Match     *MatchResult `json:"match"`
}
