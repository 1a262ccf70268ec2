package model

import "time"

type FlagKind string

const (
	FlagShortAnswer     FlagKind = "short_answer"
	FlagContradiction   FlagKind = "contradiction"
	FlagNotAssessed     FlagKind = "not_assessed"
	FlagUnverifiedClaim FlagKind = "unverified_claim"
	FlagUnparsableDate  FlagKind = "unparsable_date"
)

type Flag struct {
	Kind      FlagKind `json:"kind"`
	TurnIndex *int     `json:"turn_index,omitempty"`
	Note      string   `json:"note"`
}

type CompetencyScore struct {
	Competency string `json:"competency"`
	// Score is nil when no turn covered the competency.
	Score    *float64 `json:"score"`
	Evidence []int    `json:"evidence"`
}

type Claim struct {
	TurnIndex  int     `json:"turn_index"`
	Claim      string  `json:"claim"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

type AssessmentReport struct {
	SessionID         SessionID         `json:"session_id"`
	CandidateID       CandidateID       `json:"candidate_id"`
	JobID             JobID             `json:"job_id,omitempty"`
	Competencies      []CompetencyScore `json:"competencies"`
	PersonalityTraits []string          `json:"personality_traits"`
	Flags             []Flag            `json:"flags"`
	Claims            []Claim           `json:"claims,omitempty"`
	OverallScore      *float64          `json:"overall_score"`
	Verdict           string            `json:"verdict"`
	Summary           string            `json:"summary"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Competency returns the score entry for the named competency.
func (r *AssessmentReport) Competency(name string) (CompetencyScore, bool) {
	for _, c := range r.Competencies {
		if c.Competency == name {
			return c, true
		}
	}
	return CompetencyScore{}, false
}

// FlagsOf returns the flags of the given kind in report order.
func (r *AssessmentReport) FlagsOf(kind FlagKind) []Flag {
	out := make([]Flag, 0)
	for _, f := range r.Flags {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }
