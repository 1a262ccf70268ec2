package jobspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hire-engine/internal/config"
	"github.com/spigell/hire-engine/internal/model"
)

const sampleJob = `Senior Go Engineer

About us: we build payments.

Responsibilities:
- Design and operate services

Requirements:
- 5+ years of experience with golang
- PostgreSQL and Kubernetes
- Excellent communication skills

Nice to have:
- AWS or GCP
- Contributions to open source projects in the payments domain
`

func names(skills []model.RequiredSkill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Name)
	}
	return out
}

func sumWeights(skills []model.RequiredSkill) float64 {
	total := 0.0
	for _, s := range skills {
		total += s.Weight
	}
	return total
}

func TestParseSegments(t *testing.T) {
	req := New(config.Default(), nil).Parse(sampleJob)

	assert.False(t, req.ID.IsEmpty())
	assert.Equal(t, "Senior Go Engineer", req.Title)
	assert.Equal(t, 5.0, req.MinimumYears)
	assert.Equal(t, "Design and operate services", req.Responsibilities)

	required := req.RequiredSkills()
	assert.Equal(t, []string{"Go", "PostgreSQL", "Kubernetes", "communication"}, names(required))
	assert.InDelta(t, 1.0, sumWeights(required), 1e-9)
	for i := 1; i < len(required); i++ {
		assert.Less(t, required[i].Weight, required[i-1].Weight)
		assert.Greater(t, required[i].Weight, 0.0)
	}

	preferred := req.PreferredSkills()
	assert.Equal(t, []string{"AWS", "GCP"}, names(preferred))
	assert.InDelta(t, 1/1.85, preferred[0].Weight, 1e-9)
	assert.InDelta(t, 0.85/1.85, preferred[1].Weight, 1e-9)

	assert.Equal(t, []string{
		"AWS or GCP",
		"Contributions to open source projects in the payments domain",
	}, req.Preferred)
}

func TestParseWithoutMarkers(t *testing.T) {
	req := New(config.Default(), nil).Parse("Backend Developer\nWe need someone fluent in Python, Django and AWS.\n")

	assert.Equal(t, "Backend Developer", req.Title)
	assert.Equal(t, []string{"Python", "Django", "AWS"}, names(req.RequiredSkills()))
	assert.Empty(t, req.PreferredSkills())
	assert.Equal(t, 0.0, req.MinimumYears)
}

func TestParseInlineMarkers(t *testing.T) {
	req := New(config.Default(), nil).Parse("Title: Platform Engineer\nRequirements: Go, Kubernetes, at least 3 years\nPreferred: golang, Terraform\n")

	assert.Equal(t, "Platform Engineer", req.Title)
	assert.Equal(t, []string{"Go", "Kubernetes"}, names(req.RequiredSkills()))
	assert.Equal(t, []string{"Terraform"}, names(req.PreferredSkills()))
	assert.Equal(t, 3.0, req.MinimumYears)
}

func TestParseEmpty(t *testing.T) {
	req := New(config.Default(), nil).Parse("  \n ")

	require.NotNil(t, req)
	assert.NotNil(t, req.Skills)
	assert.Empty(t, req.Skills)
	assert.Zero(t, req.MinimumYears)
	assert.Empty(t, req.Title)
}

func TestMinimumYears(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{text: "2+ years of Go and 4+ yrs of SQL", want: 4},
		{text: "minimum of 6 years in backend", want: 6},
		{text: "3 or more years", want: 3},
		{text: "no experience needed", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, minimumYears(tt.text))
		})
	}
}

func TestParseUsesConfiguredSynonyms(t *testing.T) {
	cfg := config.Default()
	cfg.SkillSynonyms = map[string][]string{"Ruby on Rails": {"rails", "ror"}}

	req := New(cfg, nil).Parse("Requirements:\n- RoR\n- Redis\n")

	assert.Equal(t, []string{"Ruby on Rails", "Redis"}, names(req.RequiredSkills()))
}
