package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hire-engine/internal/config"
	"github.com/spigell/hire-engine/internal/model"
)

func TestRecommendJobsPrefersMatchingRoles(t *testing.T) {
	scorer := New(config.Default(), nil)

	profile := profileWith("c-1", 4, "Go", "Kafka")
	profile.CareerInterests = []string{"Backend Engineer"}
	profile.Experience = []model.ExperienceEntry{{Organization: "Acme", Title: "Data Analyst"}}

	goOnly := []model.RequiredSkill{{Name: "golang", Weight: 1, Required: true}}
	reqs := []*model.JobRequirement{
		{ID: "j-b", Title: "Frontend Developer", Skills: goOnly},
		{ID: "j-c", Title: "Backend Engineer", Skills: []model.RequiredSkill{{Name: "React", Weight: 1, Required: true}}},
		{ID: "j-d", Title: "Data Analyst"},
		{ID: "j-a", Title: "Senior Backend Engineer", Skills: goOnly},
	}

	recs, err := scorer.RecommendJobs(context.Background(), profile, reqs, 0)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	byID := map[model.JobID]*model.Recommendation{}
	for _, r := range recs {
		byID[r.JobID] = r
	}

	assert.Equal(t, model.JobID("j-a"), recs[0].JobID)
	assert.Equal(t, model.JobID("j-d"), recs[1].JobID)

	assert.True(t, byID["j-a"].RoleMatch)
	assert.Equal(t, 1.0, byID["j-a"].Score)
	assert.True(t, byID["j-d"].RoleMatch)

	assert.False(t, byID["j-b"].RoleMatch)
	assert.InDelta(t, 0.7, byID["j-b"].Score, 1e-9)
	assert.Equal(t, "Frontend Developer", byID["j-b"].Title)

	c := byID["j-c"]
	assert.True(t, c.RoleMatch)
	assert.Equal(t, []string{"React"}, c.Match.UnsatisfiedSkills())
	assert.InDelta(t, 0.7*c.Match.Score+0.3, c.Score, 1e-6)
}

func TestRecommendJobsLimit(t *testing.T) {
	scorer := New(config.Default(), nil)
	reqs := []*model.JobRequirement{{ID: "j-2"}, {ID: "j-1"}, {ID: "j-3"}}

	recs, err := scorer.RecommendJobs(context.Background(), profileWith("c-1", 0), reqs, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, model.JobID("j-1"), recs[0].JobID)
	assert.Equal(t, model.JobID("j-2"), recs[1].JobID)
}

func TestRecommendJobsNeedsProfile(t *testing.T) {
	_, err := New(config.Default(), nil).RecommendJobs(context.Background(), nil, nil, 0)
	assert.Error(t, err)
}

func TestRoleMatches(t *testing.T) {
	roles := [][]string{titleWords("Backend Engineer"), titleWords("C++ developer")}

	tests := []struct {
		title string
		want  bool
	}{
		{"Senior Backend Engineer", true},
		{"backend", true},
		{"C++ Developer (remote)", true},
		{"Frontend Engineer", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, roleMatches(tt.title, roles))
		})
	}
}
