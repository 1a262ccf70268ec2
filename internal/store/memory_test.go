package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hire-engine/internal/model"
)

func TestMemoryCopiesProfiles(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	profile := &model.CandidateProfile{ID: "c-1", Skills: []model.SkillTag{{Name: "Go"}}}
	require.NoError(t, m.PutProfile(ctx, profile))

	profile.Skills[0].Name = "Rust"

	got, err := m.GetProfile(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Skills[0].Name)

	got.Skills = nil
	again, err := m.GetProfile(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, again.Skills, 1)
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetRequirement(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetReport(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryReportsAreInsertOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.PutReport(ctx, &model.AssessmentReport{SessionID: "s-2", JobID: "j-1", Verdict: "good"}))
	require.NoError(t, m.PutReport(ctx, &model.AssessmentReport{SessionID: "s-1", JobID: "j-1"}))
	require.NoError(t, m.PutReport(ctx, &model.AssessmentReport{SessionID: "s-3", JobID: "j-2"}))

	err := m.PutReport(ctx, &model.AssessmentReport{SessionID: "s-2", JobID: "j-1", Verdict: "poor"})
	assert.ErrorIs(t, err, ErrReportExists)

	got, err := m.GetReport(ctx, "s-2")
	require.NoError(t, err)
	assert.Equal(t, "good", got.Verdict)

	reports, err := m.ListReportsByJob(ctx, "j-1")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, model.SessionID("s-1"), reports[0].SessionID)
	assert.Equal(t, model.SessionID("s-2"), reports[1].SessionID)
}

func TestMemoryListProfilesSorted(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, id := range []model.CandidateID{"b", "a", "c"} {
		require.NoError(t, m.PutProfile(ctx, &model.CandidateProfile{ID: id}))
	}

	profiles, err := m.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, model.CandidateID("a"), profiles[0].ID)
	assert.Equal(t, model.CandidateID("c"), profiles[2].ID)
}

func TestMemoryListRequirementsSorted(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, id := range []model.JobID{"j-2", "j-1"} {
		require.NoError(t, m.PutRequirement(ctx, &model.JobRequirement{ID: id, Title: "Engineer " + id.String()}))
	}

	reqs, err := m.ListRequirements(ctx)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, model.JobID("j-1"), reqs[0].ID)
	assert.Equal(t, "Engineer j-2", reqs[1].Title)
}

func TestMemoryRejectsMissingIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	assert.Error(t, m.PutProfile(ctx, &model.CandidateProfile{}))
	assert.Error(t, m.PutRequirement(ctx, nil))
	assert.Error(t, m.SaveSession(ctx, &model.InterviewSession{}))
	assert.Error(t, m.PutReport(ctx, &model.AssessmentReport{}))
}
