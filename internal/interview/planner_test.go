package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hire-engine/internal/ai"
	"github.com/spigell/hire-engine/internal/config"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/store"
)

type stubGateway struct {
	question string
	err      error
	requests []ai.Request
}

func (s *stubGateway) Do(_ context.Context, req ai.Request) (*ai.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &ai.Response{Question: s.question}, nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newPlanner(t *testing.T, gw ai.Gateway, log *zap.Logger) (*Planner, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	p := New(config.Default(), mem, nil, gw, nil, nil, log).WithClock(func() time.Time { return fixedNow })
	return p, mem
}

func profile() *model.CandidateProfile {
	return &model.CandidateProfile{
		ID:                "c-1",
		Skills:            []model.SkillTag{{Name: "Python"}, {Name: "React"}},
		YearsOfExperience: 3,
	}
}

func TestBudgetOfThreeCompletesSession(t *testing.T) {
	ctx := context.Background()
	p, _ := newPlanner(t, nil, nil)

	session, err := p.Start(ctx, StartRequest{Profile: profile(), QuestionBudget: 3})
	require.NoError(t, err)
	assert.Equal(t, model.StateInProgress, session.State)

	for i := 0; i < 3; i++ {
		turn, err := p.NextQuestion(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, i, turn.Index)
		assert.NotEmpty(t, turn.Question)

		_, err = p.SubmitAnswer(ctx, session.ID, "We shipped it in two weeks.")
		require.NoError(t, err)
	}

	got, err := p.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, got.State)
	assert.Equal(t, 0, got.RemainingQuestionBudget)
	assert.Len(t, got.Turns, 3)
	assert.Equal(t, reasonBudgetExhausted, got.EndReason)

	_, err = p.NextQuestion(ctx, session.ID)
	var closed *model.SessionClosedError
	require.True(t, errors.As(err, &closed))
	assert.Equal(t, session.ID, closed.SessionID)

	_, err = p.SubmitAnswer(ctx, session.ID, "late")
	assert.True(t, errors.As(err, &closed))
}

func TestStartSeedsFocusAreasFromGaps(t *testing.T) {
	ctx := context.Background()
	p, _ := newPlanner(t, nil, nil)

	req := &model.JobRequirement{
		ID:    "j-1",
		Title: "Backend Engineer",
		Skills: []model.RequiredSkill{
			{Name: "Python", Weight: 0.7, Required: true},
			{Name: "AWS", Weight: 0.3, Required: true},
		},
	}

	session, err := p.Start(ctx, StartRequest{
		Profile:     profile(),
		Requirement: req,
		FocusAreas:  []string{"aws", "Leadership", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"AWS", "Leadership"}, session.FocusAreas)
	assert.Equal(t, model.JobID("j-1"), session.JobID)
	assert.Equal(t, "Backend Engineer", session.Role)
	assert.Equal(t, config.Default().QuestionBudgetDefault, session.RemainingQuestionBudget)
}

func TestStartRejectsBadInput(t *testing.T) {
	p, _ := newPlanner(t, nil, nil)

	var malformed *model.MalformedInputError
	_, err := p.Start(context.Background(), StartRequest{})
	assert.True(t, errors.As(err, &malformed))

	_, err = p.Start(context.Background(), StartRequest{Profile: profile(), QuestionBudget: -1})
	assert.True(t, errors.As(err, &malformed))
}

func TestOneOpenQuestionAtATime(t *testing.T) {
	ctx := context.Background()
	p, _ := newPlanner(t, nil, nil)

	session, err := p.Start(ctx, StartRequest{Profile: profile(), QuestionBudget: 3})
	require.NoError(t, err)

	_, err = p.SubmitAnswer(ctx, session.ID, "nothing was asked")
	assert.ErrorIs(t, err, ErrNoOpenQuestion)

	_, err = p.NextQuestion(ctx, session.ID)
	require.NoError(t, err)

	_, err = p.NextQuestion(ctx, session.ID)
	assert.ErrorIs(t, err, ErrAnswerPending)

	got, err := p.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Turns, 1)
	assert.Equal(t, 2, got.RemainingQuestionBudget)
}

func TestConcurrentNextQuestionIsSerialized(t *testing.T) {
	ctx := context.Background()
	p, _ := newPlanner(t, nil, nil)

	session, err := p.Start(ctx, StartRequest{Profile: profile(), QuestionBudget: 5})
	require.NoError(t, err)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.NextQuestion(ctx, session.ID)
		}(i)
	}
	wg.Wait()

	var ok, pending int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAnswerPending):
			pending++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, pending)

	got, err := p.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Turns, 1)
	assert.Equal(t, 4, got.RemainingQuestionBudget)
}

func TestEndWithdrawsOpenQuestion(t *testing.T) {
	ctx := context.Background()
	p, _ := newPlanner(t, nil, nil)

	session, err := p.Start(ctx, StartRequest{Profile: profile(), QuestionBudget: 4})
	require.NoError(t, err)

	_, err = p.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	_, err = p.SubmitAnswer(ctx, session.ID, "I designed the ingestion service.")
	require.NoError(t, err)
	_, err = p.NextQuestion(ctx, session.ID)
	require.NoError(t, err)

	ended, err := p.End(ctx, session.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, ended.State)
	assert.Len(t, ended.Turns, 1)
	assert.True(t, ended.Turns[0].Answered)
	assert.Equal(t, 3, ended.RemainingQuestionBudget)
	assert.Equal(t, reasonEndedByCaller, ended.EndReason)
	assert.Equal(t, fixedNow, ended.EndedAt)

	_, err = p.End(ctx, session.ID, "again")
	var closed *model.SessionClosedError
	assert.True(t, errors.As(err, &closed))
}

func TestCustomQuestionsAreAskedVerbatim(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{question: "Generated question?"}
	p, _ := newPlanner(t, gw, nil)

	session, err := p.Start(ctx, StartRequest{
		Profile:         profile(),
		FocusAreas:      []string{"Kafka"},
		CustomQuestions: []string{"Why do you want to join us?"},
		QuestionBudget:  2,
	})
	require.NoError(t, err)

	turn, err := p.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KindCustom, turn.Kind)
	assert.Equal(t, "Why do you want to join us?", turn.Question)
	assert.Empty(t, gw.requests)

	_, err = p.SubmitAnswer(ctx, session.ID, "Because of the product.")
	require.NoError(t, err)

	turn, err = p.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KindFocus, turn.Kind)
	assert.Equal(t, "Kafka", turn.Target)
	assert.Equal(t, "Generated question?", turn.Question)

	require.Len(t, gw.requests, 1)
	assert.Equal(t, ai.TaskGenerateQuestion, gw.requests[0].Task)
	assert.Equal(t, "Kafka", gw.requests[0].Context["target"])
	assert.Equal(t, "Because of the product.", gw.requests[0].Context["previous_answer"])
}

func TestGatewayFailureFallsBackToTemplate(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	p, _ := newPlanner(t, &stubGateway{err: errors.New("quota exceeded")}, zap.New(core))

	session, err := p.Start(ctx, StartRequest{Profile: profile(), FocusAreas: []string{"Kafka"}, QuestionBudget: 1})
	require.NoError(t, err)

	turn, err := p.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, templateQuestion(Choice{Kind: model.KindFocus, Target: "Kafka"}, 0), turn.Question)

	entries := logs.FilterMessage("question generation failed, using template").All()
	require.Len(t, entries, 1)
	assert.Equal(t, session.ID.String(), entries[0].ContextMap()["session_id"])
}

func TestBlankGeneratedQuestionFallsBackToTemplate(t *testing.T) {
	ctx := context.Background()
	p, _ := newPlanner(t, &stubGateway{question: "   \n "}, nil)

	session, err := p.Start(ctx, StartRequest{Profile: profile(), FocusAreas: []string{"Kafka"}, QuestionBudget: 2})
	require.NoError(t, err)

	turn, err := p.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, templateQuestion(Choice{Kind: model.KindFocus, Target: "Kafka"}, 0), turn.Question)

	got, err := p.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, got.Turns, 1)
	assert.NotEmpty(t, got.Turns[0].Question)
}

func TestKeyedMutex(t *testing.T) {
	k := NewKeyedMutex()

	unlock, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)

	other, err := k.Lock(context.Background(), "b")
	require.NoError(t, err)
	other()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionBusy)

	unlock()
	unlock()

	again, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)
	again()
	assert.Empty(t, k.slots)
}
