package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hire-engine/internal/ai"
)

type stubCompleter struct {
	content string
	err     error
	params  openai.ChatCompletionNewParams
}

func (s *stubCompleter) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	s.params = body
	if s.err != nil {
		return nil, s.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: s.content},
		}},
	}, nil
}

func TestGatewayDo(t *testing.T) {
	stub := &stubCompleter{content: `{"question": "Which metric proved the rollout worked?"}`}
	gw := newGateway(stub, "", nil, 0)

	resp, err := gw.Do(context.Background(), ai.Request{
		Task:    ai.TaskGenerateQuestion,
		Context: map[string]any{"kind": "follow_up", "claim": "I improved the rollout."},
	})
	require.NoError(t, err)

	assert.Equal(t, "Which metric proved the rollout worked?", resp.Question)
	assert.Equal(t, openai.ChatModel(defaultModel), stub.params.Model)
	assert.Len(t, stub.params.Messages, 2)
}

func TestGatewayDoErrors(t *testing.T) {
	gw := newGateway(&stubCompleter{err: errors.New("rate limited")}, "gpt-4o", nil, 0)
	_, err := gw.Do(context.Background(), ai.Request{Task: ai.TaskExtractClaims})
	assert.ErrorContains(t, err, "rate limited")

	_, err = NewGateway("  ", "", nil, 0)
	assert.Error(t, err)
}
