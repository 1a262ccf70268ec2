package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	resp  *Response
	err   error
	block bool
	calls int
}

func (s *stubGateway) Do(ctx context.Context, _ Request) (*Response, error) {
	s.calls++
	if s.block {
		time.Sleep(time.Second)
	}
	return s.resp, s.err
}

func TestCallReturnsResponse(t *testing.T) {
	gw := &stubGateway{resp: &Response{Question: "Why Go?"}}

	resp, err := Call(context.Background(), gw, time.Second, Request{Task: TaskGenerateQuestion})
	require.NoError(t, err)
	assert.Equal(t, "Why Go?", resp.Question)
	assert.Equal(t, 1, gw.calls)
}

func TestCallWrapsFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		gw    Gateway
		task  Task
		cause error
	}{
		{name: "nil gateway", gw: nil, task: TaskGenerateQuestion, cause: ErrNoGateway},
		{name: "gateway error", gw: &stubGateway{err: boom}, task: TaskExtractClaims, cause: boom},
		{name: "empty question", gw: &stubGateway{resp: &Response{}}, task: TaskGenerateQuestion},
		{name: "blank question", gw: &stubGateway{resp: &Response{Question: "   \n "}}, task: TaskGenerateQuestion},
		{name: "nil response", gw: &stubGateway{}, task: TaskExtractClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Call(context.Background(), tt.gw, time.Second, Request{Task: tt.task})

			var unavailable *UnavailableError
			require.True(t, errors.As(err, &unavailable))
			assert.Equal(t, tt.task, unavailable.Task)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestCallTimesOutOnBlockingGateway(t *testing.T) {
	gw := &stubGateway{block: true, resp: &Response{Question: "late"}}

	start := time.Now()
	_, err := Call(context.Background(), gw, 20*time.Millisecond, Request{Task: TaskGenerateQuestion})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestBuildPrompt(t *testing.T) {
	system, message, err := BuildPrompt(Request{
		Task:    TaskGenerateQuestion,
		Context: map[string]any{"kind": "focus", "target": "Kubernetes"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, system)
	assert.Contains(t, message, "Topic: Kubernetes")
	assert.Contains(t, message, "Question kind: focus")
	assert.Contains(t, message, "Role: unspecified")
	assert.Contains(t, message, `"target": "Kubernetes"`)
	assert.False(t, strings.Contains(message, "{{"))

	_, _, err = BuildPrompt(Request{Task: "summarize"})
	assert.Error(t, err)
}

func TestParseResponseQuestion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "json", raw: `{"question": "How did you scale it?"}`, want: "How did you scale it?"},
		{name: "fenced json", raw: "```json\n{\"question\": \"What broke?\"}\n```", want: "What broke?"},
		{name: "plain text", raw: "\n\"Tell me about a conflict.\"\nThanks", want: "Tell me about a conflict."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse(TaskGenerateQuestion, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Question)
		})
	}

	_, err := ParseResponse(TaskGenerateQuestion, `{"answer": "x"}`)
	assert.Error(t, err)
}

func TestParseResponseClaims(t *testing.T) {
	raw := `{"claims": [
		{"claim": "Led the payments team", "confidence": "0.7"},
		{"claim": "  ", "confidence": 0.9},
		{"claim": "Cut costs by 30%", "confidence": 1.4}
	]}`

	resp, err := ParseResponse(TaskExtractClaims, raw)
	require.NoError(t, err)
	assert.Equal(t, []Claim{
		{Claim: "Led the payments team", Confidence: 0.7},
		{Claim: "Cut costs by 30%", Confidence: 1},
	}, resp.Claims)

	resp, err = ParseResponse(TaskExtractClaims, `[{"claim": "Built a CLI", "confidence": 0.5}]`)
	require.NoError(t, err)
	assert.Len(t, resp.Claims, 1)

	_, err = ParseResponse(TaskExtractClaims, "not json")
	assert.Error(t, err)
}
