package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hire-engine/internal/ai"
)

type stubGenerator struct {
	response    string
	err         error
	lastSystem  string
	lastMessage string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.lastSystem = system
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestGatewayGeneratesQuestion(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"question\": \"How did you size the Kafka cluster?\"}\n```"}
	gw := NewGateway(stub, zap.NewNop(), 0)

	resp, err := gw.Do(context.Background(), ai.Request{
		Task:    ai.TaskGenerateQuestion,
		Context: map[string]any{"kind": "focus", "target": "Kafka"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Question != "How did you size the Kafka cluster?" {
		t.Fatalf("unexpected question: %q", resp.Question)
	}

	if stub.lastSystem == "" {
		t.Fatalf("expected system instruction to be sent")
	}

	if !strings.Contains(stub.lastMessage, "Topic: Kafka") {
		t.Fatalf("expected topic in prompt, got: %s", stub.lastMessage)
	}
}

func TestGatewayExtractsClaims(t *testing.T) {
	stub := &stubGenerator{response: `{"claims": [{"claim": "Migrated billing to Go", "confidence": 0.6}]}`}
	gw := NewGateway(stub, nil, 50)

	resp, err := gw.Do(context.Background(), ai.Request{
		Task:    ai.TaskExtractClaims,
		Context: map[string]any{"answer": "I migrated billing to Go."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Claims) != 1 || resp.Claims[0].Claim != "Migrated billing to Go" {
		t.Fatalf("unexpected claims: %+v", resp.Claims)
	}
}

func TestGatewayPropagatesGeneratorError(t *testing.T) {
	boom := errors.New("quota")
	gw := NewGateway(&stubGenerator{err: boom}, zap.NewNop(), 0)

	_, err := gw.Do(context.Background(), ai.Request{Task: ai.TaskGenerateQuestion})
	if !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestGatewayLogsTruncatedPreviews(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{response: `{"question": "` + strings.Repeat("x", 100) + `"}`}
	gw := NewGateway(stub, zap.New(core), 10)

	if _, err := gw.Do(context.Background(), ai.Request{Task: ai.TaskGenerateQuestion}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("gemini generate content response").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 response entry, got %d", len(entries))
	}

	preview, _ := entries[0].ContextMap()["response_preview"].(string)
	if len([]rune(preview)) != 13 {
		t.Fatalf("expected truncated preview, got %q", preview)
	}
}
