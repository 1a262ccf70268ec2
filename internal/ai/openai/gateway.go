// Package openai serves language model tasks with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/ai"
	"github.com/spigell/hire-engine/internal/utils"
)

const (
	defaultModel        = "gpt-4o-mini"
	defaultMaxLogLength = 200
	temperature         = 0.2
)

type completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type Gateway struct {
	completions completer
	model       string
	logger      *zap.Logger
	maxLogLen   int
}

func NewGateway(apiKey, model string, logger *zap.Logger, maxLogLength int) (*Gateway, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return newGateway(&client.Chat.Completions, model, logger, maxLogLength), nil
}

func newGateway(completions completer, model string, logger *zap.Logger, maxLogLength int) *Gateway {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Gateway{completions: completions, model: model, logger: logger, maxLogLen: maxLogLength}
}

func (g *Gateway) Model() string {
	return g.model
}

func (g *Gateway) Do(ctx context.Context, req ai.Request) (*ai.Response, error) {
	system, message, err := ai.BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("openai chat completion request",
		zap.String("task", string(req.Task)),
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, g.maxLogLen)),
	)

	completion, err := g.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(message),
		},
		Model:       openai.ChatModel(g.model),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return nil, errors.New("no response from openai")
	}

	raw := completion.Choices[0].Message.Content

	g.logger.Debug("openai chat completion response",
		zap.String("task", string(req.Task)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, g.maxLogLen)),
	)

	return ai.ParseResponse(req.Task, raw)
}
