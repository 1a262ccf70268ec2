package gemini

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/ai"
	"github.com/spigell/hire-engine/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

const defaultMaxLogLength = 200

// Gateway serves language model tasks with a Gemini generator.
type Gateway struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewGateway(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Gateway {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gateway{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (g *Gateway) Do(ctx context.Context, req ai.Request) (*ai.Response, error) {
	system, message, err := ai.BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("gemini generate content request",
		zap.String("task", string(req.Task)),
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, g.maxLogLen)),
	)

	raw, err := g.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("gemini generate content response",
		zap.String("task", string(req.Task)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, g.maxLogLen)),
	)

	return ai.ParseResponse(req.Task, raw)
}
