package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/analysis"
	"github.com/spigell/hire-engine/internal/interview"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/schema"
	"github.com/spigell/hire-engine/internal/store"
)

// statusOf maps engine errors onto HTTP status codes.
func statusOf(err error) int {
	var (
		fiberErr     *fiber.Error
		malformed    *model.MalformedInputError
		hintErr      *schema.ValidationError
		validateErrs validator.ValidationErrors
		closed       *model.SessionClosedError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &malformed), errors.As(err, &hintErr), errors.As(err, &validateErrs):
		return fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &closed),
		errors.Is(err, interview.ErrAnswerPending),
		errors.Is(err, interview.ErrNoOpenQuestion),
		errors.Is(err, interview.ErrSessionBusy),
		errors.Is(err, store.ErrReportExists),
		errors.Is(err, analysis.ErrSessionNotCompleted):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	message := err.Error()

	if status == fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		message = "internal server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  status,
	})
}
