package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jcarlosmelian/promtscp/internal/middleware"
	"github.com/jcarlosmelian/promtscp/internal/scoring"
	"github.com/jcarlosmelian/promtscp/internal/service"
	"github.com/jcarlosmelian/promtscp/internal/session"
	"github.com/jcarlosmelian/promtscp/internal/utils"
)

var conflictErrors = []error{
	session.ErrWrongStage,
	session.ErrStageIncomplete,
	session.ErrAlreadyAnswered,
	session.ErrNotAnswered,
	session.ErrNoResult,
	session.ErrResultShown,
	service.ErrEvaluationPending,
	service.ErrExpertBusy,
}

var badRequestErrors = []error{
	session.ErrTaskUnavailable,
	session.ErrUnknownChoice,
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return details
}

func sessionID(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Params("id"))
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError maps service and transition errors onto HTTP statuses.
func writeError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", validationDetails(err))
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case matchesAny(err, badRequestErrors):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case matchesAny(err, conflictErrors):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, session.ErrMissingData), errors.Is(err, scoring.ErrUnknownStep):
		requestLogger(logger, c).Error().Err(err).Msg("walkthrough content incomplete")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
