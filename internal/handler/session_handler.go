package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/service"
	"github.com/jcarlosmelian/promtscp/internal/utils"
)

// SessionHandler exposes session lifecycle and intent endpoints.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler creates a session handler instance.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register binds session routes under the provided router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.end)

	intents := router.Group("/:id/intents")
	intents.Post("/advance-stage", h.simple(h.service.AdvanceStage))
	intents.Post("/reveal-basic-prompt", h.simple(h.service.RevealBasicPrompt))
	intents.Post("/select-task", h.selectTask)
	intents.Post("/reset-sequence", h.simple(h.service.ResetSequence))
	intents.Post("/check-sequence", h.simple(h.service.CheckSequence))
	intents.Post("/answer-principle", h.answerPrinciple)
	intents.Post("/advance-principle", h.simple(h.service.AdvancePrinciple))
	intents.Post("/toggle-enhancement", h.toggleEnhancement)
	intents.Post("/simulate-evaluation", h.simulateEvaluation)
	intents.Post("/advance-cursor", h.simple(h.service.AdvanceCursor))
}

func (h *SessionHandler) create(c *fiber.Ctx) error {
	view, err := h.service.Create(requestContext(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session started", view)
}

func (h *SessionHandler) get(c *fiber.Ctx) error {
	view, err := h.service.Get(requestContext(c), sessionID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "session retrieved", view)
}

func (h *SessionHandler) end(c *fiber.Ctx) error {
	if err := h.service.End(requestContext(c), sessionID(c)); err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "session ended", nil)
}

type intentFunc func(ctx context.Context, id string) (dto.SessionView, error)

func (h *SessionHandler) simple(fn intentFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := fn(requestContext(c), sessionID(c))
		if err != nil {
			return writeError(c, h.logger, err)
		}
		return utils.SendSuccess(c, "intent applied", view)
	}
}

func (h *SessionHandler) selectTask(c *fiber.Ctx) error {
	var req dto.SelectTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}
	view, err := h.service.SelectTask(requestContext(c), sessionID(c), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "intent applied", view)
}

func (h *SessionHandler) answerPrinciple(c *fiber.Ctx) error {
	var req dto.AnswerPrincipleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}
	view, err := h.service.AnswerPrinciple(requestContext(c), sessionID(c), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "intent applied", view)
}

func (h *SessionHandler) toggleEnhancement(c *fiber.Ctx) error {
	var req dto.ToggleEnhancementRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}
	view, err := h.service.ToggleEnhancement(requestContext(c), sessionID(c), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "intent applied", view)
}

func (h *SessionHandler) simulateEvaluation(c *fiber.Ctx) error {
	view, err := h.service.SimulateEvaluation(requestContext(c), sessionID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "evaluation started", view)
}
