package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/service"
	"github.com/jcarlosmelian/promtscp/internal/utils"
)

// ExpertHandler forwards free-text questions to the expert model.
type ExpertHandler struct {
	service service.ExpertService
	logger  zerolog.Logger
}

// NewExpertHandler creates an expert handler instance.
func NewExpertHandler(service service.ExpertService, logger zerolog.Logger) *ExpertHandler {
	return &ExpertHandler{
		service: service,
		logger:  logger.With().Str("component", "expert_handler").Logger(),
	}
}

// Register binds the expert route. Extra handlers, such as a rate limiter,
// run before the question is forwarded.
func (h *ExpertHandler) Register(router fiber.Router, before ...fiber.Handler) {
	handlers := append(before, h.ask)
	router.Post("/:id/expert", handlers...)
}

func (h *ExpertHandler) ask(c *fiber.Ctx) error {
	var req dto.ExpertQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	answer, err := h.service.Ask(requestContext(c), sessionID(c), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "expert answered", answer)
}
