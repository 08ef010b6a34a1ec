package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcarlosmelian/promtscp/internal/service"
	"github.com/jcarlosmelian/promtscp/internal/utils"
)

// CatalogHandler serves the read-only walkthrough content.
type CatalogHandler struct {
	service service.CatalogService
}

// NewCatalogHandler creates a catalog handler instance.
func NewCatalogHandler(service service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Register binds the catalog route.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/", h.overview)
}

func (h *CatalogHandler) overview(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return utils.SendSuccess(c, "catalog retrieved", h.service.Overview())
}
