package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jcarlosmelian/promtscp/internal/config"
	"github.com/jcarlosmelian/promtscp/internal/handler"
	"github.com/jcarlosmelian/promtscp/internal/middleware"
	"github.com/jcarlosmelian/promtscp/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SessionHandler *handler.SessionHandler
	ExpertHandler  *handler.ExpertHandler
	CatalogHandler *handler.CatalogHandler
	StreamHandler  *handler.StreamHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.CatalogHandler != nil {
		deps.CatalogHandler.Register(api.Group("/catalog"))
	}

	sessions := api.Group("/sessions")
	if deps.StreamHandler != nil {
		deps.StreamHandler.Register(sessions)
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(sessions)
	}
	if deps.ExpertHandler != nil {
		window := cfg.ExpertRateInterval
		if window <= 0 {
			window = time.Minute
		}
		deps.ExpertHandler.Register(sessions, middleware.RateLimit("expert", cfg.ExpertRateLimit, window))
	}
}
