package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/config"
	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/handler"
	"github.com/jcarlosmelian/promtscp/internal/service"
)

func TestCatalogHandlerOverview(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	app := fiber.New()
	handler.NewCatalogHandler(service.NewCatalogService(cat)).Register(app.Group("/catalog"))

	resp, err := app.Test(newRequest(t, http.MethodGet, "/catalog/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderCacheControl), "max-age")

	var payload struct {
		Data dto.CatalogResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Len(t, payload.Data.Stages, 12)
	require.Len(t, payload.Data.Offers, 3)
	require.Len(t, payload.Data.Tasks, 5)
	for _, task := range payload.Data.Tasks {
		require.Zero(t, task.Order)
	}
}

func TestHealthCheck(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "promtscp", AppEnv: "test", AIProvider: "gemini"}))

	resp, err := app.Test(newRequest(t, http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "ok", payload.Data.Status)
	require.Equal(t, "promtscp", payload.Data.Service)
	require.False(t, payload.Data.ExpertEnabled)
}
