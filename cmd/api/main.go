package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/config"
	"github.com/jcarlosmelian/promtscp/internal/database"
	"github.com/jcarlosmelian/promtscp/internal/handler"
	"github.com/jcarlosmelian/promtscp/internal/middleware"
	"github.com/jcarlosmelian/promtscp/internal/repository"
	"github.com/jcarlosmelian/promtscp/internal/router"
	"github.com/jcarlosmelian/promtscp/internal/service"
	"github.com/jcarlosmelian/promtscp/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	content, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("failed to load catalog")
	}

	ctx := context.Background()

	sessionRepo := repository.NewMemorySessionRepository(cfg.SessionTTL)
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		sessionRepo = repository.NewRedisSessionRepository(redisClient, cfg.SessionTTL, "")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	advisor, err := ai.NewAdvisor(ctx, ai.Config{
		Provider:     cfg.AIProvider,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIModel,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create expert advisor")
	}
	if advisor == nil {
		logger.Warn().Str("provider", cfg.AIProvider).Msg("expert queries disabled: no api key configured")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	publisher := service.NewChoicePublisher(natsConn, cfg.NATSSubjectPrefix, logger)
	sessionService := service.NewSessionService(sessionRepo, content, publisher, validate, service.SessionServiceConfig{
		ScoringDelay:  cfg.ScoringDelay,
		ExpertEnabled: advisor != nil,
	}, logger)
	expertService := service.NewExpertService(advisor, sessionRepo, validate, logger)
	catalogService := service.NewCatalogService(content)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		AccessLog: cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		SessionHandler: handler.NewSessionHandler(sessionService, logger),
		ExpertHandler:  handler.NewExpertHandler(expertService, logger),
		CatalogHandler: handler.NewCatalogHandler(catalogService),
		StreamHandler:  handler.NewStreamHandler(sessionService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, sessionService, logger)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", cfg.AppName).
		Str("env", cfg.AppEnv).
		Logger()
}

func waitForShutdown(app *fiber.App, sessions service.SessionService, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	sessions.Close()

	logger.Info().Msg("server stopped")
}
