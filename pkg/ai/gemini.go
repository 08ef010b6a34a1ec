package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash-preview-04-17"

// GeminiConfig defines configuration options for the Gemini advisor.
type GeminiConfig struct {
	APIKey string
	Model  string
	Logger zerolog.Logger
}

// GeminiAdvisor implements Advisor against the Gemini API.
type GeminiAdvisor struct {
	client *genai.Client
	model  string
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiAdvisor builds a Gemini client for cfg.
func NewGeminiAdvisor(ctx context.Context, cfg GeminiConfig) (*GeminiAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiAdvisor{
		client: client,
		model:  cfg.Model,
		tracer: otel.Tracer("github.com/jcarlosmelian/promtscp/pkg/ai/gemini"),
		logger: cfg.Logger.With().Str("component", "gemini_advisor").Logger(),
	}, nil
}

// Name reports the provider and model.
func (g *GeminiAdvisor) Name() string {
	return ProviderGemini + ":" + g.model
}

// Ask sends prompt as a single user turn and returns the text of the answer.
func (g *GeminiAdvisor) Ask(parent context.Context, prompt string) (string, error) {
	ctx, span := g.tracer.Start(parent, "gemini.ask", trace.WithAttributes(
		attribute.String("model", g.model),
	))
	defer span.End()

	start := time.Now()
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	advisorDuration.WithLabelValues(ProviderGemini, g.model).Observe(time.Since(start).Seconds())
	if err != nil {
		advisorFailures.WithLabelValues(ProviderGemini, g.model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		advisorFailures.WithLabelValues(ProviderGemini, g.model).Inc()
		span.SetStatus(codes.Error, ErrEmptyResponse.Error())
		return "", ErrEmptyResponse
	}

	g.logger.Debug().Int("chars", len(text)).Msg("gemini answered")
	return text, nil
}
