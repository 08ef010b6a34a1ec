// Package ai wraps the language-model providers that answer the expert
// questions asked during the walkthrough.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ExpertPreamble frames every question sent to the model.
const ExpertPreamble = "Eres un experto en contratación del sector público (LCSP española) y en ingeniería de prompts. Responde de forma concisa: "

// Providers understood by NewAdvisor.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ErrEmptyResponse is returned when the provider answers without text.
var ErrEmptyResponse = errors.New("empty response from model")

var (
	advisorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "promtscp",
		Subsystem: "ai",
		Name:      "expert_duration_seconds",
		Help:      "Duration of expert model requests",
	}, []string{"provider", "model"})

	advisorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promtscp",
		Subsystem: "ai",
		Name:      "expert_failures_total",
		Help:      "Number of failed expert model requests",
	}, []string{"provider", "model"})
)

// Advisor answers a free-text question about procurement or prompting.
type Advisor interface {
	Ask(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ExpertPrompt prefixes query with the expert preamble.
func ExpertPrompt(query string) string {
	return ExpertPreamble + query
}

// Config selects and configures the advisor implementation.
type Config struct {
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	Logger       zerolog.Logger
}

// NewAdvisor builds the advisor for cfg.Provider. A nil advisor with a nil
// error means the provider has no credential and the feature is disabled.
func NewAdvisor(ctx context.Context, cfg Config) (Advisor, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		advisor, err := NewGeminiAdvisor(ctx, GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
		return advisor, nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, nil
		}
		advisor, err := NewOpenAIAdvisor(OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
		return advisor, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
