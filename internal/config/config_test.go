package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 700*time.Millisecond, cfg.ScoringDelay)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.Equal(t, "gemini", cfg.AIProvider)
	require.Equal(t, "promtscp", cfg.NATSSubjectPrefix)
	require.False(t, cfg.ExpertEnabled())
}

func TestLoadReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("PROMTSCP_APP_PORT", ":9090")
	t.Setenv("PROMTSCP_SCORING_DELAY", "10ms")
	t.Setenv("PROMTSCP_AI_PROVIDER", "OpenAI")
	t.Setenv("PROMTSCP_OPENAI_API_KEY", "sk-test")
	t.Setenv("PROMTSCP_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 10*time.Millisecond, cfg.ScoringDelay)
	require.Equal(t, "openai", cfg.AIProvider)
	require.True(t, cfg.ExpertEnabled())
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoadFallsBackToUnprefixedGeminiKey(t *testing.T) {
	t.Setenv("PROMTSCP_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "from-api-key")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	require.Equal(t, "from-api-key", cfg.GeminiAPIKey)
	require.True(t, cfg.ExpertEnabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PROMTSCP_SCORING_DELAY", "soon")
	_, err := load(viper.New())
	require.Error(t, err)

	t.Setenv("PROMTSCP_SCORING_DELAY", "700ms")
	t.Setenv("PROMTSCP_AI_PROVIDER", "oracle")
	_, err = load(viper.New())
	require.Error(t, err)
}
