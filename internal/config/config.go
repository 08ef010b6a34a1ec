package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	LogLevel           string
	RedisURL           string
	NATSURL            string
	NATSSubjectPrefix  string
	SessionTTL         time.Duration
	ScoringDelay       time.Duration
	CatalogPath        string
	AIProvider         string
	GeminiAPIKey       string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIModel        string
	ExpertRateLimit    int
	ExpertRateInterval time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// ExpertEnabled reports whether the configured provider has a credential.
func (c Config) ExpertEnabled() bool {
	switch c.AIProvider {
	case "openai":
		return c.OpenAIAPIKey != ""
	default:
		return c.GeminiAPIKey != ""
	}
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix("PROMTSCP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "PromptLCSP API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("nats.subject_prefix", "promtscp")
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("scoring.delay", "700ms")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("gemini.model", "gemini-2.5-flash-preview-04-17")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("expert.rate_limit", 10)
	v.SetDefault("expert.rate_interval", "1m")

	sessionTTL, err := parseDuration(v, "session.ttl")
	if err != nil {
		return Config{}, err
	}
	delay, err := parseDuration(v, "scoring.delay")
	if err != nil {
		return Config{}, err
	}
	interval, err := parseDuration(v, "expert.rate_interval")
	if err != nil {
		return Config{}, err
	}

	geminiKey := v.GetString("gemini_api_key")
	if geminiKey == "" {
		// Unprefixed fallbacks for the credential names used by the hosted frontend.
		_ = v.BindEnv("gemini_fallback", "GEMINI_API_KEY", "API_KEY")
		geminiKey = v.GetString("gemini_fallback")
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		LogLevel:           strings.ToLower(v.GetString("log.level")),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		NATSSubjectPrefix:  v.GetString("nats.subject_prefix"),
		SessionTTL:         sessionTTL,
		ScoringDelay:       delay,
		CatalogPath:        v.GetString("catalog.path"),
		AIProvider:         strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		GeminiAPIKey:       geminiKey,
		GeminiModel:        v.GetString("gemini.model"),
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		OpenAIModel:        v.GetString("openai.model"),
		ExpertRateLimit:    v.GetInt("expert.rate_limit"),
		ExpertRateInterval: interval,
	}

	switch cfg.AIProvider {
	case "gemini", "openai":
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.ScoringDelay < 0 {
		return Config{}, fmt.Errorf("scoring delay must not be negative")
	}

	if cfg.ExpertRateLimit <= 0 {
		cfg.ExpertRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
