package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderNone      = "none"

	DefaultListingsAPIURL = "https://thinkimmo-api.mgraetz.de/thinkimmo"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	LLMProvider     string
	ModelName       string
	AnthropicAPIKey string
	GeminiAPIKey    string

	RedisURL string
	CacheTTL time.Duration

	ListingsAPIURL string

	EventProbability float64
	ProviderTimeout  time.Duration
	RandomSeed       uint64
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderNone)),
		ModelName:       getEnv("MODEL_NAME", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		ListingsAPIURL:  getEnv("LISTINGS_API_URL", DefaultListingsAPIURL),
	}

	var err error
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "24h")); err != nil {
		errs = append(errs, fmt.Errorf("CACHE_TTL: %w", err))
	}
	if cfg.ProviderTimeout, err = time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "60s")); err != nil {
		errs = append(errs, fmt.Errorf("PROVIDER_TIMEOUT: %w", err))
	}
	if cfg.EventProbability, err = strconv.ParseFloat(getEnv("EVENT_PROBABILITY", "0.5"), 64); err != nil {
		errs = append(errs, fmt.Errorf("EVENT_PROBABILITY: %w", err))
	} else if cfg.EventProbability < 0 || cfg.EventProbability > 1 {
		errs = append(errs, fmt.Errorf("EVENT_PROBABILITY must be within 0-1, got %g", cfg.EventProbability))
	}
	if cfg.RandomSeed, err = strconv.ParseUint(getEnv("RANDOM_SEED", "0"), 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("RANDOM_SEED: %w", err))
	}

	switch cfg.LLMProvider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
	case ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
