package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/navikit/navigator-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// HTTP server for health/status probing
	ServerAddr string `env:"SERVER_ADDR" envDefault:":10000"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Question catalog and session snapshot paths
	QuestionsPath string `env:"QUESTIONS_PATH" envDefault:"config/questions.yaml"`
	SnapshotPath  string `env:"SNAPSHOT_PATH" envDefault:"data/sessions.json"`

	// Session eviction
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	EvictInterval time.Duration `env:"EVICT_INTERVAL" envDefault:"1h"`

	// External service configuration
	OpenAICfg OpenAIConfig `envPrefix:"OPENAI_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN,notEmpty"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"30"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

// OpenAIConfig holds completion API configuration
type OpenAIConfig struct {
	APIKey          string               `env:"API_KEY"`
	Model           string               `env:"MODEL" envDefault:"gpt-4o-mini"`
	MaxTokens       int                  `env:"MAX_TOKENS" envDefault:"4000"`
	Temperature     float32              `env:"TEMPERATURE" envDefault:"0.7"`
	RequestTimeout  time.Duration        `env:"TIMEOUT" envDefault:"60s"`
	SuggestionCount int                  `env:"SUGGESTION_COUNT" envDefault:"5"`
	PlanCacheTTL    time.Duration        `env:"PLAN_CACHE_TTL" envDefault:"1h"`
	Retry           pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.OpenAICfg.SuggestionCount < 1 || cfg.OpenAICfg.SuggestionCount > 10 {
		errors = append(errors, fmt.Sprintf("OPENAI_SUGGESTION_COUNT must be between 1 and 10, got %d", cfg.OpenAICfg.SuggestionCount))
	}

	if cfg.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("SESSION_TTL must be at least 1 minute, got %s", cfg.SessionTTL))
	}

	if !cfg.EnableMocks && cfg.OpenAICfg.APIKey == "" {
		errors = append(errors, "OPENAI_API_KEY must be set when mocks are disabled")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
