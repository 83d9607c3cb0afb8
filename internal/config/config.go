package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env            string   `env:"APP_ENV" env-default:"local"`
	ServerPort     string   `env:"PORT" env-default:"5000"`
	DatabaseURL    string   `env:"DATABASE_URL" env-required:"true"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:5173"`
	SwaggerHost    string   `env:"SWAGGER_HOST"`
	ResetDB        bool     `env:"RESET_DB" env-default:"false"`

	JWTSecret     string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" env-default:"168h"`
	AuthRateLimit float64       `env:"AUTH_RATE_LIMIT" env-default:"10"`

	Redis RedisConfig
	LLM   LLMConfig
	Jobs  JobSearchConfig

	FreeApplications   int           `env:"FREE_APPLICATIONS" env-default:"50"`
	SubscriptionPeriod time.Duration `env:"SUBSCRIPTION_PERIOD" env-default:"720h"`
}

// RedisConfig configures the cache connection.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// LLMConfig selects the structured-extraction provider used for resume parsing.
type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" env-default:"anthropic"`
	APIKey   string `env:"LLM_API_KEY"`
	Model    string `env:"LLM_MODEL"`
}

// JobSearchConfig holds upstream job board credentials. Empty keys disable a source.
type JobSearchConfig struct {
	AdzunaAppID      string `env:"ADZUNA_APP_ID"`
	AdzunaAppKey     string `env:"ADZUNA_APP_KEY"`
	AdzunaCountry    string `env:"ADZUNA_COUNTRY" env-default:"us"`
	USAJobsAPIKey    string `env:"USAJOBS_API_KEY"`
	USAJobsUserAgent string `env:"USAJOBS_USER_AGENT"`
}

// Load builds Config from an optional .env file and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if cfg.FreeApplications < 0 {
		return nil, fmt.Errorf("FREE_APPLICATIONS must not be negative, got %d", cfg.FreeApplications)
	}
	return &cfg, nil
}

// IsLocal reports whether the service runs in a developer environment.
func (c *Config) IsLocal() bool {
	return c.Env == "local"
}
