package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// app config, parsed from environment variables
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev"`

	// Postgres
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"voxa"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis (active-session tracking)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// AI provider
	Provider string `env:"AI_PROVIDER" envDefault:"gemini"`

	// Voice engine
	VoiceEngineKey string `env:"VOICE_ENGINE_PUBLIC_KEY"`
	VoiceEngineURL string `env:"VOICE_ENGINE_WS_URL" envDefault:"wss://api.vapi.ai/ws"`

	// Interview timing. The grace threshold distinguishes an engine error
	// caused by the hosted plan's duration cap from a genuine early failure;
	// it tracks an external SLA, so it stays configurable.
	InterviewDuration time.Duration `env:"INTERVIEW_DURATION" envDefault:"15m"`
	ErrorGrace        time.Duration `env:"ERROR_GRACE_THRESHOLD" envDefault:"30s"`

	// Anonymous session retention
	AnonymousRetention time.Duration `env:"ANON_SESSION_RETENTION" envDefault:"720h"`
	CleanupSchedule    string        `env:"CLEANUP_SCHEDULE" envDefault:"0 3 * * *"`
	CleanupEnabled     bool          `env:"CLEANUP_ENABLED" envDefault:"false"`
}

// loads configuration from .env (if present) and the environment
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Provider != "gemini" && cfg.Provider != "openai" {
		return errors.New("unsupported AI provider: " + cfg.Provider + ". Currently supported: gemini, openai")
	}
	if cfg.InterviewDuration <= 0 {
		return errors.New("interview duration must be positive")
	}
	if cfg.ErrorGrace < 0 {
		return errors.New("error grace threshold must not be negative")
	}
	// provider API key validation is handled by each provider's NewConfig
	return nil
}

// PostgresDSN assembles the gorm connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode)
}
