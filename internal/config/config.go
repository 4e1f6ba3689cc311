package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort  string
	Environment string
	Version     string

	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	SessionDuration  time.Duration
	InactivityWindow time.Duration
	BcryptCost       int

	CleanupHour   int
	CleanupMinute int

	RateLimitAttempts int
	RateLimitWindow   time.Duration
	TrustProxy        bool

	// SecretEncryptionKey seals stored provider API keys. Empty means keys
	// are stored as given.
	SecretEncryptionKey string

	LogLevel string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present; values
// already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("PORT", "3000"),
		Environment: getEnv("APP_ENV", "development"),
		Version:     getEnv("APP_VERSION", "1.0.0"),

		DatabaseType: getEnv("DB_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./data/testcase-generator.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		SessionDuration:  getEnvDuration("SESSION_DURATION", 30*24*time.Hour),
		InactivityWindow: getEnvDuration("INACTIVITY_WINDOW", 30*24*time.Hour),
		BcryptCost:       getEnvInt("BCRYPT_COST", 12),

		CleanupHour:   getEnvInt("CLEANUP_HOUR", 2),
		CleanupMinute: getEnvInt("CLEANUP_MINUTE", 0),

		RateLimitAttempts: getEnvInt("RATE_LIMIT_ATTEMPTS", 10),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		TrustProxy:        getEnvBool("TRUST_PROXY", false),

		SecretEncryptionKey: getEnv("SECRET_ENCRYPTION_KEY", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Test Case Generator"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:3000"),
	}
}

// IsProduction reports whether the app runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// NewLogger builds the process logger. Production gets JSON lines, everything
// else gets the human-readable text handler.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
