package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Offer cache
	CacheEnabled  bool
	OfferCacheTTL time.Duration

	// Storage
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Offer cache defaults
		CacheEnabled:  getBoolOrDefault("OFFER_CACHE_ENABLED", true),
		OfferCacheTTL: getDurationOrDefault("OFFER_CACHE_TTL", 5*time.Second),

		// Storage defaults
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "sportsbook"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "sportsbook123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "sportsbook"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST cannot be empty")
	}

	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB cannot be empty")
	}

	if c.OfferCacheTTL <= 0 {
		return fmt.Errorf("OFFER_CACHE_TTL must be positive, got %s", c.OfferCacheTTL)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
