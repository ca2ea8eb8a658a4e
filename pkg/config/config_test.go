package config

import (
	"os"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default HTTPPort to be 8080, got %s", cfg.HTTPPort)
	}

	if cfg.OfferCacheTTL != 5*time.Second {
		t.Errorf("expected default OfferCacheTTL to be 5s, got %v", cfg.OfferCacheTTL)
	}

	if !cfg.CacheEnabled {
		t.Error("expected cache to be enabled by default")
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Run("cache_ttl", func(t *testing.T) {
		os.Setenv("OFFER_CACHE_TTL", "30s")
		t.Cleanup(func() {
			os.Unsetenv("OFFER_CACHE_TTL")
		})

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.OfferCacheTTL != 30*time.Second {
			t.Errorf("expected OfferCacheTTL to be 30s, got %v", cfg.OfferCacheTTL)
		}
	})

	t.Run("cache_disabled", func(t *testing.T) {
		os.Setenv("OFFER_CACHE_ENABLED", "false")
		t.Cleanup(func() {
			os.Unsetenv("OFFER_CACHE_ENABLED")
		})

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.CacheEnabled {
			t.Error("expected cache to be disabled")
		}
	})

	t.Run("invalid_bool_falls_back_to_default", func(t *testing.T) {
		os.Setenv("OFFER_CACHE_ENABLED", "maybe")
		t.Cleanup(func() {
			os.Unsetenv("OFFER_CACHE_ENABLED")
		})

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !cfg.CacheEnabled {
			t.Error("expected invalid value to fall back to default true")
		}
	})
}

func TestConfig_Validation(t *testing.T) {
	t.Run("empty_http_port_rejected", func(t *testing.T) {
		cfg := &Config{
			PostgresHost:  "localhost",
			PostgresDB:    "sportsbook",
			OfferCacheTTL: time.Second,
		}

		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for empty HTTP port, got nil")
		}
	})

	t.Run("non_positive_cache_ttl_rejected", func(t *testing.T) {
		cfg := &Config{
			HTTPPort:      "8080",
			PostgresHost:  "localhost",
			PostgresDB:    "sportsbook",
			OfferCacheTTL: 0,
		}

		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for zero cache TTL, got nil")
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("valid_levels", func(t *testing.T) {
		for _, level := range []string{"", "debug", "info", "warn", "error"} {
			if _, err := NewLogger(level); err != nil {
				t.Errorf("expected level %q to be accepted, got %v", level, err)
			}
		}
	})

	t.Run("invalid_level_rejected", func(t *testing.T) {
		if _, err := NewLogger("verbose"); err == nil {
			t.Fatal("expected error for invalid log level, got nil")
		}
	})
}
