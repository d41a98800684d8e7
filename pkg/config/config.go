package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the process-wide configuration, read from the environment once at
// startup and validated eagerly. Constructors receive the sections they need;
// nothing reads the environment ad hoc per call.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Mail     MailConfig

	// StoreMode selects the account store backend: "postgres" or "memory".
	StoreMode string

	// LimiterMode selects the OTP attempt limiter backend: "redis" or "memory".
	LimiterMode string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        string
	CORSOrigins string
	Environment string
}

// Load reads and validates the full configuration. It fails fast: a missing
// secret or a malformed value aborts startup instead of surfacing later in a
// request path.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Database:    loadDatabaseConfig(),
		Redis:       loadRedisConfig(),
		Auth:        loadAuthConfig(),
		Mail:        loadMailConfig(),
		StoreMode:   getEnv("STORE_MODE", "postgres"),
		LimiterMode: getEnv("OTP_LIMITER_MODE", "memory"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := c.Auth.validate(); err != nil {
		return err
	}
	switch c.StoreMode {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: unknown STORE_MODE %q (use 'postgres' or 'memory')", c.StoreMode)
	}
	switch c.LimiterMode {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: unknown OTP_LIMITER_MODE %q (use 'redis' or 'memory')", c.LimiterMode)
	}
	if err := c.Mail.validate(); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Env helpers
// ---------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
