package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port            int
	LogLevel        string
	LogFormat       string
	DBUser          string
	DBPassword      string
	DBHost          string
	DBPort          string
	DBName          string
	APIKey          string        // API key gating every non-public endpoint
	TrustedProxies  []string      // Proxies whose X-Forwarded-For is believed
	WebhookURL      string        // Discord webhook for loot notifications; empty disables notification
	WebhookTimeout  time.Duration // Bound on a single notification attempt
	RefreshInterval time.Duration // Reference-data snapshot refresh cadence
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:   getEnv("LOG_LEVEL", "INFO"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "lootkeeper"),
		APIKey:     getEnv("API_KEY", ""),
		WebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
	}

	if raw := getEnv("TRUSTED_PROXIES", ""); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, p)
			}
		}
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	timeout, err := getDuration("WEBHOOK_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.WebhookTimeout = timeout

	refresh, err := getDuration("REFDATA_REFRESH_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = refresh

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
