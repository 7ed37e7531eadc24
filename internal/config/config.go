package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string
	AutoMigrate bool

	// Auth
	APIKey        string
	DashboardUser string
	DashboardPass string

	// Household
	Timezone        string
	Location        *time.Location
	DefaultCurrency string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	RateLimit RateLimitConfig
	Rates     RatesConfig
}

// RateLimitConfig bounds requests per client on the JSON API
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// RatesConfig points at the exchange-rate provider
type RatesConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		APIKey:          getEnv("LEDGER_API_KEY", ""),
		DashboardUser:   getEnv("DASHBOARD_USER", "admin"),
		DashboardPass:   getEnv("DASHBOARD_PASS", ""),
		Timezone:        getEnv("LEDGER_TIMEZONE", "Asia/Jakarta"),
		DefaultCurrency: strings.ToUpper(getEnv("LEDGER_DEFAULT_CURRENCY", "IDR")),
		Port:            getEnv("PORT", "8080"),
		CORSOrigins:     strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:             getEnv("ENV", "development"),
		Rates: RatesConfig{
			BaseURL: strings.TrimRight(getEnv("RATES_API_URL", "https://open.er-api.com/v6/latest"), "/"),
		},
	}

	var err error
	if cfg.AutoMigrate, err = strconv.ParseBool(getEnv("AUTO_MIGRATE", "true")); err != nil {
		return nil, fmt.Errorf("AUTO_MIGRATE must be a boolean: %w", err)
	}
	if cfg.Rates.Timeout, err = time.ParseDuration(getEnv("RATES_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("RATES_TIMEOUT must be a duration: %w", err)
	}
	if cfg.RateLimit.PerMinute, err = strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "120")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be an integer: %w", err)
	}
	if cfg.RateLimit.Burst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be an integer: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only what the admin CLI needs to reach the store
func LoadDatabase() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		Timezone:        getEnv("LEDGER_TIMEZONE", "Asia/Jakarta"),
		DefaultCurrency: strings.ToUpper(getEnv("LEDGER_DEFAULT_CURRENCY", "IDR")),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("LEDGER_TIMEZONE %q is not a valid time zone: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("LEDGER_API_KEY is required")
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("LEDGER_DEFAULT_CURRENCY must be a 3-letter code")
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("LEDGER_TIMEZONE %q is not a valid time zone: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
