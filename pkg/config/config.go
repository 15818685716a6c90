package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Market data
	Yahoo YahooConfig

	// HTTP client
	HTTPTimeout time.Duration

	// Redis (optional price cache)
	Redis RedisConfig

	// Estimate defaults used by the CLI and the web form
	Defaults EstimateDefaults

	// Logging
	LogLevel  string
	LogFormat string
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL       string
	UserAgent     string
	RatePerSecond float64
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
}

// EstimateDefaults are the pre-filled values of an estimate request
type EstimateDefaults struct {
	Amount       float64
	Confidence   float64
	Horizon      int
	BaseCurrency string
	LookbackDays int
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only caller of os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Yahoo: YahooConfig{
			BaseURL:       getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			UserAgent:     getEnv("YAHOO_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) varcalc/1.0"),
			RatePerSecond: getEnvAsFloat("YAHOO_RATE_PER_SEC", 2),
		},

		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", "30s"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", "24h"),
		},

		Defaults: EstimateDefaults{
			Amount:       getEnvAsFloat("DEFAULT_AMOUNT", 10000),
			Confidence:   getEnvAsFloat("DEFAULT_CONFIDENCE", 0.95),
			Horizon:      getEnvAsInt("DEFAULT_HORIZON", 1),
			BaseCurrency: getEnv("BASE_CURRENCY", "USD"),
			LookbackDays: getEnvAsInt("DEFAULT_LOOKBACK_DAYS", 365),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFrom loads an explicit .env file before reading the environment.
// An empty path behaves like Load.
func LoadFrom(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return Load()
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	if c.Yahoo.RatePerSecond <= 0 {
		return fmt.Errorf("YAHOO_RATE_PER_SEC must be > 0")
	}

	// Same bounds as the confidence slider of the web form
	if c.Defaults.Confidence < 0.90 || c.Defaults.Confidence > 0.99 {
		return fmt.Errorf("DEFAULT_CONFIDENCE must be between 0.90 and 0.99")
	}
	if c.Defaults.Horizon < 1 {
		return fmt.Errorf("DEFAULT_HORIZON must be >= 1")
	}
	if c.Defaults.Amount <= 0 {
		return fmt.Errorf("DEFAULT_AMOUNT must be > 0")
	}
	if c.Defaults.LookbackDays < 2 {
		return fmt.Errorf("DEFAULT_LOOKBACK_DAYS must be >= 2")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
