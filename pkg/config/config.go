package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional scorecard archive)
	Database DatabaseConfig

	// Redis (optional provider-result cache)
	Redis RedisConfig

	// Search providers
	Providers ProviderConfig

	// LLM collaborator
	OpenAIAPIKey string

	// Universe defaults
	TargetBrands int
	EnrichTopN   int
	RefreshCron  string

	// Report artifacts
	ReportsDir string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration for the scorecard archive.
// The archive is disabled when URL is empty.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig holds search-provider configuration and spend limits
type ProviderConfig struct {
	SearXNGBaseURL string
	SearXNGEngines string // comma-separated engine restriction passed through to SearXNG

	BraveAPIKey          string
	SerpAPIKey           string
	GoogleCSEAPIKey      string
	OpenCorporatesAPIKey string

	DailyQueryBudget     int
	MonthlySpendLimitUSD float64
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Providers: ProviderConfig{
			SearXNGBaseURL:       getEnv("SEARXNG_BASE_URL", ""),
			SearXNGEngines:       getEnv("SEARXNG_ENGINES", "duckduckgo,brave,bing"),
			BraveAPIKey:          getEnv("BRAVE_API_KEY", ""),
			SerpAPIKey:           getEnv("SERPAPI_API_KEY", ""),
			GoogleCSEAPIKey:      getEnv("GOOGLE_CSE_API_KEY", ""),
			OpenCorporatesAPIKey: getEnv("OPENCORPORATES_API_KEY", ""),
			DailyQueryBudget:     getEnvAsInt("DAILY_QUERY_BUDGET", 500),
			MonthlySpendLimitUSD: getEnvAsFloat("MONTHLY_SPEND_LIMIT_USD", 300.0),
		},

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		TargetBrands: getEnvAsInt("TARGET_BRANDS", 200),
		EnrichTopN:   getEnvAsInt("ENRICH_TOP_N", 30),
		RefreshCron:  getEnv("REFRESH_CRON", "0 0 * * * *"),

		ReportsDir: getEnv("REPORTS_DIR", "./reports/generated"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.TargetBrands < 1 {
		return fmt.Errorf("TARGET_BRANDS must be positive")
	}
	if c.EnrichTopN < 0 {
		return fmt.Errorf("ENRICH_TOP_N must not be negative")
	}

	return nil
}

// ArchiveEnabled reports whether the Postgres scorecard archive is configured
func (c *Config) ArchiveEnabled() bool {
	return c.Database.URL != ""
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

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
