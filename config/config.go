package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultMaxActiveCases is the hard cap of assigned lawsuits per lawyer
	DefaultMaxActiveCases = 10
	// DefaultHighWorkloadThreshold is the assigned-case count that triggers a workload warning
	DefaultHighWorkloadThreshold = 7
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	// Remote libSQL (Turso). When set it takes precedence over DBPath.
	TursoDatabaseURL string
	TursoAuthToken   string
	DBDebug          bool // log every SQL statement
	// Logging
	LogLevel  string
	LogFormat string // json or text
	// Assignment policy
	MaxActiveCases        int
	HighWorkloadThreshold int
	// HTTP
	AllowedOrigins    []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")

	defaultFormat := "text"
	if environment == "production" {
		defaultFormat = "json"
	}

	return &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		DBPath:                getEnv("DB_PATH", "db/app.db"),
		Environment:           environment,
		TursoDatabaseURL:      getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:        getEnv("TURSO_AUTH_TOKEN", ""),
		DBDebug:               getEnvBool("DB_DEBUG", false),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", defaultFormat),
		MaxActiveCases:        getEnvInt("MAX_ACTIVE_CASES", DefaultMaxActiveCases),
		HighWorkloadThreshold: getEnvInt("HIGH_WORKLOAD_THRESHOLD", DefaultHighWorkloadThreshold),
		AllowedOrigins:        strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		RateLimitRequests:     getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:       getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
	}
}

// Validate checks the settings that would otherwise break the assignment rules at runtime
func (c *Config) Validate() error {
	if c.MaxActiveCases <= 0 {
		return fmt.Errorf("MAX_ACTIVE_CASES must be positive (got %d)", c.MaxActiveCases)
	}
	if c.HighWorkloadThreshold <= 0 || c.HighWorkloadThreshold >= c.MaxActiveCases {
		return fmt.Errorf("HIGH_WORKLOAD_THRESHOLD must be between 1 and %d (got %d)", c.MaxActiveCases-1, c.HighWorkloadThreshold)
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	return nil
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("[WARNING] Invalid integer for %s (%q), using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("[WARNING] Invalid duration for %s (%q), using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
