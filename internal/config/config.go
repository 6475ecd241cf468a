package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrDatabaseURLRequired is returned by Validate when no store target is set.
var ErrDatabaseURLRequired = errors.New("DATABASE_URL environment variable is required")

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis (optional; enables the shared rate-limit backend)
	RedisURL string

	// Telegram notifications (optional; notifier skips delivery when unset)
	TelegramToken  string
	TelegramChatID string

	// Admin read path (optional; route is disabled when unset)
	AdminToken string

	// CORS
	AllowedOrigins []string

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database: no default on purpose, Validate refuses to serve
		// without a store target.
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Telegram
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),

		// Admin
		AdminToken: getEnv("ADMIN_TOKEN", ""),

		// CORS
		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		// Rate limiting: 3 submissions per 15 minutes per client
		RateLimitMax:    parseInt(getEnv("RATE_LIMIT_MAX", "3"), 3),
		RateLimitWindow: parseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"), 15*time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	// Simple split by comma
	var result []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if start < i {
				result = append(result, s[start:i])
			}
			start = i + 1
		}
	}
	return result
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
