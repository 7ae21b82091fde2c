package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dodam-health/glucoquest/internal/logger"
)

type Config struct {
	GeminiAPIKey string
	OpenAIAPIKey string
	AIProvider   string // "gemini" or "openai"
	AITimeout    time.Duration
	RAGEnabled   bool
	DB           DBConfig
	Redis        RedisConfig
	Server       ServerConfig
	Logger       LoggerConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host    string
	Port    string
	Enabled bool
}

type ServerConfig struct {
	Port string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func parseTimeout(value string, fallback time.Duration) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func Load() (*Config, error) {
	return &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		AIProvider:   getEnvOrDefault("AI_PROVIDER", "gemini"),
		AITimeout:    parseTimeout(getEnvOrDefault("AI_TIMEOUT_SECONDS", "30"), 30*time.Second),
		RAGEnabled:   getEnvBool("RAG_ENABLED", true),
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "glucoquest"),
		},
		Redis: RedisConfig{
			Host:    getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:    getEnvOrDefault("REDIS_PORT", "6379"),
			Enabled: getEnvBool("REDIS_ENABLED", false),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("HTTP_PORT", "8080"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}
