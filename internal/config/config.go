// Package config provides configuration for the agentflow server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort        int
	ShutdownTimeout time.Duration
	StreamHeartbeat time.Duration

	// Database
	DatabaseURL string

	// LLM settings
	LLMMode        string
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	// Web search settings
	SearchURL        string
	SearchMaxResults int
	SearchTimeout    time.Duration
	SearchCacheSize  int
	SearchCacheTTL   time.Duration

	// Pipeline settings
	RunTimeout time.Duration
	MaxSteps   int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8000),
		ShutdownTimeout:  time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_MS", 10000)) * time.Millisecond,
		StreamHeartbeat:  time.Duration(getEnvInt("STREAM_HEARTBEAT_MS", 15000)) * time.Millisecond,
		DatabaseURL:      getEnv("DATABASE_URL", ":memory:"),
		LLMMode:          getEnv("LLM_MODE", ""),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://router.huggingface.co"),
		LLMAPIKey:        getEnv("LLM_API_KEY", os.Getenv("HUGGINGFACEHUB_API_TOKEN")),
		LLMModel:         getEnv("LLM_MODEL", "meta-llama/Meta-Llama-3.1-8B-Instruct"),
		LLMTemperature:   getEnvFloat("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:     getEnvInt("LLM_MAX_TOKENS", 1024),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		SearchURL:        getEnv("SEARCH_URL", "https://html.duckduckgo.com/html/"),
		SearchMaxResults: getEnvInt("SEARCH_MAX_RESULTS", 5),
		SearchTimeout:    time.Duration(getEnvInt("SEARCH_TIMEOUT_MS", 15000)) * time.Millisecond,
		SearchCacheSize:  getEnvInt("SEARCH_CACHE_SIZE", 128),
		SearchCacheTTL:   time.Duration(getEnvInt("SEARCH_CACHE_TTL_MS", 600000)) * time.Millisecond,
		RunTimeout:       time.Duration(getEnvInt("RUN_TIMEOUT_MS", 600000)) * time.Millisecond,
		MaxSteps:         getEnvInt("MAX_STEPS", 25),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
