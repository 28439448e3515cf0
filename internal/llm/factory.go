package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default generation parameters. These mirror the tuning the dialogue
// pipeline was built around: a moderately creative temperature and a short
// response cap suitable for conversational answers.
const (
	defaultOllamaModel = "deepseek-r1:14b"
	defaultOpenAIModel = "gpt-4o-mini"

	defaultTemperature = 0.7
	defaultMaxTokens   = 500
)

// NewFromEnv constructs a Gateway by reading backend configuration from
// environment variables. MODEL_PROVIDER selects the backend.
//
// Environment variables:
//
//	MODEL_PROVIDER    = ollama | openai (default: ollama)
//
//	Ollama:  OLLAMA_HOST (default: http://localhost:11434),
//	         OLLAMA_MODEL (default: deepseek-r1:14b)
//	OpenAI:  OPENAI_API_KEY, OPENAI_MODEL (default: gpt-4o-mini),
//	         OPENAI_BASE_URL (default: https://api.openai.com)
//
//	Shared:  MODEL_TEMPERATURE (default: 0.7), MODEL_MAX_TOKENS (default: 500),
//	         MODEL_TIMEOUT (Go duration, default: 2m)
func NewFromEnv() (*ChatClient, error) {
	backend := getEnvOrDefault("MODEL_PROVIDER", "ollama")

	cfg := &Config{
		Temperature: getEnvFloat32("MODEL_TEMPERATURE", defaultTemperature),
		MaxTokens:   getEnvInt("MODEL_MAX_TOKENS", defaultMaxTokens),
		Timeout:     getEnvDuration("MODEL_TIMEOUT", 0),
	}

	switch backend {
	case "ollama":
		cfg.BaseURL = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		cfg.Model = getEnvOrDefault("OLLAMA_MODEL", defaultOllamaModel)

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("llm: OPENAI_API_KEY is required for openai backend")
		}
		cfg.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com")
		cfg.Model = getEnvOrDefault("OPENAI_MODEL", defaultOpenAIModel)
		cfg.APIKey = apiKey

	default:
		return nil, fmt.Errorf("llm: unknown backend %q — valid values: ollama, openai", backend)
	}

	return NewChatClient(cfg)
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat32 returns the float32 value of the named environment variable,
// or fallback if the variable is unset, empty, or not parseable.
func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

// getEnvDuration returns the duration value of the named environment
// variable, or fallback if the variable is unset, empty, or not parseable.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
