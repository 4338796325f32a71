package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// app config, mostly agent provider related
type Config struct {
	Provider            string        // which llm provider backs the agent gateway
	AgentTimeout        time.Duration // deadline for a single agent call
	TotalVideoQuestions int           // spoken questions before the coding question
	SessionDelegation   bool          // whole-session delegation instead of per-step prompts
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:            getEnvOrDefault("AGENT_PROVIDER", "gemini"),
		AgentTimeout:        getEnvDuration("AGENT_TIMEOUT", 45*time.Second),
		TotalVideoQuestions: getEnvInt("TOTAL_VIDEO_QUESTIONS", 3),
		SessionDelegation:   getEnvBool("SESSION_DELEGATION", false),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" && config.Provider != "http" {
		return errors.New("unsupported agent provider: " + config.Provider + ". Currently supported: gemini, http")
	}
	if config.TotalVideoQuestions < 1 {
		return errors.New("TOTAL_VIDEO_QUESTIONS must be at least 1")
	}
	if config.AgentTimeout <= 0 {
		return errors.New("AGENT_TIMEOUT must be positive")
	}
	// provider-specific validation is handled by each provider's NewConfig
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
