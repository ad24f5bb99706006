package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string
	Model             string
	OpenAIBaseURL     string // empty keeps the client's default host
	MaxAttempts       int
	RequestsPerMinute int
	RequestTimeout    time.Duration
	StatusPort        int
	NatsURL           string
	NatsToken         string
	SlackBotToken     string
	SlackChannel      string
}

// Load reads the environment. A .env file in the working directory is applied
// first when present; variables already set win over it.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LogLevel:          envStr("LOG_LEVEL", "info"),
		Model:             envStr("DIGEST_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL:     envStr("OPENAI_BASE_URL", ""),
		MaxAttempts:       envInt("DIGEST_MAX_ATTEMPTS", 10),
		RequestsPerMinute: envInt("DIGEST_REQUESTS_PER_MINUTE", 0),
		RequestTimeout:    time.Duration(envInt("DIGEST_REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,
		StatusPort:        envInt("DIGEST_STATUS_PORT", 0),
		NatsURL:           envStr("NATS_URL", ""),
		NatsToken:         envStr("NATS_TOKEN", ""),
		SlackBotToken:     envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:      envStr("SLACK_CHANNEL", ""),
	}
}

// SlackEnabled reports whether both Slack settings are present.
func (c Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannel != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
