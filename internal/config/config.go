package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                 int
	DatabaseURL          string
	LogLevel             string
	Env                  string // "development" enables the local auth bypass
	OpenAIAPIKey         string
	AnthropicAPIKey      string
	BillingSecretKey     string
	BillingWebhookSecret string
	NatsURL              string
	AppBaseURL           string // where checkout redirects land
}

func Load() Config {
	return Config{
		Port:                 envInt("PORT", 8080),
		DatabaseURL:          envStr("DATABASE_URL", ""),
		LogLevel:             envStr("LOG_LEVEL", "info"),
		Env:                  envStr("APP_ENV", "production"),
		OpenAIAPIKey:         envStr("OPENAI_API_KEY", ""),
		AnthropicAPIKey:      envStr("ANTHROPIC_API_KEY", ""),
		BillingSecretKey:     envStr("BILLING_SECRET_KEY", ""),
		BillingWebhookSecret: envStr("BILLING_WEBHOOK_SECRET", ""),
		NatsURL:              envStr("NATS_URL", ""),
		AppBaseURL:           envStr("APP_BASE_URL", "http://localhost:8080"),
	}
}

// Development reports whether the local auth bypass is active.
func (c Config) Development() bool {
	return c.Env == "development"
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
