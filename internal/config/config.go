// Package config provides environment and profile configuration for the bot.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds process-level configuration read from the environment.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Messaging gateway (outbound sends)
	GatewayURL    string
	GatewayToken  string
	GatewaySelfID string

	// Booking submission webhook
	BookingWebhookURL    string
	BookingWebhookAPIKey string
	BookingSource        string

	// Completion service
	OpenAIAPIKey string

	// Assistant profile file
	AssistantConfigPath string

	// Dedup guard
	DedupWindow time.Duration

	// NATS settings (optional booking events)
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings (admin API)
	JWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Gateway
		GatewayURL:    getEnv("GATEWAY_URL", "http://localhost:3000"),
		GatewayToken:  getEnv("GATEWAY_TOKEN", ""),
		GatewaySelfID: getEnv("GATEWAY_SELF_ID", ""),

		// Booking webhook
		BookingWebhookURL:    getEnv("BOOKING_WEBHOOK_URL", ""),
		BookingWebhookAPIKey: getEnv("BOOKING_WEBHOOK_API_KEY", ""),
		BookingSource:        getEnv("BOOKING_SOURCE", "WA"),

		// Completion service
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		// Assistant profile
		AssistantConfigPath: getEnv("ASSISTANT_CONFIG", "assistant.yaml"),

		// Dedup
		DedupWindow: getDurationEnv("DEDUP_WINDOW", time.Hour),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
