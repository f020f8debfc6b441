package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Telephony
	TwilioAuthToken string
	VoiceName       string
	VoiceLanguage   string
	GatherTimeout   time.Duration

	// Response generation
	LLMTiers       []string
	TierTimeout    time.Duration
	TurnBudget     time.Duration
	LLMMaxTokens   int
	AnthropicKey   string
	AnthropicModel string
	OpenAIKey      string
	OpenAIModel    string
	BedrockModelID string
	GeminiKey      string
	GeminiModel    string

	// Sessions
	SessionBackend       string
	SessionMaxTurns      int
	SessionMaxAge        time.Duration
	SessionSweepSchedule string
	RedisAddr            string
	RedisPassword        string
	RedisTLS             bool

	// Client directory
	DirectoryFile string
	DatabaseURL   string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Call records
	TranscriptBucket string
	CallLogTable     string
	BookingQueueURL  string

	// Notifications
	SendGridAPIKey  string
	NotifyFromEmail string
	NotifyFromName  string
	// NotifyFallback receives bookings for salons without an address.
	NotifyFallback  string
	SESEnabled      bool

	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honoured when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		TwilioAuthToken: getEnv("TWILIO_AUTH_TOKEN", ""),
		VoiceName:       getEnv("VOICE_NAME", "Polly.Liam-Neural"),
		VoiceLanguage:   getEnv("VOICE_LANGUAGE", "fr-CA"),
		GatherTimeout:   getEnvAsDuration("GATHER_TIMEOUT", 5*time.Second),

		LLMTiers:       getEnvAsList("LLM_TIERS", []string{"claude", "openai"}),
		TierTimeout:    getEnvAsDuration("TIER_TIMEOUT", 5*time.Second),
		TurnBudget:     getEnvAsDuration("TURN_BUDGET", 12*time.Second),
		LLMMaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 200),
		AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		GeminiKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		SessionBackend:       strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		SessionMaxTurns:      getEnvAsInt("SESSION_MAX_TURNS", 6),
		SessionMaxAge:        getEnvAsDuration("SESSION_MAX_AGE", time.Hour),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 5m"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),

		DirectoryFile: getEnv("DIRECTORY_FILE", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "ca-central-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		TranscriptBucket: getEnv("TRANSCRIPT_BUCKET", ""),
		CallLogTable:     getEnv("CALL_LOG_TABLE", ""),
		BookingQueueURL:  getEnv("BOOKING_QUEUE_URL", ""),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		NotifyFromEmail: getEnv("NOTIFY_FROM_EMAIL", ""),
		NotifyFromName:  getEnv("NOTIFY_FROM_NAME", "Marcel"),
		NotifyFallback:  getEnv("NOTIFY_FALLBACK_EMAIL", ""),
		SESEnabled:      getEnvAsBool("SES_ENABLED", false),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// UsesAWS reports whether any AWS-backed component is configured.
func (c *Config) UsesAWS() bool {
	return c.BedrockModelID != "" ||
		c.TranscriptBucket != "" ||
		c.CallLogTable != "" ||
		c.BookingQueueURL != "" ||
		c.SESEnabled
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, lower-casing entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
