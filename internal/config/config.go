package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Postgres (customer profiles)
	DatabaseURL string

	// Google Calendar (reservation store)
	CalendarID               string
	GoogleServiceAccountJSON string
	GoogleClientID           string
	GoogleClientSecret       string
	GoogleRefreshToken       string

	// Google Sheets (call log)
	CallLogSheetID string

	// Stripe (deposit payments)
	StripeSecretKey string
	StripeDryRun    bool

	// Email
	EmailProvider     string // sendgrid | ses | auto
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OfficeEmail       string

	// ClickSend (SMS links)
	ClickSendUsername string
	ClickSendAPIKey   string

	// AWS (contract archive on S3, optional SES email)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	ContractBucket      string

	// Redis (tool-call idempotency)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	ToolCallTTL   time.Duration

	// Admin endpoints
	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Venue scheduling
	VenueTimezone string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		CalendarID:               getEnv("CALENDAR_ID", "primary"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleClientID:           getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:       getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken:       getEnv("GOOGLE_REFRESH_TOKEN", ""),

		CallLogSheetID: getEnv("GOOGLE_SHEET_ID", ""),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		StripeDryRun:    getEnvAsBool("STRIPE_DRY_RUN", false),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Natasha Mae's Enterprises"),
		OfficeEmail:       getEnv("OFFICE_EMAIL", ""),

		ClickSendUsername: getEnv("CLICKSEND_USERNAME", ""),
		ClickSendAPIKey:   getEnv("CLICKSEND_API_KEY", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		ContractBucket:      getEnv("CONTRACT_BUCKET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		ToolCallTTL:   getEnvAsDuration("TOOL_CALL_TTL", 15*time.Minute),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		VenueTimezone: getEnv("VENUE_TIMEZONE", "America/New_York"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
