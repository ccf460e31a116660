package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Ticket configuration
	TicketPrefix      string
	TicketPrice       string
	TicketSecret      string
	TokenMaxAgeDays   int
	VerifyBaseURL     string
	DashboardCacheTTL time.Duration

	// Admin access
	AdminEmails []string

	// Mail configuration
	MailProvider     string
	BrevoAPIKey      string
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string

	// Event details
	EventName     string
	EventDate     string
	EventLocation string
	DrawDate      string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Scan station
	ScanPort         string
	ScanPasscodeHash string

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Tickets
		TicketPrefix:      getEnv("TICKET_PREFIX", "IEEE-UJ"),
		TicketPrice:       getEnv("TICKET_PRICE", "50"),
		TicketSecret:      getEnv("TICKET_SECRET", "default-secret-change-in-production"),
		TokenMaxAgeDays:   getEnvAsInt("TOKEN_MAX_AGE_DAYS", 30),
		VerifyBaseURL:     getEnv("VERIFY_BASE_URL", "http://localhost:8090/verify"),
		DashboardCacheTTL: getEnvAsDuration("DASHBOARD_CACHE_TTL", "30s"),

		// Admins
		AdminEmails: getEnvAsList("ADMIN_EMAILS"),

		// Mail
		MailProvider:     getEnv("MAIL_PROVIDER", "brevo"),
		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@ieee-uj.org"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "IEEE UJ Raffle System"),

		// Event
		EventName:     getEnv("EVENT_NAME", "IEEE UJ Event"),
		EventDate:     getEnv("EVENT_DATE", "TBA"),
		EventLocation: getEnv("EVENT_LOCATION", "University of Johannesburg"),
		DrawDate:      getEnv("DRAW_DATE", "TBA"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Scan station
		ScanPort:         getEnv("SCAN_PORT", ""),
		ScanPasscodeHash: getEnv("SCAN_PASSCODE_HASH", ""),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

// IsAdmin reports whether email is on the configured allow-list.
func (c *Config) IsAdmin(email string) bool {
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsList(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
