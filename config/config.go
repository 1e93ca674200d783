package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment string
	PublicURL   string

	// Auth configuration
	JWTSecret   string
	TokenExpiry time.Duration

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration (live check-in feed)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Registration configuration
	MaxRegistrations int
	CountryCode      string

	// Delivery configuration
	DeliveryChannel string
	ResendDelay     time.Duration

	// WhatsApp gateway configuration
	WhatsAppBaseURL string
	WhatsAppToken   string
	WhatsAppSender  string

	// SMTP configuration
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SenderName    string
	SenderAddress string

	// Timeout configuration
	RequestTimeout time.Duration

	// Rate limiting
	RateLimitPerMinute int

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),
		PublicURL:   getEnv("PUBLIC_URL", "http://localhost:8090"),

		// Auth
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		TokenExpiry: getEnvAsDuration("TOKEN_EXPIRY", "720h"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Registration
		MaxRegistrations: getEnvAsInt("MAX_REGISTRATIONS", 1700),
		CountryCode:      getEnv("COUNTRY_CODE", "+62"),

		// Delivery
		DeliveryChannel: getEnv("DELIVERY_CHANNEL", "whatsapp"),
		ResendDelay:     getEnvAsDuration("RESEND_DELAY", "1s"),

		// WhatsApp gateway
		WhatsAppBaseURL: getEnv("WHATSAPP_BASE_URL", ""),
		WhatsAppToken:   getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppSender:  getEnv("WHATSAPP_SENDER", ""),

		// SMTP
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderName:    getEnv("SENDER_NAME", "Event Registration"),
		SenderAddress: getEnv("SENDER_ADDRESS", "noreply@localhost"),

		// Timeouts
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "8s"),

		// Rate limiting
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
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
