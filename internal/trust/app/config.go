package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SigningSecret     string        // Required: HMAC secret for session tokens
	Issuer            string        // Optional: issuer claim for tokens (default: ratewatch)
	SessionTTL        time.Duration // Optional: session token lifetime (default: 1h)
	AdminPasswordSeed string        // Optional: initial admin password when no credential exists

	CodeDigits   int           // Optional: verification code length (default: 6)
	CodeTTL      time.Duration // Optional: verification code lifetime (default: 30m)
	MaxAttempts  int           // Optional: daily verification attempt ceiling (default: 5)
	TimezoneName string        // Optional: timezone for attempt dates and notifications (default: UTC)

	DatabaseFile string // Optional: path to SQLite database file (default: ./ratewatch.db)
	PepperFile   string // Optional: path to password pepper file (default: ./pepper)

	CacheFile string        // Optional: path to rates cache snapshot (default: ./rates_cache.json)
	CacheTTL  time.Duration // Optional: rates cache TTL (default: 10m)
	RatesURL  string        // Optional: upstream rates API base URL

	SMTPHost        string // Optional: SMTP relay for admin notifications
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	NotifyFrom      string // Sender address for notifications
	NotifyRecipient string // Administrator address receiving notifications

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		SigningSecret:     os.Getenv("RATEWATCH_SIGNING_SECRET"),
		Issuer:            getEnvOrDefault("RATEWATCH_ISSUER", "ratewatch"),
		SessionTTL:        getEnvDurationOrDefault("RATEWATCH_SESSION_TTL", time.Hour),
		AdminPasswordSeed: os.Getenv("RATEWATCH_ADMIN_PASSWORD"),

		CodeDigits:   getEnvIntOrDefault("RATEWATCH_CODE_DIGITS", 6),
		CodeTTL:      getEnvDurationOrDefault("RATEWATCH_CODE_TTL", 30*time.Minute),
		MaxAttempts:  getEnvIntOrDefault("RATEWATCH_MAX_ATTEMPTS", 5),
		TimezoneName: getEnvOrDefault("RATEWATCH_TIMEZONE", "UTC"),

		DatabaseFile: getEnvOrDefault("RATEWATCH_DATABASE_FILE", "ratewatch.db"),
		PepperFile:   getEnvOrDefault("RATEWATCH_PEPPER_FILE", "pepper"),

		CacheFile: getEnvOrDefault("RATEWATCH_CACHE_FILE", "rates_cache.json"),
		CacheTTL:  getEnvDurationOrDefault("RATEWATCH_CACHE_TTL", 10*time.Minute),
		RatesURL:  os.Getenv("RATEWATCH_RATES_URL"),

		SMTPHost:        os.Getenv("RATEWATCH_SMTP_HOST"),
		SMTPPort:        getEnvIntOrDefault("RATEWATCH_SMTP_PORT", 587),
		SMTPUser:        os.Getenv("RATEWATCH_SMTP_USER"),
		SMTPPassword:    os.Getenv("RATEWATCH_SMTP_PASSWORD"),
		NotifyFrom:      os.Getenv("RATEWATCH_NOTIFY_FROM"),
		NotifyRecipient: os.Getenv("RATEWATCH_NOTIFY_RECIPIENT"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
