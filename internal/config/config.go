package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/salon-booking/internal/booking"
)

const (
	defaultSubmitLockTTL     = 60 * time.Second
	defaultSchedulingTimeout = 20 * time.Second
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration
	SubmitLockTTL time.Duration

	// External scheduling system
	BookingAdapter       string
	SchedulingBaseURL    string
	SchedulingAPIKey     string
	SchedulingBusinessID string
	SchedulingTimeout    time.Duration

	// Availability
	BookingHorizonDays int
	BusinessOpen       string
	BusinessClose      string
	SlotInterval       time.Duration
	SalonTimezone      string

	CORSAllowedOrigins []string
	SubmitRatePerSec   float64
	SubmitRateBurst    int

	// Email
	EmailProvider       string
	SendGridAPIKey      string
	SendGridFromEmail   string
	SendGridFromName    string
	SESFromEmail        string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	SalonName        string
	SalonNotifyEmail string
}

// Load reads an optional .env file and then configuration from environment
// variables. Variables already set in the environment win over .env values.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SubmitLockTTL: getEnvAsDuration("SUBMIT_LOCK_TTL", defaultSubmitLockTTL),

		BookingAdapter:       strings.ToLower(strings.TrimSpace(getEnv("BOOKING_ADAPTER", "scheduling"))),
		SchedulingBaseURL:    getEnv("SCHEDULING_BASE_URL", ""),
		SchedulingAPIKey:     getEnv("SCHEDULING_API_KEY", ""),
		SchedulingBusinessID: getEnv("SCHEDULING_BUSINESS_ID", ""),
		SchedulingTimeout:    getEnvAsDuration("SCHEDULING_TIMEOUT", defaultSchedulingTimeout),

		BookingHorizonDays: getEnvAsInt("BOOKING_HORIZON_DAYS", booking.DefaultHorizonDays),
		BusinessOpen:       getEnv("BUSINESS_OPEN", "09:00"),
		BusinessClose:      getEnv("BUSINESS_CLOSE", "19:00"),
		SlotInterval:       getEnvAsDuration("SLOT_INTERVAL", 30*time.Minute),
		SalonTimezone:      getEnv("SALON_TIMEZONE", "UTC"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		SubmitRatePerSec:   getEnvAsFloat("SUBMIT_RATE_PER_SEC", 1),
		SubmitRateBurst:    getEnvAsInt("SUBMIT_RATE_BURST", 5),

		EmailProvider:       strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:   getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "Salon Bookings"),
		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		SalonName:        getEnv("SALON_NAME", "the salon"),
		SalonNotifyEmail: getEnv("SALON_NOTIFY_EMAIL", ""),
	}
}

// BusinessHours parses the configured slot window.
func (c *Config) BusinessHours() (booking.BusinessHours, error) {
	return booking.ParseBusinessHours(c.BusinessOpen, c.BusinessClose, c.SlotInterval)
}

// CheckSubmitTimeouts rejects a scheduling timeout that is not shorter than
// the submit lock TTL. Zero values are checked as their defaults.
func (c *Config) CheckSubmitTimeouts() error {
	timeout, ttl := c.SchedulingTimeout, c.SubmitLockTTL
	if timeout <= 0 {
		timeout = defaultSchedulingTimeout
	}
	if ttl <= 0 {
		ttl = defaultSubmitLockTTL
	}
	if timeout >= ttl {
		return fmt.Errorf("config: SCHEDULING_TIMEOUT (%s) must be shorter than SUBMIT_LOCK_TTL (%s)", timeout, ttl)
	}
	return nil
}

// Location resolves SalonTimezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SalonTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
