package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	MongoDBURI      string
	MongoDBPassword string
	Environment     string
	LogLevel        string

	StripeSecretKey string
	Currency        string

	JWTSecret   string
	AuthJWKSURL string

	// Cancellation is rejected when less than this many hours remain
	// before the timeslot starts.
	CancelCutoffHours int

	// Ceiling on a single ride; an in-progress booking past this is
	// force-completed.
	RideMaxDuration   time.Duration
	RideSweepInterval time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		Currency:        getEnvWithDefault("CURRENCY", "usd"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		AuthJWKSURL: os.Getenv("AUTH_JWKS_URL"),

		CancelCutoffHours: getEnvIntWithDefault("CANCEL_CUTOFF_HOURS", 12),
		RideMaxDuration:   time.Duration(getEnvIntWithDefault("RIDE_MAX_DURATION_SECONDS", 120)) * time.Second,
		RideSweepInterval: time.Duration(getEnvIntWithDefault("RIDE_SWEEP_INTERVAL_SECONDS", 30)) * time.Second,

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.JWTSecret == "" && cfg.AuthJWKSURL == "" {
		return nil, fmt.Errorf("JWT_SECRET or AUTH_JWKS_URL is required")
	}
	if cfg.CancelCutoffHours < 0 {
		return nil, fmt.Errorf("CANCEL_CUTOFF_HOURS cannot be negative")
	}
	if cfg.RideMaxDuration <= 0 {
		return nil, fmt.Errorf("RIDE_MAX_DURATION_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// SlogLevel maps the configured level onto slog's scale; unknown values
// fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
