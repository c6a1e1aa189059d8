// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"workid-wallet/pkg/db" // Import db package for its Config struct
)

// ErrMissingWebhookSecret is returned when PAYMENT_WEBHOOK_SECRET is unset.
var ErrMissingWebhookSecret = errors.New("PAYMENT_WEBHOOK_SECRET is required")

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort     string
	DB             db.Config
	DatabaseURL    string // When set, used instead of DB
	RunMigrations  bool
	StorageTimeout time.Duration
	RequestTimeout time.Duration
	Payments       PaymentConfig
	Webhook        WebhookConfig
}

// PaymentConfig configures the gateway adapter.
type PaymentConfig struct {
	WebhookSecret      string
	DefaultProvider    string
	MockGatewayEnabled bool
}

// WebhookConfig limits gateway callbacks per client IP.
type WebhookConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig loads configuration from an optional .env file and environment
// variables. It returns an error if any required variable is missing or invalid.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	runMigrations, err := strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
	}
	mockGateway, err := strconv.ParseBool(getEnv("MOCK_GATEWAY_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_GATEWAY_ENABLED: %w", err)
	}
	storageTimeout, err := positiveDuration("STORAGE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	requestTimeout, err := positiveDuration("REQUEST_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	rps, err := strconv.ParseFloat(getEnv("WEBHOOK_RATE_LIMIT_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid WEBHOOK_RATE_LIMIT_RPS %q", os.Getenv("WEBHOOK_RATE_LIMIT_RPS"))
	}
	burst, err := strconv.Atoi(getEnv("WEBHOOK_RATE_LIMIT_BURST", "10"))
	if err != nil || burst <= 0 {
		return nil, fmt.Errorf("invalid WEBHOOK_RATE_LIMIT_BURST %q", os.Getenv("WEBHOOK_RATE_LIMIT_BURST"))
	}

	secret := os.Getenv("PAYMENT_WEBHOOK_SECRET")
	if secret == "" {
		return nil, ErrMissingWebhookSecret
	}

	return &AppConfig{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"), // Default to localhost for local development
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "walletdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RunMigrations:  runMigrations,
		StorageTimeout: storageTimeout,
		RequestTimeout: requestTimeout,
		Payments: PaymentConfig{
			WebhookSecret:      secret,
			DefaultProvider:    getEnv("DEFAULT_PAYMENT_PROVIDER", "lankaqr"),
			MockGatewayEnabled: mockGateway,
		},
		Webhook: WebhookConfig{
			RateLimitRPS:   rps,
			RateLimitBurst: burst,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func positiveDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
