package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-me"

// Config holds all configuration for the application
type Config struct {
	Environment    string        `env:"GO_ENV" envDefault:"development"`
	Port           string        `env:"PORT" envDefault:"8080"`
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTExpiry      time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	Email  EmailConfig
	Notify NotifyConfig
}

// EmailConfig selects and configures the outbound mail provider.
type EmailConfig struct {
	Provider              string `env:"EMAIL_PROVIDER" envDefault:"noop"`
	FromAddress           string `env:"EMAIL_FROM_ADDRESS" envDefault:"no-reply@virtualevents.local"`
	FromName              string `env:"EMAIL_FROM_NAME" envDefault:"Virtual Events"`
	AWSRegion             string `env:"AWS_REGION"`
	AWSAccessKeyID        string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	SESInsecureSkipVerify bool   `env:"SES_INSECURE_SKIP_VERIFY"`
	ResendAPIKey          string `env:"RESEND_API_KEY"`
}

// NotifyConfig sizes the notification worker pool.
type NotifyConfig struct {
	Workers     int           `env:"NOTIFY_WORKERS" envDefault:"4"`
	QueueSize   int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`
	SendTimeout time.Duration `env:"NOTIFY_SEND_TIMEOUT" envDefault:"10s"`
}

// IsProduction reports whether GO_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	// Load .env file if not in production
	// We don't return error here because in production .env might not exist
	// and we rely on system environment variables
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	if c.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_BURST must be at least 1")
	}
	if c.Notify.Workers < 1 {
		return errors.New("NOTIFY_WORKERS must be at least 1")
	}
	if c.Notify.QueueSize < 1 {
		return errors.New("NOTIFY_QUEUE_SIZE must be at least 1")
	}
	return nil
}
