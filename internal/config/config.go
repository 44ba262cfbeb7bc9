// Package config collects every tunable the funnel reads from the
// environment. Product policy values (qualification threshold, minimum
// presentation duration) live here so operations can adjust them without
// a code change.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	devVisionURL      = "http://localhost:8000"
	deployedVisionURL = "https://api.agencyscout.ai"
)

type Config struct {
	Env  string // development or production
	Port string

	DatabaseURL string

	// Vision scoring service.
	VisionBaseURL  string
	VisionTimeout  time.Duration // inner timeout, governs the fallback decision
	FallbackDelay  time.Duration // artificial wait before a synthetic result
	AllowedOrigins []string

	// Funnel behavior.
	QualifyThreshold int           // minimum suitability score for the submission path
	MinPresentation  time.Duration // progress presentation never finishes earlier
	SafetyTimeout    time.Duration // outer bound before an attempt is abandoned

	// Image normalization budget.
	ImageMaxDimension int
	ImageMaxBytes     int
	ImageQuality      int

	// Asset storage (Supabase storage REST).
	StorageURL    string
	StorageKey    string
	StorageBucket string

	// RabbitMQ lead event fan-out.
	AMQPUser string
	AMQPPass string
	AMQPHost string
	AMQPPort string

	// Sales notification mail.
	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailTo   string
}

// Load reads the environment and applies defaults. Callers run
// godotenv.Load first; this package only consumes os.Getenv.
func Load() (*Config, error) {
	cfg := &Config{
		Env:         envOr("APP_ENV", "development"),
		Port:        envOr("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		VisionTimeout: envDuration("VISION_TIMEOUT", 30*time.Second),
		FallbackDelay: envDuration("VISION_FALLBACK_DELAY", 3*time.Second),

		QualifyThreshold: envInt("QUALIFY_THRESHOLD", 50),
		MinPresentation:  envDuration("MIN_PRESENTATION", 4*time.Second),
		SafetyTimeout:    envDuration("SAFETY_TIMEOUT", 45*time.Second),

		ImageMaxDimension: envInt("IMAGE_MAX_DIMENSION", 800),
		ImageMaxBytes:     envInt("IMAGE_MAX_BYTES", 400*1024),
		ImageQuality:      envInt("IMAGE_QUALITY", 80),

		StorageURL:    os.Getenv("STORAGE_URL"),
		StorageKey:    os.Getenv("STORAGE_KEY"),
		StorageBucket: envOr("STORAGE_BUCKET", "portraits"),

		AMQPUser: envOr("RABBITMQ_USER", "guest"),
		AMQPPass: envOr("RABBITMQ_PASS", "guest"),
		AMQPHost: envOr("RABBITMQ_HOST", "localhost"),
		AMQPPort: envOr("RABBITMQ_PORT", "5672"),

		MailHost: os.Getenv("MAIL_HOST"),
		MailPort: envInt("MAIL_PORT", 587),
		MailUser: os.Getenv("MAIL_USER"),
		MailPass: os.Getenv("MAIL_PASS"),
		MailTo:   os.Getenv("MAIL_SALES_TO"),
	}

	// The ambient environment switch: VISION_API_URL wins, otherwise the
	// env selects the base address.
	cfg.VisionBaseURL = os.Getenv("VISION_API_URL")
	if cfg.VisionBaseURL == "" {
		if cfg.Env == "production" {
			cfg.VisionBaseURL = deployedVisionURL
		} else {
			cfg.VisionBaseURL = devVisionURL
		}
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = []string{origins}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:5173", "*"}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.QualifyThreshold < 0 || c.QualifyThreshold > 100 {
		return fmt.Errorf("config: QUALIFY_THRESHOLD must be 0-100, got %d", c.QualifyThreshold)
	}
	if c.MinPresentation <= 0 {
		return fmt.Errorf("config: MIN_PRESENTATION must be positive")
	}
	if c.SafetyTimeout <= c.MinPresentation {
		return fmt.Errorf("config: SAFETY_TIMEOUT must exceed MIN_PRESENTATION")
	}
	if c.ImageMaxDimension < 64 {
		return fmt.Errorf("config: IMAGE_MAX_DIMENSION too small: %d", c.ImageMaxDimension)
	}
	if c.ImageQuality < 1 || c.ImageQuality > 100 {
		return fmt.Errorf("config: IMAGE_QUALITY must be 1-100, got %d", c.ImageQuality)
	}
	if c.ImageMaxBytes < 32*1024 {
		return fmt.Errorf("config: IMAGE_MAX_BYTES too small: %d", c.ImageMaxBytes)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
