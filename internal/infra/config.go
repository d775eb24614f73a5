package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// Media provider account. All durable state lives provider-side, so these
	// are the only credentials the service carries.
	CloudName       string
	APIKey          string
	APISecret       string
	APIBaseURL      string
	DeliveryBaseURL string

	// LibraryTag scopes which provider assets belong to this application and
	// is attached to every asset the service uploads.
	LibraryTag string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string

	// Color-pop readiness polling. The loop is bounded: interval between
	// probes and a hard attempt cap, after which the workflow fails with a
	// timeout instead of spinning forever.
	PollInterval    time.Duration
	PollMaxAttempts int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		CloudName:        os.Getenv("CLOUDINARY_CLOUD_NAME"),
		APIKey:           os.Getenv("CLOUDINARY_API_KEY"),
		APISecret:        os.Getenv("CLOUDINARY_API_SECRET"),
		APIBaseURL:       getEnv("CLOUDINARY_API_BASE_URL", "https://api.cloudinary.com/v1_1"),
		DeliveryBaseURL:  getEnv("CLOUDINARY_DELIVERY_BASE_URL", "https://res.cloudinary.com"),
		LibraryTag:       getEnv("LIBRARY_TAG", "media-library"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		PollInterval:     time.Millisecond * time.Duration(getEnvInt("COLORPOP_POLL_INTERVAL_MS", 500)),
		PollMaxAttempts:  getEnvInt("COLORPOP_POLL_MAX_ATTEMPTS", 120),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if cfg.CloudName == "" {
		return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME is required")
	}

	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
