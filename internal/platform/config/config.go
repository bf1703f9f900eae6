package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	AdminUserID        string
	GitHubOrganization string
	GitHubAPIBaseURL   string
	GitHubTimeout      time.Duration
	GitHubRetryMax     int

	SessionCookieName    string
	SessionSweepInterval time.Duration

	RateLimitPerSecond float64
	RequestTimeout     time.Duration
	EnableSwagger      bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "gatekeeper"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	adminID := strings.TrimSpace(os.Getenv("ADMIN_USER_ID"))
	if adminID == "" {
		adminID = "1"
	}

	cookie := strings.TrimSpace(os.Getenv("SESSION_COOKIE_NAME"))
	if cookie == "" {
		cookie = "session"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		AdminUserID:        adminID,
		GitHubOrganization: strings.TrimSpace(os.Getenv("GITHUB_ORGANIZATION")),
		GitHubAPIBaseURL:   strings.TrimSpace(os.Getenv("GITHUB_API_BASE_URL")),
		GitHubTimeout:      envDuration("GITHUB_TIMEOUT", 10*time.Second),
		GitHubRetryMax:     envInt("GITHUB_RETRY_MAX", 2),

		SessionCookieName:    cookie,
		SessionSweepInterval: envDuration("SESSION_SWEEP_INTERVAL", time.Minute),

		RateLimitPerSecond: envFloat("RATE_LIMIT_PER_SECOND", 20),
		RequestTimeout:     envDuration("REQUEST_TIMEOUT", 30*time.Second),
		EnableSwagger:      envBool("ENABLE_SWAGGER", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func envFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// envDuration accepts Go duration strings ("15s") or whole seconds ("15").
func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return fallback
		}
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
