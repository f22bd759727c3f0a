package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	analytics "gasbalance-cloud/internal/analytics/domain"
)

// Alert repository sources.
const (
	AlertsSourceMemory   = "memory"
	AlertsSourcePostgres = "postgres"
	AlertsSourceBackend  = "backend"
)

// HealthConfig tunes the network health score.
type HealthConfig struct {
	Thresholds   analytics.Thresholds `yaml:"thresholds"`
	Weights      analytics.Weights    `yaml:"weights"`
	DefaultScore int                  `yaml:"default_score"`
}

// NotifyConfig configures alert notifications.
type NotifyConfig struct {
	WebhookURL     string        `yaml:"webhook_url"`
	Template       string        `yaml:"template"`
	Cooldown       time.Duration `yaml:"cooldown"`
	DedupeWindow   time.Duration `yaml:"dedupe_window"`
	EscalateAfter  time.Duration `yaml:"escalate_after"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Config is the service configuration.
type Config struct {
	HTTPAddr       string        `yaml:"http_addr"`
	DatabaseURL    string        `yaml:"database_url"`
	RedisAddr      string        `yaml:"redis_addr"`
	BackendBaseURL string        `yaml:"backend_base_url"`
	BackendToken   string        `yaml:"backend_token"`
	JWTSecret      string        `yaml:"jwt_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	AlertsSource   string        `yaml:"alerts_source"`
	SeedAlerts     bool          `yaml:"seed_alerts"`
	Notify         NotifyConfig  `yaml:"notify"`
	Health         HealthConfig  `yaml:"health"`
}

// Load reads configuration from env and overlays GASBALANCE_CONFIG when set.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		DatabaseURL:    getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		BackendBaseURL: os.Getenv("BACKEND_BASE_URL"),
		BackendToken:   os.Getenv("BACKEND_TOKEN"),
		JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		SessionTTL:     getenvDuration("SESSION_TTL", 7*24*time.Hour),
		AlertsSource:   strings.ToLower(getenvDefault("ALERTS_SOURCE", AlertsSourceMemory)),
		SeedAlerts:     getenvBoolDefault("ALERTS_SEED", true),
		Notify: NotifyConfig{
			WebhookURL:     os.Getenv("ALERT_WEBHOOK_URL"),
			Template:       os.Getenv("ALERT_NOTIFY_TEMPLATE"),
			Cooldown:       getenvDuration("ALERT_NOTIFY_COOLDOWN", 0),
			DedupeWindow:   getenvDuration("ALERT_NOTIFY_DEDUPE_WINDOW", 0),
			EscalateAfter:  getenvDuration("ALERT_ESCALATE_AFTER", 0),
			RequestTimeout: getenvDuration("ALERT_NOTIFY_TIMEOUT", 5*time.Second),
		},
		Health: HealthConfig{
			Thresholds:   analytics.DefaultThresholds(),
			Weights:      analytics.DefaultWeights(),
			DefaultScore: getenvIntDefault("DEFAULT_HEALTH_SCORE", analytics.DefaultHealthScore),
		},
	}

	if path := os.Getenv("GASBALANCE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.AlertsSource {
	case AlertsSourceMemory:
	case AlertsSourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: alerts source postgres requires DATABASE_URL")
		}
	case AlertsSourceBackend:
		if c.BackendBaseURL == "" {
			return errors.New("config: alerts source backend requires BACKEND_BASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown alerts source %q", c.AlertsSource)
	}
	if _, err := c.HealthCalculator(); err != nil {
		return fmt.Errorf("config: health: %w", err)
	}
	return nil
}

// HealthCalculator builds the configured health calculator.
func (c Config) HealthCalculator() (analytics.HealthCalculator, error) {
	return analytics.NewHealthCalculator(c.Health.Thresholds, c.Health.Weights, c.Health.DefaultScore)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
