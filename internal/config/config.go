// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stockreceipt/internal/domain/receiving"
)

// NotifyMode selects how inventory changes reach downstream systems.
type NotifyMode string

const (
	NotifyOutbox NotifyMode = "outbox"
	NotifyRedis  NotifyMode = "redis"
	NotifyNone   NotifyMode = "none"
)

// Config is the full service configuration.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string
	JWTSecret   string

	HTTPWriteTimeout time.Duration

	Receiving receiving.Config

	NotifyMode    NotifyMode
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

// Development reports whether the service runs in development mode.
func (c Config) Development() bool {
	return c.Env == "development"
}

// AuthEnabled reports whether API requests need a bearer token.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (Config, error) {
	e := env{getenv: getenv}

	rcv := receiving.DefaultConfig()
	rcv.Rules = receiving.DefaultRules(e.str("RECEIVING_CURRENCY", "USD"))
	rcv.Concurrency = e.int("RECEIVING_CONCURRENCY", receiving.DefaultConcurrency)
	rcv.DefaultWarehouseRef = e.str("RECEIVING_DEFAULT_WAREHOUSE", "")
	rcv.NotifyTimeout = e.duration("RECEIVING_NOTIFY_TIMEOUT", rcv.NotifyTimeout)
	rcv.DisableCreateFallback = e.bool("RECEIVING_DISABLE_CREATE_FALLBACK", false)

	cfg := Config{
		Port:               e.str("APP_PORT", "8080"),
		Env:                e.str("APP_ENV", "development"),
		LogLevel:           e.str("LOG_LEVEL", "info"),
		DatabaseURL:        e.str("DATABASE_URL", ""),
		JWTSecret:          e.str("JWT_SECRET", ""),
		HTTPWriteTimeout:   e.duration("HTTP_WRITE_TIMEOUT", 5*time.Minute),
		Receiving:          rcv,
		NotifyMode:         NotifyMode(strings.ToLower(e.str("NOTIFY_MODE", string(NotifyOutbox)))),
		RedisAddr:          e.str("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      e.str("REDIS_PASSWORD", ""),
		RedisDB:            e.int("REDIS_DB", 0),
		RedisChannel:       e.str("REDIS_CHANNEL", "inventory.changed"),
		OutboxPollInterval: e.duration("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:    e.int("OUTBOX_BATCH_SIZE", 100),
	}

	if len(e.errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(e.errs, "; "))
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.NotifyMode {
	case NotifyOutbox, NotifyRedis, NotifyNone:
	default:
		return fmt.Errorf("NOTIFY_MODE must be outbox, redis, or none, got %q", c.NotifyMode)
	}
	if c.Receiving.Concurrency < 1 {
		return fmt.Errorf("RECEIVING_CONCURRENCY must be at least 1, got %d", c.Receiving.Concurrency)
	}
	return nil
}

// RequireDatabase returns an error when DATABASE_URL is not set.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("required environment variable DATABASE_URL not set")
	}
	return nil
}

// env collects parse errors instead of silently falling back to defaults.
type env struct {
	getenv func(string) string
	errs   []string
}

func (e *env) str(key, defaultValue string) string {
	if value := strings.TrimSpace(e.getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func (e *env) int(key string, defaultValue int) int {
	value := strings.TrimSpace(e.getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %q is not an integer", key, value))
		return defaultValue
	}
	return n
}

func (e *env) bool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(e.getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %q is not a boolean", key, value))
		return defaultValue
	}
	return b
}

func (e *env) duration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(e.getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %q is not a duration", key, value))
		return defaultValue
	}
	return d
}
