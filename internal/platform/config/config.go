// Package config centralizes environment-driven configuration so main stays
// lean. Every knob has a development default; production overrides via env.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// Postgres captures database connection settings.
type Postgres struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Redis captures cache connection settings. An empty URL disables caching.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures event-stream settings. No brokers disables event publishing.
type Kafka struct {
	Brokers []string
	Topic   string
}

// SendGrid captures outbound email settings. An empty API key falls back to
// the log-only sender.
type SendGrid struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Worker captures the due-reminder worker cadence.
type Worker struct {
	Schedule  string
	BatchSize int
}

// Config is the full application configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	SendGrid SendGrid
	Worker   Worker

	// ConfigCacheTTL bounds staleness of cached reminder configurations.
	ConfigCacheTTL time.Duration
}

// FromEnv builds the full configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          env("IDMONITOR_ADDR", ":8080"),
			JWTSigningKey: env("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     env("JWT_ISSUER", "idmonitor"),
			JWTAudience:   env("JWT_AUDIENCE", "idmonitor-api"),
		},
		Postgres: Postgres{
			URL:             env("DATABASE_URL", ""),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: Redis{
			URL:          env("REDIS_URL", ""),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   env("KAFKA_REMINDER_TOPIC", "idmonitor.reminders"),
		},
		SendGrid: SendGrid{
			APIKey:    env("SENDGRID_API_KEY", ""),
			FromEmail: env("SENDGRID_FROM_EMAIL", "reminders@idmonitor.example"),
			FromName:  env("SENDGRID_FROM_NAME", "ID Monitor"),
		},
		Worker: Worker{
			Schedule:  env("WORKER_SCHEDULE", "@every 1m"),
			BatchSize: envInt("WORKER_BATCH_SIZE", 100),
		},
		ConfigCacheTTL: envDuration("CONFIG_CACHE_TTL", 5*time.Minute),
	}
}

func env(key, fallback string) string {
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

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
