// Package config loads service configuration from environment variables so
// main stays lean. Defaults suit local development; production overrides
// everything via the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server binary needs at startup.
type Config struct {
	HTTPAddr         string
	ShutdownGrace    time.Duration
	RequestTimeout   time.Duration
	JWTSigningKey    string
	LogLevel         string
	LogFormat        string
	StoreBackend     string // "memory" or "postgres"
	DatabaseURL      string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBConnLifetime   time.Duration
	KafkaSeeds       []string // empty disables history publishing
	KafkaTopic       string
	OutboxInterval   time.Duration
	BatchConcurrency int // parallel checks per authorization batch
}

// Load builds a Config from environment variables.
func Load() Config {
	return Config{
		HTTPAddr:         getEnv("CASCADE_ADDR", ":8080"),
		ShutdownGrace:    getEnvDuration("CASCADE_SHUTDOWN_GRACE", 10*time.Second),
		RequestTimeout:   getEnvDuration("CASCADE_REQUEST_TIMEOUT", 30*time.Second),
		JWTSigningKey:    getEnv("CASCADE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		LogLevel:         getEnv("CASCADE_LOG_LEVEL", "info"),
		LogFormat:        getEnv("CASCADE_LOG_FORMAT", "json"),
		StoreBackend:     getEnv("CASCADE_STORE_BACKEND", "memory"),
		DatabaseURL:      getEnv("CASCADE_DATABASE_URL", ""),
		DBMaxOpenConns:   getEnvInt("CASCADE_DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:   getEnvInt("CASCADE_DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime:   getEnvDuration("CASCADE_DB_CONN_LIFETIME", 30*time.Minute),
		KafkaSeeds:       getEnvList("CASCADE_KAFKA_SEEDS"),
		KafkaTopic:       getEnv("CASCADE_KAFKA_TOPIC", "cascade.project.history"),
		OutboxInterval:   getEnvDuration("CASCADE_OUTBOX_INTERVAL", time.Second),
		BatchConcurrency: getEnvInt("CASCADE_BATCH_CONCURRENCY", 8),
	}
}

// Validate rejects configurations that cannot possibly serve traffic.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("CASCADE_DATABASE_URL is required when CASCADE_STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want memory or postgres)", c.StoreBackend)
	}
	if c.JWTSigningKey == "" {
		return fmt.Errorf("CASCADE_JWT_SIGNING_KEY must not be empty")
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("CASCADE_BATCH_CONCURRENCY must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
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

func getEnvList(key string) []string {
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
