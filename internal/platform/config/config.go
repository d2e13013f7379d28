// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable via STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "6969".
	Port string

	// LogLevel controls the minimum log level: debug, info, warn, error.
	LogLevel string

	// StorageBackend selects the local store adapter: memory (default),
	// redis, or postgres.
	StorageBackend string

	// RedisURL is required when StorageBackend is redis.
	RedisURL string

	// DatabaseURL is required when StorageBackend is postgres.
	DatabaseURL string

	// MirrorBaseURL is the remote stub trip snapshots are mirrored to.
	// Empty disables mirroring.
	MirrorBaseURL string

	// SessionSecret signs session tokens. Defaults to a dev-only value.
	SessionSecret string

	// SessionTTL bounds session token lifetime.
	SessionTTL time.Duration

	// AuthDelay is the simulated network latency applied to login/signup.
	AuthDelay time.Duration

	// CORSOrigins is the list of allowed cross-origin request origins.
	CORSOrigins []string
}

// Load reads configuration from the environment, consulting an optional .env
// file first. It validates backend-specific requirements.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:           getenv("PORT", "6969"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		StorageBackend: getenv("STORAGE_BACKEND", BackendMemory),
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MirrorBaseURL:  os.Getenv("MIRROR_BASE_URL"),
		SessionSecret:  getenv("SESSION_SECRET", "dev-only-session-secret"),
		CORSOrigins:    splitCSV(getenv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var err error
	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.AuthDelay, err = getenvDuration("AUTH_DELAY", 800*time.Millisecond); err != nil {
		return Config{}, err
	}

	switch cfg.StorageBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 800ms): %w", key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
