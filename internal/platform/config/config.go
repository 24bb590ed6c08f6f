package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr        string
	Environment string

	// ReadHeaderTimeout bounds how long the server waits for request headers.
	ReadHeaderTimeout time.Duration

	// DatabaseURL enables the Postgres-backed stores when set; otherwise the
	// in-memory stores are used.
	DatabaseURL string

	Redis RedisConfig

	// PollInterval is the change-monitor sweep cadence.
	PollInterval time.Duration

	// AlertThreshold is the minimum significance for a change to raise an alert.
	AlertThreshold int

	// Admin login for the dashboard endpoints. AdminPasswordHash wins when
	// set; otherwise AdminPassword is hashed at startup.
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	JWTSigningKey     string
}

// RedisConfig holds connection settings for the optional Redis backends
// (engagement counters, issuer sequences).
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:              getenv("BIZINTEL_ADDR", ":8080"),
		Environment:       getenv("BIZINTEL_ENV", "development"),
		ReadHeaderTimeout: getenvDuration("BIZINTEL_READ_HEADER_TIMEOUT", 5*time.Second),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		PollInterval:      getenvDuration("CHANGE_POLL_INTERVAL", 30*time.Second),
		AlertThreshold:    getenvInt("ALERT_THRESHOLD", 40),
		AdminUsername:     getenv("ADMIN_USERNAME", "admin"),
		// Development default; production sets ADMIN_PASSWORD_HASH instead.
		AdminPassword:     getenv("ADMIN_PASSWORD", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSigningKey:     getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getenvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
