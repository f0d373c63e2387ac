package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/naming"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/password"
)

// Rate limit store backends
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string

	// Directory schema
	BaseDN string

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // connection string or sqlite path

	// Account lockout
	LockoutThreshold int

	// Metrics
	MetricsEnabled      bool
	MetricsToken        string        // optional bearer token for /metrics
	GaugeUpdateInterval time.Duration // directory size gauges

	// Rate limiting for the bind endpoint
	RateLimitEnabled   bool
	BindLimitPerMinute int
	RateLimitStore     string // "memory" or "redis"

	// Redis (only used when RateLimitStore = "redis")
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "daniel-authenticator.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":25565"),

		BaseDN: getEnv("BASE_DN", naming.DefaultBaseDN),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		LockoutThreshold: getEnvInt("LOCKOUT_THRESHOLD", password.DefaultLockoutThreshold),

		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		MetricsToken:        getEnv("METRICS_TOKEN", ""),
		GaugeUpdateInterval: getEnvDuration("GAUGE_UPDATE_INTERVAL", 30*time.Second),

		RateLimitEnabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
		BindLimitPerMinute: getEnvInt("BIND_LIMIT_PER_MINUTE", 60),
		RateLimitStore:     getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for driver %s", c.DatabaseDriver)
	}
	if c.LockoutThreshold <= 0 {
		return fmt.Errorf("LOCKOUT_THRESHOLD must be positive, got %d", c.LockoutThreshold)
	}
	if c.RateLimitEnabled && c.BindLimitPerMinute <= 0 {
		return fmt.Errorf("BIND_LIMIT_PER_MINUTE must be positive, got %d", c.BindLimitPerMinute)
	}
	switch c.RateLimitStore {
	case RateLimitStoreMemory, RateLimitStoreRedis:
	default:
		return fmt.Errorf("unsupported rate limit store: %s", c.RateLimitStore)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
