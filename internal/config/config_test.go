package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":25565", cfg.ServerAddr)
	assert.Equal(t, "dc=daniel-authenticator", cfg.BaseDN)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "daniel-authenticator.db", cfg.DatabaseDSN)
	assert.Equal(t, 15, cfg.LockoutThreshold)
	assert.Equal(t, 30*time.Second, cfg.GaugeUpdateInterval)
	assert.Equal(t, RateLimitStoreMemory, cfg.RateLimitStore)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("BASE_DN", "dc=example,dc=org")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=da dbname=da")
	t.Setenv("LOCKOUT_THRESHOLD", "5")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("GAUGE_UPDATE_INTERVAL", "2m")
	t.Setenv("RATE_LIMIT_STORE", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.ServerAddr)
	assert.Equal(t, "dc=example,dc=org", cfg.BaseDN)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "host=db user=da dbname=da", cfg.DatabaseDSN)
	assert.Equal(t, 5, cfg.LockoutThreshold)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 2*time.Minute, cfg.GaugeUpdateInterval)
	assert.Equal(t, RateLimitStoreRedis, cfg.RateLimitStore)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "oracle" }, "unsupported database driver"},
		{"missing dsn", func(c *Config) { c.DatabaseDSN = "" }, "DATABASE_DSN is required"},
		{"bad threshold", func(c *Config) { c.LockoutThreshold = 0 }, "LOCKOUT_THRESHOLD"},
		{"bad bind limit", func(c *Config) { c.BindLimitPerMinute = -1 }, "BIND_LIMIT_PER_MINUTE"},
		{"bad limiter store", func(c *Config) { c.RateLimitStore = "etcd" }, "unsupported rate limit store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
