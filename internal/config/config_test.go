package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, "mongodb://localhost:27017/user-service", cfg.Mongo.URI)
	assert.Equal(t, "user-service", cfg.Mongo.Database)
	assert.Equal(t, 5*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, uint64(100), cfg.Mongo.MaxPoolSize)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, float64(10), cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.BurstCapacity)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSAllowedOrigins)
	assert.True(t, cfg.HTTP.MetricsEnabled)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017/accounts?retryWrites=true")
	t.Setenv("MONGODB_TIMEOUT_SECONDS", "1.5")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, "9090", cfg.App.HTTPPort)
	assert.Equal(t, "accounts", cfg.Mongo.Database)
	assert.Equal(t, 1500*time.Millisecond, cfg.Mongo.Timeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}

func TestLoadConfig_RedisAndLoggerFromEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_POOL_SIZE", "40")
	t.Setenv("MONGODB_MIN_POOL_SIZE", "5")
	t.Setenv("LOG_OUTPUT_PATH", "/var/log/users.log")
	t.Setenv("LOG_SLOW_QUERY_SECONDS", "0.5")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, "6380", cfg.Redis.Port)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 40, cfg.Redis.PoolSize)
	assert.Equal(t, uint64(5), cfg.Mongo.MinPoolSize)
	assert.Equal(t, "/var/log/users.log", cfg.Logger.OutputPath)
	assert.Equal(t, 0.5, cfg.Logger.SlowQuerySeconds)
	assert.False(t, cfg.HTTP.MetricsEnabled)
}

func TestLoadConfig_ExplicitDatabaseWins(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/fromuri")
	t.Setenv("MONGODB_DATABASE", "explicit")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "explicit", cfg.Mongo.Database)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := "HTTP_PORT=7070\nMONGODB_URI=mongodb://localhost:27017\nSERVICE_NAME=users-from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.App.HTTPPort)
	assert.Equal(t, DefaultDatabase, cfg.Mongo.Database)
	assert.Equal(t, "users-from-file", cfg.Logger.ServiceName)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing port", func(c *Config) { c.App.HTTPPort = "" }, "HTTP_PORT is required"},
		{"missing uri", func(c *Config) { c.Mongo.URI = "" }, "MONGODB_URI is required"},
		{"bad uri", func(c *Config) { c.Mongo.URI = "postgres://localhost" }, "MONGODB_URI is invalid"},
		{"zero timeout", func(c *Config) { c.Mongo.Timeout = 0 }, "MONGODB_TIMEOUT_SECONDS must be positive"},
		{"pool sizes", func(c *Config) { c.Mongo.MinPoolSize = 200 }, "MONGODB_MIN_POOL_SIZE"},
		{"limiter rate", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.RequestsPerSecond = 0
		}, "RATE_LIMIT_REQUESTS_PER_SECOND must be positive"},
		{"limiter burst", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.BurstCapacity = -1
		}, "RATE_LIMIT_BURST_CAPACITY must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("disabled limiter ignores its values", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit.RequestsPerSecond = 0
		assert.NoError(t, cfg.Validate())
	})
}
