package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function which reads from environment variables.
func TestLoad(t *testing.T) {
	// Clear existing env vars that might interfere
	os.Clearenv()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "development", cfg.Environment)
		assert.Equal(t, "postgres", cfg.PostgresConfig.Host)
		assert.Equal(t, "5432", cfg.PostgresConfig.Port)
		assert.Equal(t, "travelindex", cfg.PostgresConfig.User)
		assert.Equal(t, "travelindex", cfg.PostgresConfig.DBName)
		assert.Equal(t, "redis", cfg.RedisConfig.Host)
		assert.Equal(t, "6379", cfg.RedisConfig.Port)
		assert.Equal(t, 0, cfg.RedisConfig.DB)
		assert.False(t, cfg.VaultConfig.Enabled)
		assert.Equal(t, 3, cfg.UpstreamConfig.RetryMax)
		assert.Equal(t, 500*time.Millisecond, cfg.UpstreamConfig.RetryWaitMin)
		assert.Equal(t, 8*time.Second, cfg.UpstreamConfig.RetryWaitMax)
		assert.Equal(t, 30*time.Second, cfg.UpstreamConfig.Timeout)
		assert.Equal(t, 720*time.Hour, cfg.ResolverConfig.CacheTTL)
		assert.Equal(t, "EUR", cfg.PricerConfig.Currency)
		assert.Equal(t, 7, cfg.PricerConfig.DepartureLeadDays)
		assert.Equal(t, 14, cfg.PricerConfig.ReturnLeadDays)
		assert.Equal(t, 5, cfg.PricerConfig.MaxOffers)
		assert.Equal(t, 6*time.Hour, cfg.WeatherConfig.TTL)
		assert.Equal(t, "0 */3 * * *", cfg.WeatherConfig.RefreshCron)
		assert.Equal(t, 10, cfg.IndexConfig.Concurrency)
		assert.True(t, cfg.IndexConfig.AuditEnabled)
		assert.True(t, cfg.WorkerEnabled)
		assert.True(t, cfg.InitSchema)
	})

	t.Run("environment variable override", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("DB_HOST", "db.example.com")
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("REDIS_HOST", "cache.example.com")
		t.Setenv("AIRPORT_CACHE_TTL", "48h")
		t.Setenv("WEATHER_TTL", "1h")
		t.Setenv("INDEX_CONCURRENCY", "4")
		t.Setenv("UPSTREAM_RETRY_MAX", "5")
		t.Setenv("WORKER_ENABLED", "false")
		t.Setenv("VAULT_ENABLED", "true")
		t.Setenv("VAULT_TOKEN", "root-token")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, "db.example.com", cfg.PostgresConfig.Host)
		assert.Equal(t, "secret", cfg.PostgresConfig.Password)
		assert.Equal(t, "cache.example.com", cfg.RedisConfig.Host)
		assert.Equal(t, 48*time.Hour, cfg.ResolverConfig.CacheTTL)
		assert.Equal(t, time.Hour, cfg.WeatherConfig.TTL)
		assert.Equal(t, 4, cfg.IndexConfig.Concurrency)
		assert.Equal(t, 5, cfg.UpstreamConfig.RetryMax)
		assert.False(t, cfg.WorkerEnabled)
		assert.True(t, cfg.VaultConfig.Enabled)
		assert.Equal(t, "root-token", cfg.VaultConfig.Token)
	})

	t.Run("whitespace values fall back to defaults", func(t *testing.T) {
		t.Setenv("PORT", "   ")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
	})
}

func TestLoadTestConfig(t *testing.T) {
	cfg := LoadTestConfig()

	assert.Equal(t, "test", cfg.Environment)
	assert.False(t, cfg.WorkerEnabled)
	assert.Equal(t, "travelindex_test", cfg.PostgresConfig.DBName)
	assert.Equal(t, 1, cfg.UpstreamConfig.RetryMax)
}
