package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "http://localhost:5000/api", cfg.Commerce.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Commerce.Timeout)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Hour, cfg.JWT.TTL())
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.DB.Enabled())
	assert.Equal(t, DBDriverPostgres, cfg.DB.Driver)
	assert.Equal(t, time.Minute, cfg.AuthRateLimit.Window)
	assert.Equal(t, 5, cfg.AuthRateLimit.EmailLimit)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvCommerceBaseURL, "https://shop.example.com/api")
	t.Setenv(EnvCommerceTimeout, "3s")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvCORSOrigins, "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProd())
	assert.Equal(t, "https://shop.example.com/api", cfg.Commerce.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Commerce.Timeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
}

func TestLoad_RejectsBadBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCommerceBaseURL, "ftp://files.example.com")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCommerceTimeout, "0s")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_DatabaseDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDBDSN, "file:carts.db")
	t.Setenv(EnvDBDriver, "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DB.Enabled())
	assert.Equal(t, DBDriverSQLite, cfg.DB.Driver)

	t.Setenv(EnvDBDriver, "mysql")
	_, err = Load()
	require.Error(t, err)
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvAppEnv, EnvLogLevel, EnvCommerceBaseURL, EnvCommerceTimeout, EnvCommerceToken,
		EnvServerPort, EnvCORSOrigins, EnvRedisURL, EnvDBDSN, EnvDBDriver, EnvJWTSecret, EnvJWTIssuer, EnvJWTExpMins,
	} {
		if prev, ok := os.LookupEnv(key); ok {
			key := key
			t.Cleanup(func() { _ = os.Setenv(key, prev) })
		}
		require.NoError(t, os.Unsetenv(key))
	}
}
