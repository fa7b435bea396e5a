package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opencivic/govcontacts/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Quota.Backend)
	require.Equal(t, 50, cfg.Quota.DailyLimit)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GOVCONTACTS_SERVER_PORT", "9090")
	t.Setenv("GOVCONTACTS_QUOTA_BACKEND", "redis")
	t.Setenv("GOVCONTACTS_DAILY_LIMIT", "25")
	t.Setenv("GOVCONTACTS_REDIS_ADDR", "redis:6380")
	t.Setenv("GOVCONTACTS_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "redis", cfg.Quota.Backend)
	require.Equal(t, 25, cfg.Quota.DailyLimit)
	require.Equal(t, "redis:6380", cfg.Redis.Addr)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 3000\nquota:\n  daily_limit: 10\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("GOVCONTACTS_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 3000, cfg.Server.Port)
	require.Equal(t, 10, cfg.Quota.DailyLimit)
	// Untouched values keep their defaults.
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o644))
	t.Setenv("GOVCONTACTS_CONFIG_PATH", path)
	t.Setenv("GOVCONTACTS_SERVER_PORT", "4000")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 4000, cfg.Server.Port)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("GOVCONTACTS_QUOTA_BACKEND", "mongodb")
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("GOVCONTACTS_SERVER_PORT", "not-a-port")
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_InvalidDailyLimit(t *testing.T) {
	t.Setenv("GOVCONTACTS_DAILY_LIMIT", "0")
	_, err := config.Load()
	require.Error(t, err)
}
