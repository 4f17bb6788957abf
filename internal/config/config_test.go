package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"DATA_DIR", "LOG_LEVEL", "PORT", "DEV_MODE", "REGIONS_FILE", "NOTIFIER_ENABLED", "MINUTES",
	"POLL_INTERVAL_SECONDS", "REQUEST_TIMEOUT_SECONDS", "NOTIFY_PAUSE_MS", "DEDUP_BACKEND",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "SLACK_WEBHOOK_TOKEN", "SLACK_WEBHOOK_URL",
	"STREAM_INTERVAL_SECONDS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
	// keep godotenv away from any developer .env
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.True(t, cfg.Alerts.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Alerts.Threshold)
	assert.Equal(t, time.Minute, cfg.Alerts.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Alerts.RequestTimeout)
	assert.Equal(t, time.Second, cfg.Alerts.NotifyPause)
	assert.Equal(t, "memory", cfg.Alerts.DedupBackend)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 5*time.Second, cfg.StreamInterval)
	assert.Equal(t, filepath.Join(cfg.DataDir, "alerts.db"), cfg.SQLitePath())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9100")
	t.Setenv("MINUTES", "5")
	t.Setenv("DEDUP_BACKEND", "redis")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("NOTIFIER_ENABLED", "false")
	t.Setenv("SLACK_WEBHOOK_TOKEN", "T0/B0/XYZ")
	t.Setenv("NOTIFY_PAUSE_MS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.Alerts.Threshold)
	assert.Equal(t, "redis", cfg.Alerts.DedupBackend)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.False(t, cfg.Alerts.Enabled)
	assert.Equal(t, "T0/B0/XYZ", cfg.Slack.WebhookToken)
	assert.Equal(t, time.Duration(0), cfg.Alerts.NotifyPause)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")
	t.Setenv("DEV_MODE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.False(t, cfg.DevMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"zero threshold", map[string]string{"MINUTES": "0"}, "MINUTES"},
		{"negative interval", map[string]string{"POLL_INTERVAL_SECONDS": "-1"}, "POLL_INTERVAL_SECONDS"},
		{"zero timeout", map[string]string{"REQUEST_TIMEOUT_SECONDS": "0"}, "REQUEST_TIMEOUT_SECONDS"},
		{"unknown backend", map[string]string{"DEDUP_BACKEND": "etcd"}, "DEDUP_BACKEND"},
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT"},
		{"zero stream interval", map[string]string{"STREAM_INTERVAL_SECONDS": "0"}, "STREAM_INTERVAL_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
