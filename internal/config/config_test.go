package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("TEMPORAL_ADDRESS")
	os.Unsetenv("HTTP_LISTEN_ADDR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SCHEDULE_TIMEZONE")
	os.Unsetenv("TRIGGER_TIMEOUT")
	os.Unsetenv("RETENTION_CRON")
	os.Unsetenv("RETENTION_MIN_AGE")
	os.Unsetenv("RETENTION_MIN_KEPT")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, "localhost:7233", cfg.TemporalAddress)
	assert.Equal(t, ":8080", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Etc/UTC", cfg.ScheduleTimezone)
	assert.Equal(t, 20*time.Second, cfg.TriggerTimeout)
	assert.Equal(t, "*/5 * * * *", cfg.RetentionCron)
	assert.Equal(t, 6*time.Hour, cfg.RetentionMinAge)
	assert.Equal(t, 15, cfg.RetentionMinKept)
}

func TestLoad_AllEnvVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/cronhook")
	t.Setenv("TEMPORAL_ADDRESS", "temporal.example.com:7233")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SCHEDULE_TIMEZONE", "Europe/Oslo")
	t.Setenv("TRIGGER_TIMEOUT", "45s")
	t.Setenv("RETENTION_MIN_AGE", "12h")
	t.Setenv("RETENTION_MIN_KEPT", "30")
	t.Setenv("ARCHIVE_BUCKET", "execution-archive")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "postgres://localhost:5432/cronhook", cfg.DatabaseURL)
	assert.Equal(t, "temporal.example.com:7233", cfg.TemporalAddress)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Europe/Oslo", cfg.ScheduleTimezone)
	assert.Equal(t, 45*time.Second, cfg.TriggerTimeout)
	assert.Equal(t, 12*time.Hour, cfg.RetentionMinAge)
	assert.Equal(t, 30, cfg.RetentionMinKept)
	assert.Equal(t, "execution-archive", cfg.ArchiveBucket)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("TRIGGER_TIMEOUT", "twenty")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRIGGER_TIMEOUT")
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("RETENTION_MIN_KEPT", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETENTION_MIN_KEPT")
}

func TestValidate_MissingFields(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "TEMPORAL_ADDRESS")
	assert.Contains(t, err.Error(), "HTTP_LISTEN_ADDR")
}

func TestValidate_Worker_NoListenAddrRequired(t *testing.T) {
	cfg := &Config{
		DatabaseURL:      "postgres://localhost/cronhook",
		TemporalAddress:  "localhost:7233",
		ScheduleTimezone: "Etc/UTC",
	}
	require.NoError(t, cfg.Validate("worker"))
}

func TestValidate_BadTimezone(t *testing.T) {
	cfg := &Config{
		DatabaseURL:      "postgres://localhost/cronhook",
		TemporalAddress:  "localhost:7233",
		HTTPListenAddr:   ":8080",
		ScheduleTimezone: "Mars/Olympus",
	}
	err := cfg.Validate("api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULE_TIMEZONE")
}
