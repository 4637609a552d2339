package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL     string
	TemporalAddress string
	HTTPListenAddr  string
	MetricsAddr     string
	LogLevel        string
	ServiceName     string

	// ScheduleTimezone is the fixed timezone applied to every recurring
	// schedule. Schedules are not timezone-configurable per cronjob.
	ScheduleTimezone string

	// TriggerTimeout bounds the outbound HTTP call of one trigger,
	// including the token-endpoint call.
	TriggerTimeout time.Duration

	// RetentionCron is the schedule of the execution retention sweep.
	RetentionCron    string
	RetentionMinAge  time.Duration
	RetentionMinKept int

	// Archive settings. When ArchiveBucket is empty, pruned executions
	// are deleted without being archived.
	ArchiveBucket    string
	ArchiveEndpoint  string
	ArchiveRegion    string
	ArchiveAccessKey string
	ArchiveSecretKey string

	TemporalTLSCert       string
	TemporalTLSKey        string
	TemporalTLSCACert     string
	TemporalTLSServerName string
}

func Load() (*Config, error) {
	triggerTimeout, err := getDuration("TRIGGER_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, err
	}
	retentionMinAge, err := getDuration("RETENTION_MIN_AGE", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	retentionMinKept, err := getInt("RETENTION_MIN_KEPT", 15)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		TemporalAddress:       getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		HTTPListenAddr:        getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsAddr:           getEnv("METRICS_ADDR", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		ServiceName:           getEnv("SERVICE_NAME", ""),
		ScheduleTimezone:      getEnv("SCHEDULE_TIMEZONE", "Etc/UTC"),
		TriggerTimeout:        triggerTimeout,
		RetentionCron:         getEnv("RETENTION_CRON", "*/5 * * * *"),
		RetentionMinAge:       retentionMinAge,
		RetentionMinKept:      retentionMinKept,
		ArchiveBucket:         getEnv("ARCHIVE_BUCKET", ""),
		ArchiveEndpoint:       getEnv("ARCHIVE_ENDPOINT", ""),
		ArchiveRegion:         getEnv("ARCHIVE_REGION", "us-east-1"),
		ArchiveAccessKey:      getEnv("ARCHIVE_ACCESS_KEY", ""),
		ArchiveSecretKey:      getEnv("ARCHIVE_SECRET_KEY", ""),
		TemporalTLSCert:       getEnv("TEMPORAL_TLS_CERT", ""),
		TemporalTLSKey:        getEnv("TEMPORAL_TLS_KEY", ""),
		TemporalTLSCACert:     getEnv("TEMPORAL_TLS_CA_CERT", ""),
		TemporalTLSServerName: getEnv("TEMPORAL_TLS_SERVER_NAME", ""),
	}

	return cfg, nil
}

// Validate checks that the fields required by the given component are set.
func (c *Config) Validate(component string) error {
	var missing []string

	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.TemporalAddress == "" {
		missing = append(missing, "TEMPORAL_ADDRESS")
	}
	if component == "api" && c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config for %s: %s", component, strings.Join(missing, ", "))
	}

	if _, err := time.LoadLocation(c.ScheduleTimezone); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", c.ScheduleTimezone, err)
	}
	if c.RetentionMinKept < 0 {
		return fmt.Errorf("RETENTION_MIN_KEPT must not be negative")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
