package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Notifications.PollInterval)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{cfg.Frontend.BaseURL}, cfg.CORS.AllowedOrigins)
}

func TestLoadParsesListsAndDurations(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("NOTIFICATION_POLL_INTERVAL", "10s")
	t.Setenv("NOTIFICATION_MAX_BACKOFF", "2m")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10*time.Second, cfg.Notifications.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.Notifications.MaxBackoff)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := &Config{
		Environment:   "production",
		JWT:           JWTConfig{SecretKey: "your-secret-key-change-in-production"},
		Database:      DatabaseConfig{Password: "secret"},
		Notifications: NotificationConfig{PollInterval: time.Second, MaxBackoff: time.Minute},
		RateLimit:     RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "rotated"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBackoffShorterThanInterval(t *testing.T) {
	cfg := &Config{
		Notifications: NotificationConfig{PollInterval: time.Minute, MaxBackoff: time.Second},
		RateLimit:     RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
	}
	assert.Error(t, cfg.Validate())
}

func TestDatabaseTargetOmitsPassword(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "app", Password: "hunter2", Database: "farm"}
	assert.NotContains(t, d.Target(), "hunter2")
	assert.Contains(t, d.DSN(), "password=hunter2")
}
