package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 72*time.Hour, cfg.JWTExp)
	assert.Equal(t, 5, cfg.DeliveryMaxAttempts)
	assert.True(t, cfg.EmbeddedWorker)
	assert.Contains(t, cfg.DBConnStr, "dbname=tle_zone_dashboard")
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Equal(t, 60, cfg.DeliverySweepSeconds)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("DELIVERY_MAX_ATTEMPTS", "2")
	t.Setenv("EMBEDDED_WORKER", "false")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "0")

	cfg := FromEnv()
	assert.Equal(t, "9000", cfg.APIPort)
	assert.Equal(t, 2, cfg.DeliveryMaxAttempts)
	assert.False(t, cfg.EmbeddedWorker)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Contains(t, cfg.DBConnStr, "host=db.internal")
	assert.Equal(t, 10, cfg.LoginRatePerMinute, "non-positive rate falls back to the default")
}
