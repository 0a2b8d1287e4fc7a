package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PORT", "NATS_ENABLED", "CACHE_ENABLED", "ELASTICSEARCH_ENABLED", "ELASTICSEARCH_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.NATS.Enabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Elasticsearch.Enabled)
	assert.Equal(t, "events", cfg.Elasticsearch.Index)
	assert.Equal(t, 30*time.Second, cfg.Elasticsearch.Timeout)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("CACHE_ENABLED", "1")
	t.Setenv("CACHE_TTL_SEC", "5")
	t.Setenv("ELASTICSEARCH_ENABLED", "yes")
	t.Setenv("ELASTICSEARCH_TIMEOUT", "2s")
	t.Setenv("SHUTDOWN_TIMEOUT_SEC", "3")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.True(t, cfg.NATS.Enabled)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
	assert.True(t, cfg.Elasticsearch.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Elasticsearch.Timeout)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "not-a-number")
	t.Setenv("X_BOOL", "maybe")

	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.True(t, getEnvBool("X_BOOL", true))
	assert.Equal(t, "fallback", getEnv("X_MISSING", "fallback"))
}
