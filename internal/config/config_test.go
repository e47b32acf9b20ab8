package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "data.sqlite", cfg.DBDSN)
	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 60, cfg.RateLimit)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("RATE_LIMIT", "0")
	t.Setenv("SESSION_TTL", "30m")
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLocationFallback(t *testing.T) {
	assert.Equal(t, "America/Santiago", Config{Timezone: "America/Santiago"}.Location().String())
	assert.Equal(t, time.Local, Config{Timezone: "Mars/Olympus"}.Location())
}
