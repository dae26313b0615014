package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Directory.SeedEnabled)
	assert.Equal(t, "user456", cfg.Directory.CurrentUserID)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, time.Duration(0), cfg.MockLatency)
	assert.True(t, cfg.Docs.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", EnvProduction)
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("DIRECTORY_SEED_ENABLED", "false")
	t.Setenv("DIRECTORY_CURRENT_USER_ID", " user123 ")
	t.Setenv("MOCK_LATENCY", "150ms")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Directory.SeedEnabled)
	assert.Equal(t, "user123", cfg.Directory.CurrentUserID)
	assert.Equal(t, 150*time.Millisecond, cfg.MockLatency)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Docs.Enabled, "docs are never served in production")
}

func TestParseDurationRejectsNegative(t *testing.T) {
	assert.Equal(t, time.Second, parseDuration("-5s", time.Second))
	assert.Equal(t, 2*time.Minute, parseDuration("2m", time.Second))
}
