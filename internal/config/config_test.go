package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "careerhub")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "a-secret")
	t.Setenv("JWT_REFRESH_SECRET", "r-secret")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMissingRequiredEnv))
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
	assert.Contains(t, err.Error(), "HTTP_PORT")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_TTL", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiresIn)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiresIn)
	assert.Equal(t, 600*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 4, cfg.Worker.Workers)
	assert.Equal(t, "text-embedding-004", cfg.LLM.EmbedModel)
	assert.False(t, cfg.LLM.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("REDIS_TTL", "120")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("GEMINI_API_KEY", "k")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiresIn)
	assert.Equal(t, 120*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 10, cfg.App.MaxUploadMB)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSOrigins)
	assert.True(t, cfg.LLM.Enabled())
	assert.True(t, cfg.IsProduction())
}
