package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	env := "PORT=9000\nLOG_LEVEL=debug\nGAMERHUB_API_URL=http://file.example/api\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Setenv("GAMERHUB_API_URL", "http://env.example/api")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, "http://env.example/api", cfg.APIURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadRejectsBadStorage(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "redis")
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "REDIS_URL")

	t.Setenv("STORAGE_TYPE", "postgres")
	_, err = Load(t.TempDir())
	assert.ErrorContains(t, err, "invalid STORAGE_TYPE")
}

func TestLevelFallsBackToInfo(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}
