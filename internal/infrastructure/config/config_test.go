package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 9120, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 1000, cfg.Storage.Retention.MaxDeletedPerChannel)
	assert.Equal(t, 0, cfg.Storage.Retention.MaxMessages)
	assert.Equal(t, "./config/settings.yaml", cfg.Settings.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.IsUploaderEnabled())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8200
storage:
  type: sqlite
  sqlite:
    path: /tmp/archive.db
  retention:
    max_messages: 5000
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8200, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "/tmp/archive.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, 5000, cfg.Storage.Retention.MaxMessages)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "logging:\n  level: loud\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "storage:\n  type: postgres\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "storage:\n  retention:\n    max_messages: -1\n"))
	assert.Error(t, err)
}

func TestLoadUploaderValidation(t *testing.T) {
	_, err := Load(writeConfig(t, "uploader:\n  enabled: true\n"))
	assert.Error(t, err)

	cfg, err := Load(writeConfig(t, `
uploader:
  enabled: true
  bucket: archive-bucket
  region: eu-west-1
`))
	require.NoError(t, err)
	assert.True(t, cfg.IsUploaderEnabled())
	assert.Equal(t, 3, cfg.Uploader.MaxRetries)
}
