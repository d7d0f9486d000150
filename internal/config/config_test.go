package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	body := `
database:
  type: postgres
  postgres:
    host: db
    port: 5432
sync:
  daily_run_enabled: true
  daily_run_time: "01:30"
cache:
  ttl_seconds: 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db", cfg.Database.Postgres.Host)
	assert.True(t, cfg.Sync.DailyRunEnabled)
	assert.Equal(t, "01:30", cfg.Sync.DailyRunTime)
	assert.Equal(t, 10*time.Second, cfg.Cache.GetTTL())
	// untouched sections keep their defaults
	assert.Equal(t, 30, cfg.Cleanup.RetentionDays)
	assert.Equal(t, "full", cfg.Sync.DefaultMode)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
