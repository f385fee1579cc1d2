package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidSettings(t *testing.T) {
	path := writeSettings(t, `{
		"database": {
			"host": "db.example.com",
			"port": 5433,
			"user": "library",
			"password": "secret",
			"database": "library"
		},
		"logging": {"level": "debug"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Contains(t, cfg.Database.DSN(), "host=db.example.com")
	assert.Contains(t, cfg.Database.DSN(), "dbname=library")
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeSettings(t, `{
		"database": {
			"host": "localhost",
			"user": "library",
			"database": "library"
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data", cfg.Import.Dir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadRejectsIncompleteDatabaseBlock(t *testing.T) {
	path := writeSettings(t, `{
		"database": {"user": "library", "database": "library"}
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
