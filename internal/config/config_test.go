package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Supinic/supi-core-sub000/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Dialect)
	assert.Equal(t, "supicore.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1, cfg.Batch.Threshold)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
database:
  dialect: mysql
  dsn: "supi:secret@tcp(localhost:3306)/chat_data"
  max_open_conns: 10
  conn_max_lifetime: 300
logging:
  level: debug
  format: json
batch:
  threshold: 50
  chunk_size: 100
  stagger_ms: 250
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Dialect)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 4, cfg.Database.MaxIdleConns, "unset keys keep defaults")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, 250*time.Millisecond, cfg.Stagger())

	sc := cfg.StoreConfig()
	assert.Equal(t, store.MySQL, sc.Dialect)
	assert.Equal(t, 5*time.Minute, sc.ConnMaxLifetime)
}

func TestLoad_Attach(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: main.db
  attach:
    shop: shop.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"shop": "shop.db"}, cfg.StoreConfig().Attach)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SUPICORE_DATABASE_DSN", "/tmp/override.db")
	t.Setenv("SUPICORE_DATABASE_DIALECT", "sqlite3")
	t.Setenv("SUPICORE_LOG_LEVEL", "error")

	path := writeConfig(t, `
database:
  dialect: mysql
  dsn: file.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Database.DSN)
	assert.Equal(t, "sqlite3", cfg.Database.Dialect)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown dialect", "database:\n  dialect: postgres\n"},
		{"empty dsn", "database:\n  dsn: \"\"\n"},
		{"negative pool", "database:\n  max_open_conns: -1\n"},
		{"zero threshold", "batch:\n  threshold: 0\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"empty attach path", "database:\n  attach:\n    shop: \"\"\n"},
		{"invalid yaml", "database: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
