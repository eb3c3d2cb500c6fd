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

// clearEnv blanks every variable Load reads; an empty value counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "STORAGE", "DATA_DIR", "DB_PATH", "REDIS_ADDR",
		"REDIS_PASSWORD", "DIRECTORY", "AUTH_LATENCY", "PAYMENT_LATENCY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, time.Second, cfg.AuthLatency)
	assert.Equal(t, 3*time.Second, cfg.PaymentLatency)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: 9090
logLevel: debug
storage: redis
redisAddr: cache:6379
directory: sqlite
dbPath: /tmp/shop.db
authLatency: 250ms
paymentLatency: 0s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, DirectorySQLite, cfg.Directory)
	assert.Equal(t, 250*time.Millisecond, cfg.AuthLatency)
	assert.Zero(t, cfg.PaymentLatency)
	assert.Equal(t, "data", cfg.DataDir, "unset keys keep their default")
	assert.True(t, cfg.UsesSQLite())

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: 9090\nstorage: file\n")
	t.Setenv("PORT", "7070")
	t.Setenv("STORAGE", "SQLite")
	t.Setenv("DB_PATH", "/var/lib/shop.db")
	t.Setenv("AUTH_LATENCY", "0s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "/var/lib/shop.db", cfg.DBPath)
	assert.Zero(t, cfg.AuthLatency)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "bad port env", env: map[string]string{"PORT": "eighty"}},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}},
		{name: "unknown storage", env: map[string]string{"STORAGE": "s3"}},
		{name: "unknown directory", env: map[string]string{"DIRECTORY": "ldap"}},
		{name: "bad latency", env: map[string]string{"PAYMENT_LATENCY": "soon"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "bad yaml", file: "port: [nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
