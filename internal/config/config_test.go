package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikolayk812/cartstore-demo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "http://localhost:3333", cfg.Catalog.BaseURL)
	assert.Zero(t, cfg.Catalog.Timeout)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "@RocketShoes:cart", cfg.Storage.Key)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, 100, cfg.Notify.Buffer)

	unit, err := cfg.CurrencyUnit()
	require.NoError(t, err)
	assert.Equal(t, "BRL", unit.String())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cartd.yaml")
	content := `
http:
  addr: ":9090"
catalog:
  base_url: "http://catalog:3333"
  timeout: 2s
storage:
  driver: redis
  redis:
    addr: "redis:6379"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CART_STORAGE_KEY", "@Shop:cart")
	t.Setenv("CART_LOG_LEVEL", "debug")
	t.Setenv("CART_NOTIFY_BUFFER", "25")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "http://catalog:3333", cfg.Catalog.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, config.DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, "@Shop:cart", cfg.Storage.Key)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 25, cfg.Notify.Buffer)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantError string
	}{
		{
			name:      "postgres without dsn",
			env:       map[string]string{"CART_STORAGE_DRIVER": "postgres"},
			wantError: "storage.postgres.dsn is empty",
		},
		{
			name:      "unknown driver",
			env:       map[string]string{"CART_STORAGE_DRIVER": "sqlite"},
			wantError: "storage.driver[sqlite] is not supported",
		},
		{
			name:      "zero notify buffer",
			env:       map[string]string{"CART_NOTIFY_BUFFER": "0"},
			wantError: "notify.buffer is not positive",
		},
		{
			name:      "bad currency",
			env:       map[string]string{"CART_CURRENCY": "XYZW"},
			wantError: "currency[XYZW] is not valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load("")
			require.ErrorContains(t, err, tt.wantError)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorContains(t, err, "v.ReadInConfig")
}
