package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employeedir/internal/platform/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, config.EnvDevelopment, cfg.Environment)
	assert.Equal(t, config.StoragePostgres, cfg.Storage)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.Equal(t, int64(1048576), cfg.MaxBodyBytes)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.True(t, cfg.MetricsEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	content := []byte("app_addr: \":9090\"\napp_env: local\nstorage: memory\nrate_limit_per_minute: 10\nidempotency_ttl: 1h\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "42")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, config.EnvLocal, cfg.Environment)
	assert.Equal(t, config.StorageMemory, cfg.Storage)
	assert.Equal(t, 42, cfg.RateLimitPerMinute)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := config.Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		Storage:            config.StorageMemory,
		Environment:        config.EnvDevelopment,
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 10,
		IdempotencyTTL:     time.Minute,
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "valid memory", mutate: func(*config.Config) {}},
		{name: "postgres without url", mutate: func(c *config.Config) { c.Storage = config.StoragePostgres }, wantErr: true},
		{name: "postgres with url", mutate: func(c *config.Config) {
			c.Storage = config.StoragePostgres
			c.DatabaseURL = "postgres://localhost/db"
		}},
		{name: "unknown storage", mutate: func(c *config.Config) { c.Storage = "sqlite" }, wantErr: true},
		{name: "production without secret", mutate: func(c *config.Config) { c.Environment = config.EnvProduction }, wantErr: true},
		{name: "small body limit", mutate: func(c *config.Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "zero rate limit", mutate: func(c *config.Config) { c.RateLimitPerMinute = 0 }, wantErr: true},
		{name: "zero idempotency ttl", mutate: func(c *config.Config) { c.IdempotencyTTL = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
