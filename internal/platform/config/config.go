package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvLocal       = "local"
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Addr               string
	Environment        string
	Storage            string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	FrontendDir        string
	RunMigrations      bool
	MigrationsDir      string
	RunSeed            bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	IdempotencyTTL     time.Duration
	MetricsEnabled     bool
	ShutdownTimeout    time.Duration
}

// Load reads configuration from the optional YAML file named by CONFIG_PATH
// and from the environment. Environment variables win over file values.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	return Config{
		Addr:               v.GetString("app_addr"),
		Environment:        strings.ToLower(v.GetString("app_env")),
		Storage:            strings.ToLower(v.GetString("storage")),
		DatabaseURL:        v.GetString("database_url"),
		RedisURL:           v.GetString("redis_url"),
		JWTSecret:          v.GetString("jwt_secret"),
		FrontendDir:        v.GetString("frontend_dir"),
		RunMigrations:      v.GetBool("run_migrations"),
		MigrationsDir:      v.GetString("migrations_dir"),
		RunSeed:            v.GetBool("run_seed"),
		MaxBodyBytes:       v.GetInt64("max_body_bytes"),
		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
		IdempotencyTTL:     v.GetDuration("idempotency_ttl"),
		MetricsEnabled:     v.GetBool("metrics_enabled"),
		ShutdownTimeout:    v.GetDuration("shutdown_timeout"),
	}, nil
}

// MustLoad is Load for entry points: it panics on unreadable or invalid configuration.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("config error: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_addr", ":8080")
	v.SetDefault("app_env", EnvDevelopment)
	v.SetDefault("storage", StoragePostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("frontend_dir", "")
	v.SetDefault("run_migrations", true)
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("run_seed", false)
	v.SetDefault("max_body_bytes", 1048576)
	v.SetDefault("rate_limit_per_minute", 120)
	v.SetDefault("idempotency_ttl", 24*time.Hour)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE is %q", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be positive")
	}
	return nil
}
