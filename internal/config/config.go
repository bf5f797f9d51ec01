package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var ErrUnknownBackend = errors.New("unknown storage backend (must be memory, sqlite, postgres or redis)")

type ServerConfig struct {
	Port      string `yaml:"port"`
	RateLimit int    `yaml:"rate_limit"`
}

type PostgresConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type StorageConfig struct {
	Backend     string         `yaml:"backend"`
	SQLitePath  string         `yaml:"sqlite_path"`
	Postgres    PostgresConfig `yaml:"postgres"`
	Cache       bool           `yaml:"cache"`
	CacheTTL    time.Duration  `yaml:"cache_ttl"`
	RedisPrefix string         `yaml:"redis_prefix"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Owner    string        `yaml:"owner"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type RolloverConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Rollover RolloverConfig `yaml:"rollover"`
	Log      LogConfig      `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "8080",
			RateLimit: 100,
		},
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			SQLitePath: "data/habits.db",
			Postgres: PostgresConfig{
				Driver:  "pgx",
				Host:    "localhost",
				Port:    "5432",
				SSLMode: "disable",
			},
			CacheTTL:    30 * time.Minute,
			RedisPrefix: "habits:",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Auth: AuthConfig{
			Issuer:   "habit-tracker",
			Owner:    "owner",
			TokenTTL: 30 * 24 * time.Hour,
		},
		Rollover: RolloverConfig{
			Interval: time.Minute,
		},
		Log: LogConfig{
			Env: "production",
		},
	}
}

// Load applies defaults, then the optional YAML file at path, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	if err := overrideFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}

	if c.Storage.Backend == BackendSQLite && c.Storage.SQLitePath == "" {
		return errors.New("sqlite backend requires storage.sqlite_path")
	}

	if c.Auth.Secret != "" && c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}

	return nil
}

func (c *Config) PostgresDSN() string {
	p := c.Storage.Postgres
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
}

// RequiresRedis reports whether storage cannot work without Redis.
// The rate limiter uses Redis opportunistically and is not counted.
func (c *Config) RequiresRedis() bool {
	return c.Storage.Backend == BackendRedis || c.Storage.Cache
}

func overrideFromEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	if err := setInt(&cfg.Server.RateLimit, "RATE_LIMIT"); err != nil {
		return err
	}

	setString(&cfg.Storage.Backend, "STORAGE_BACKEND")
	setString(&cfg.Storage.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Storage.Postgres.Driver, "DB_DRIVER")
	setString(&cfg.Storage.Postgres.Host, "DB_HOST")
	setString(&cfg.Storage.Postgres.Port, "DB_PORT")
	setString(&cfg.Storage.Postgres.User, "DB_USER")
	setString(&cfg.Storage.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Storage.Postgres.Name, "DB_NAME")
	setString(&cfg.Storage.Postgres.SSLMode, "DB_SSLMODE")
	setString(&cfg.Storage.RedisPrefix, "REDIS_PREFIX")
	if err := setBool(&cfg.Storage.Cache, "STORAGE_CACHE"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Storage.CacheTTL, "CACHE_TTL"); err != nil {
		return err
	}

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if err := setInt(&cfg.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}

	setString(&cfg.Auth.Secret, "JWT_SECRET")
	setString(&cfg.Auth.Issuer, "JWT_ISSUER")
	setString(&cfg.Auth.Owner, "JWT_OWNER")
	if err := setDuration(&cfg.Auth.TokenTTL, "JWT_TTL"); err != nil {
		return err
	}

	if err := setDuration(&cfg.Rollover.Interval, "ROLLOVER_INTERVAL"); err != nil {
		return err
	}

	setString(&cfg.Log.Env, "APP_ENV")
	setString(&cfg.Log.Level, "LOG_LEVEL")

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
