// Package config loads server configuration from an optional YAML file with
// environment variable overrides. Every option has a development fallback;
// deployments must override at least the JWT secret and the bootstrap
// credentials.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Development fallbacks. Matching the original deployment defaults keeps
// first-boot behavior identical across environments.
const (
	defaultAddr          = ":5000"
	defaultDSN           = "database/charana.db"
	defaultJWTSecret     = "your-secret-key"
	defaultTokenLifetime = 7 * 24 * time.Hour
	defaultAdminUsername = "admin"
	defaultAdminPassword = "Jagannath@123"
	defaultAdminFullName = "Administrator"
)

// Config is the root configuration for the server process.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	RateLimit RateLimitConfig `yaml:"rate-limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP listener options.
type ServerConfig struct {
	Addr        string `yaml:"addr"`        // Listen address, e.g. ":5000".
	Development bool   `yaml:"development"` // Enables verbose diagnostics in responses and logs.
}

// DatabaseConfig holds the database DSN. A bare path opens SQLite; a
// postgres URL or key/value DSN opens PostgreSQL.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// JWTConfig holds token signing options.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// BootstrapConfig holds the default master admin credentials used only when
// the database contains no admin account at all.
type BootstrapConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	FullName string `yaml:"full-name"`
}

// RateLimitConfig holds login throttle options. RedisAddr switches the
// limiter to a shared Redis store; empty keeps the in-process store.
type RateLimitConfig struct {
	MaxAttempts   int           `yaml:"max-attempts"`
	Window        time.Duration `yaml:"window"`
	SweepInterval time.Duration `yaml:"sweep-interval"`
	RedisAddr     string        `yaml:"redis-addr"`
	RedisPassword string        `yaml:"redis-password"`
}

// LogConfig holds log output options. File enables rotating file output in
// addition to stderr.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: defaultAddr},
		Database: DatabaseConfig{DSN: defaultDSN},
		JWT:      JWTConfig{Secret: defaultJWTSecret, Expiry: defaultTokenLifetime},
		Bootstrap: BootstrapConfig{
			Username: defaultAdminUsername,
			Password: defaultAdminPassword,
			FullName: defaultAdminFullName,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts:   5,
			Window:        time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Log: LogConfig{MaxSizeMB: 50, MaxBackups: 5, MaxAgeDays: 30},
	}
}

// Load reads the YAML file at path (if it exists) on top of the defaults,
// then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		raw, errRead := os.ReadFile(path)
		switch {
		case errRead == nil:
			if errUnmarshal := yaml.Unmarshal(raw, &cfg); errUnmarshal != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		case os.IsNotExist(errRead):
			// Missing file is fine; env and defaults carry the process.
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	}

	applyEnv(&cfg)

	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultTokenLifetime
	}
	if cfg.RateLimit.MaxAttempts <= 0 {
		cfg.RateLimit.MaxAttempts = 5
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Hour
	}
	if cfg.RateLimit.SweepInterval <= 0 {
		cfg.RateLimit.SweepInterval = 5 * time.Minute
	}
	return cfg, nil
}

// applyEnv overlays recognized environment variables onto cfg.
func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "CHARANA_ADDR")
	setBool(&cfg.Server.Development, "CHARANA_DEVELOPMENT")
	setString(&cfg.Database.DSN, "CHARANA_DB_DSN")
	setString(&cfg.JWT.Secret, "CHARANA_JWT_SECRET")
	setDuration(&cfg.JWT.Expiry, "CHARANA_JWT_EXPIRE")
	setString(&cfg.Bootstrap.Username, "CHARANA_ADMIN_USERNAME")
	setString(&cfg.Bootstrap.Password, "CHARANA_ADMIN_PASSWORD")
	setString(&cfg.Bootstrap.FullName, "CHARANA_ADMIN_NAME")
	setString(&cfg.RateLimit.RedisAddr, "CHARANA_REDIS_ADDR")
	setString(&cfg.RateLimit.RedisPassword, "CHARANA_REDIS_PASSWORD")
	setString(&cfg.Log.File, "CHARANA_LOG_FILE")
}

// setString assigns the env value to dst when set and non-empty.
func setString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			*dst = trimmed
		}
	}
}

// setBool assigns the parsed env value to dst when set and valid.
func setBool(dst *bool, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, errParse := strconv.ParseBool(strings.TrimSpace(value)); errParse == nil {
			*dst = parsed
		}
	}
}

// setDuration assigns the parsed env value to dst when set and valid.
func setDuration(dst *time.Duration, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, errParse := time.ParseDuration(strings.TrimSpace(value)); errParse == nil && parsed > 0 {
			*dst = parsed
		}
	}
}
