// Package config loads service settings from defaults, an optional YAML file
// and CALC_* environment variables, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Storage   StorageConfig   `yaml:"storage"`
	History   HistoryConfig   `yaml:"history"`
	SeedUsers []SeedUser      `yaml:"seed_users"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TelemetryConfig controls OTLP export. Exporter endpoints come from the
// standard OTEL_EXPORTER_OTLP_* variables.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type StorageConfig struct {
	UserStore  string `yaml:"user_store"`
	SQLitePath string `yaml:"sqlite_path"`
}

type HistoryConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
	RedisKey  string `yaml:"redis_key"`
}

// SeedUser is an account registered at startup.
type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Addr is the listen address derived from the port.
func (c ServerConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "calculator-api",
		},
		Storage: StorageConfig{
			UserStore:  StoreMemory,
			SQLitePath: "calculator.db",
		},
		History: HistoryConfig{
			Backend:   StoreMemory,
			RedisAddr: "localhost:6379",
			RedisKey:  "calculator:history",
		},
		SeedUsers: []SeedUser{
			{Username: "admin", Password: "test1234"},
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("CALC_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CALC_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("CALC_TELEMETRY_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CALC_TELEMETRY_ENABLED: %w", err)
		}
		c.Telemetry.Enabled = enabled
	}

	c.Log.Level = getEnv("CALC_LOG_LEVEL", c.Log.Level)
	c.Telemetry.ServiceName = getEnv("OTEL_SERVICE_NAME", c.Telemetry.ServiceName)
	c.Storage.UserStore = getEnv("CALC_USER_STORE", c.Storage.UserStore)
	c.Storage.SQLitePath = getEnv("CALC_SQLITE_PATH", c.Storage.SQLitePath)
	c.History.Backend = getEnv("CALC_HISTORY_BACKEND", c.History.Backend)
	c.History.RedisAddr = getEnv("CALC_REDIS_ADDR", c.History.RedisAddr)
	c.History.RedisKey = getEnv("CALC_REDIS_KEY", c.History.RedisKey)
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Storage.UserStore {
	case StoreMemory:
	case StoreSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite user store")
		}
	default:
		return fmt.Errorf("storage.user_store %q must be %q or %q", c.Storage.UserStore, StoreMemory, StoreSQLite)
	}
	switch c.History.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.History.RedisAddr == "" {
			return fmt.Errorf("history.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("history.backend %q must be %q or %q", c.History.Backend, StoreMemory, StoreRedis)
	}
	for i, u := range c.SeedUsers {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("seed_users[%d]: username and password are required", i)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
