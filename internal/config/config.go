package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Quota  QuotaConfig  `yaml:"quota"`
	Redis  RedisConfig  `yaml:"redis"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

// QuotaConfig selects the quota store backend and the daily ceiling.
type QuotaConfig struct {
	Backend    string `yaml:"backend"`
	DailyLimit int    `yaml:"daily_limit"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment
// variables. A .env file in the working directory is honored when
// present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			RequestsPerMinute: 120,
		},
		DB: DBConfig{
			Path: "govcontacts.db",
		},
		Quota: QuotaConfig{
			Backend:    "sqlite",
			DailyLimit: 50,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("GOVCONTACTS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("GOVCONTACTS_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("GOVCONTACTS_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GOVCONTACTS_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if rpmStr := os.Getenv("GOVCONTACTS_REQUESTS_PER_MINUTE"); rpmStr != "" {
		rpm, err := strconv.Atoi(rpmStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GOVCONTACTS_REQUESTS_PER_MINUTE: %w", err)
		}
		cfg.Server.RequestsPerMinute = rpm
	}
	if dbPath := os.Getenv("GOVCONTACTS_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if backend := os.Getenv("GOVCONTACTS_QUOTA_BACKEND"); backend != "" {
		cfg.Quota.Backend = backend
	}
	if limitStr := os.Getenv("GOVCONTACTS_DAILY_LIMIT"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GOVCONTACTS_DAILY_LIMIT: %w", err)
		}
		cfg.Quota.DailyLimit = limit
	}
	if addr := os.Getenv("GOVCONTACTS_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("GOVCONTACTS_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if dbStr := os.Getenv("GOVCONTACTS_REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GOVCONTACTS_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	if level := os.Getenv("GOVCONTACTS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if cfg.Quota.Backend != "sqlite" && cfg.Quota.Backend != "redis" {
		return Config{}, fmt.Errorf("invalid quota backend %q: must be sqlite or redis", cfg.Quota.Backend)
	}
	if cfg.Quota.DailyLimit < 1 {
		return Config{}, fmt.Errorf("invalid daily limit %d: must be >= 1", cfg.Quota.DailyLimit)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
