// Package config loads storefront settings from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage driver names accepted in configuration.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// StorageConfig selects and parameterizes the durable key-value store.
type StorageConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	DSN       string `yaml:"dsn"`
	RedisURL  string `yaml:"redis_url"`
	Namespace string `yaml:"namespace"`
}

// Config is the full runtime configuration.
type Config struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"-"`
	Tracing bool          `yaml:"tracing"`
	Storage StorageConfig `yaml:"storage"`

	// RawTimeout is the YAML-facing form of Timeout ("15s", "1m").
	RawTimeout string `yaml:"http_timeout"`
}

func defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		APIURL:  "http://localhost:8080",
		Timeout: 15 * time.Second,
		Storage: StorageConfig{
			Driver: DriverFile,
			Path:   filepath.Join(home, ".rental-storefront", "state.json"),
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file is absent) and applies environment overrides on top of the
// defaults.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if cfg.RawTimeout != "" {
		d, err := time.ParseDuration(cfg.RawTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid http_timeout %q: %w", cfg.RawTimeout, err)
		}
		cfg.Timeout = d
	}

	applyEnv(&cfg)

	switch cfg.Storage.Driver {
	case DriverFile, DriverMemory, DriverPostgres, DriverRedis:
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RENTAL_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("RENTAL_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("RENTAL_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("RENTAL_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("RENTAL_REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("RENTAL_TRACING"); v == "1" || v == "true" {
		cfg.Tracing = true
	}
}
