package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	defaultCacheTTL          = 10 * time.Minute
	defaultRetentionHorizon  = 72 * time.Hour
	minRetentionHorizon      = 48 * time.Hour
	defaultRetentionInterval = time.Hour
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Driver string `yaml:"driver"`
	} `yaml:"storage"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Retention struct {
		Horizon  string `yaml:"horizon"`
		Interval string `yaml:"interval"`
	} `yaml:"retention"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Driver picks the storage backend. An unset driver falls back to postgres
// when a URL is configured and memory otherwise.
func (c Config) Driver() string {
	driver := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if driver != "" {
		return driver
	}
	if c.Postgres.URL != "" {
		return DriverPostgres
	}
	return DriverMemory
}

func (c Config) CacheTTL() time.Duration {
	return TTLDuration(c.Cache.TTL, defaultCacheTTL)
}

// RetentionHorizon never returns less than 48h so that games are not
// deleted while they may still be played.
func (c Config) RetentionHorizon() time.Duration {
	horizon := TTLDuration(c.Retention.Horizon, defaultRetentionHorizon)
	if horizon < minRetentionHorizon {
		return minRetentionHorizon
	}
	return horizon
}

func (c Config) RetentionInterval() time.Duration {
	interval := TTLDuration(c.Retention.Interval, defaultRetentionInterval)
	if interval <= 0 {
		return defaultRetentionInterval
	}
	return interval
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
