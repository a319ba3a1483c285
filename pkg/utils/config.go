package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Values come from an optional yaml
// file, overridden by KOMIKRU_* environment variables, with dev defaults
// for everything.
type Config struct {
	Addr         string `yaml:"addr"`
	DBPath       string `yaml:"db_path"`
	CacheDir     string `yaml:"cache_dir"`
	CacheBaseURL string `yaml:"cache_base_url"`

	CacheTTLHours    int `yaml:"cache_ttl_hours"`
	FetchTimeoutSecs int `yaml:"fetch_timeout_seconds"`
	CacheWorkers     int `yaml:"cache_workers"`
}

func defaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		Addr:             ":8080",
		DBPath:           home + "/.komikru/data.db",
		CacheDir:         home + "/.komikru/cache",
		CacheBaseURL:     "http://localhost:8080/cache",
		CacheTTLHours:    24,
		FetchTimeoutSecs: 30,
		CacheWorkers:     4,
	}
}

// LoadConfig reads path when non-empty, then applies env overrides. An
// empty path means env/defaults only.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	envString(&cfg.Addr, "KOMIKRU_ADDR")
	envString(&cfg.DBPath, "KOMIKRU_DB_PATH")
	envString(&cfg.CacheDir, "KOMIKRU_CACHE_DIR")
	envString(&cfg.CacheBaseURL, "KOMIKRU_CACHE_BASE_URL")
	envInt(&cfg.CacheTTLHours, "KOMIKRU_CACHE_TTL_HOURS")
	envInt(&cfg.FetchTimeoutSecs, "KOMIKRU_FETCH_TIMEOUT_SECONDS")
	envInt(&cfg.CacheWorkers, "KOMIKRU_CACHE_WORKERS")

	if cfg.CacheTTLHours <= 0 {
		return Config{}, fmt.Errorf("cache_ttl_hours must be positive, got %d", cfg.CacheTTLHours)
	}
	if cfg.CacheWorkers <= 0 {
		return Config{}, fmt.Errorf("cache_workers must be positive, got %d", cfg.CacheWorkers)
	}
	return cfg, nil
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSecs) * time.Second
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// bad override, keep the configured value
		return
	}
	*dst = n
}
