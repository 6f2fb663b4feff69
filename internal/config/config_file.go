package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	APIURL            string  `toml:"api_url"`
	UserAgent         string  `toml:"user_agent"`
	APIToken          string  `toml:"api_token"`
	Timeout           string  `toml:"timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	MaxRetries        *int    `toml:"max_retries"`
	Store             string  `toml:"store"`
	SQLitePath        string  `toml:"sqlite_path"`
	RedisAddr         string  `toml:"redis_addr"`
	RedisPassword     string  `toml:"redis_password"`
	RedisDB           *int    `toml:"redis_db"`
	SharedRateLimit   *bool   `toml:"shared_rate_limit"`
	PageSize          int     `toml:"page_size"`
	ListenAddr        string  `toml:"listen"`
	LogLevel          string  `toml:"log_level"`
	LogPretty         *bool   `toml:"log_pretty"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.flybook/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".flybook", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("api-url", fc.APIURL, &cfg.APIURL)
	s.setString("user-agent", fc.UserAgent, &cfg.UserAgent)
	s.setString("api-token", fc.APIToken, &cfg.APIToken)
	s.setString("store", fc.Store, &cfg.Store)
	s.setString("sqlite-path", fc.SQLitePath, &cfg.SQLitePath)
	s.setString("redis-addr", fc.RedisAddr, &cfg.RedisAddr)
	s.setString("redis-password", fc.RedisPassword, &cfg.RedisPassword)
	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}

	s.setFloat("rps", fc.RequestsPerSecond, &cfg.RequestsPerSecond)
	s.setInt("burst", fc.Burst, &cfg.Burst)
	s.setInt("page-size", fc.PageSize, &cfg.PageSize)
	s.setIntPtr("max-retries", fc.MaxRetries, &cfg.MaxRetries)
	s.setIntPtr("redis-db", fc.RedisDB, &cfg.RedisDB)

	s.setBool("shared-rate-limit", fc.SharedRateLimit, &cfg.SharedRateLimit)
	s.setBool("log-pretty", fc.LogPretty, &cfg.LogPretty)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
