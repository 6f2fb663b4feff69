package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (FLYBOOK_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("api-url", os.Getenv("FLYBOOK_API_URL"), &cfg.APIURL)
	s.setString("user-agent", os.Getenv("FLYBOOK_USER_AGENT"), &cfg.UserAgent)
	s.setString("api-token", os.Getenv("FLYBOOK_API_TOKEN"), &cfg.APIToken)
	s.setString("store", os.Getenv("FLYBOOK_STORE"), &cfg.Store)
	s.setString("sqlite-path", os.Getenv("FLYBOOK_SQLITE_PATH"), &cfg.SQLitePath)
	s.setString("redis-addr", os.Getenv("FLYBOOK_REDIS_ADDR"), &cfg.RedisAddr)
	s.setString("redis-password", os.Getenv("FLYBOOK_REDIS_PASSWORD"), &cfg.RedisPassword)
	s.setString("listen", os.Getenv("FLYBOOK_LISTEN"), &cfg.ListenAddr)
	s.setString("log-level", os.Getenv("FLYBOOK_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("FLYBOOK_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	if err := s.setFloatFromString("rps", os.Getenv("FLYBOOK_REQUESTS_PER_SECOND"), &cfg.RequestsPerSecond); err != nil {
		return err
	}
	if err := s.setIntFromString("burst", os.Getenv("FLYBOOK_BURST"), &cfg.Burst); err != nil {
		return err
	}
	if err := s.setIntFromString("max-retries", os.Getenv("FLYBOOK_MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}
	if err := s.setIntFromString("redis-db", os.Getenv("FLYBOOK_REDIS_DB"), &cfg.RedisDB); err != nil {
		return err
	}
	if err := s.setIntFromString("page-size", os.Getenv("FLYBOOK_PAGE_SIZE"), &cfg.PageSize); err != nil {
		return err
	}

	if err := s.setBoolFromString("shared-rate-limit", os.Getenv("FLYBOOK_SHARED_RATE_LIMIT"), &cfg.SharedRateLimit); err != nil {
		return err
	}
	return s.setBoolFromString("log-pretty", os.Getenv("FLYBOOK_LOG_PRETTY"), &cfg.LogPretty)
}
