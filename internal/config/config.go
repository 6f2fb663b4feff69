// Package config assembles the flybook configuration from defaults, a TOML
// file, the environment and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Sternrassler/flight-booking-client/pkg/logging"
)

// DefaultAPIURL is the default booking API endpoint.
const DefaultAPIURL = "https://api.flybook.example"

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	APIURL            string
	UserAgent         string
	APIToken          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int

	Store         string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SharedRateLimit tracks the API budget in Redis across processes
	SharedRateLimit bool

	PageSize   int
	ListenAddr string

	LogLevel  string
	LogPretty bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		APIURL:            DefaultAPIURL,
		UserAgent:         "flybook/dev",
		Timeout:           15 * time.Second,
		RequestsPerSecond: 10,
		Burst:             5,
		MaxRetries:        2,
		Store:             StoreSQLite,
		SQLitePath:        defaultSQLitePath(),
		RedisAddr:         "localhost:6379",
		PageSize:          20,
		ListenAddr:        ":8080",
		LogLevel:          "info",
	}
}

func defaultSQLitePath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".flybook", "cache.db")
	}
	return "flybook.db"
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api-url must be an absolute http(s) URL (got %q)", c.APIURL)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user-agent is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (got %s)", c.Timeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("rps must be >= 0 (got %v)", c.RequestsPerSecond)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max-retries must be >= 0 (got %d)", c.MaxRetries)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page-size must be between 1 and 100 (got %d)", c.PageSize)
	}

	switch c.Store {
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite-path is required for the sqlite store")
		}
	case StoreRedis:
	default:
		return fmt.Errorf("store must be %q or %q (got %q)", StoreSQLite, StoreRedis, c.Store)
	}

	if (c.Store == StoreRedis || c.SharedRateLimit) && c.RedisAddr == "" {
		return fmt.Errorf("redis-addr is required")
	}

	if _, err := logging.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// NeedsRedis reports whether a Redis connection must be opened.
func (c *Config) NeedsRedis() bool {
	return c.Store == StoreRedis || c.SharedRateLimit
}

// Masked returns a copy safe for logging.
func (c Config) Masked() Config {
	if c.APIToken != "" {
		c.APIToken = "*****"
	}
	if c.RedisPassword != "" {
		c.RedisPassword = "*****"
	}
	return c
}

// configSetter applies values unless the matching flag was set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value if present and flag not changed. Zero is allowed.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// Zero is accepted so that e.g. FLYBOOK_MAX_RETRIES=0 disables retries.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
