package config

import "fmt"

// Load layers the file (path, or the default path when empty), .env and
// FLYBOOK_* variables onto cfg, which already holds defaults and flag
// values, and validates the result. changed names the flags set on the
// command line; those values are never overridden.
func Load(cfg *Config, path string, changed map[string]bool) error {
	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath()
	}

	if path != "" && (explicit || FileExists(path)) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := LoadDotEnv(""); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	if err := ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	return cfg.Validate()
}
