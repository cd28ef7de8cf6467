package config

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"
)

// Load reads the TOML file at path over the defaults and validates the
// result. Keys the file does not set keep their default value.
func Load(path string, logger *slog.Logger) (*Config, error) {
	cfg := NewDefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		logger.Error("failed to decode TOML config", "path", path, "error", err)
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		logger.Warn("config file has unknown keys", "path", path, "keys", keys)
	}

	if err := Validate(cfg); err != nil {
		logger.Error("configuration validation failed", "path", path, "error", err)
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg.Source = path
	logger.Info("configuration loaded", "path", path, "routes", len(cfg.Routes))
	return cfg, nil
}

// Decode parses TOML data over the defaults and validates the result.
func Decode(data string) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode TOML: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
