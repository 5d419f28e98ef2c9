package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load resolves the full configuration: .env in the working directory (if
// any), then the config file at path (see LoadConfigFile), then environment
// overrides.
//
// Environment variables:
//   - REPOSAGE_OUTPUT_DIR: report output directory
//   - REPOSAGE_NARRATOR: narrator provider (static, anthropic, gemini)
//   - REPOSAGE_MODEL: narrator model
//   - REPOSAGE_HISTORY_DB: history database path
//   - REPOSAGE_HISTORY: enable or disable run history (bool)
//   - REPOSAGE_CLONE_TIMEOUT: clone timeout ("90s", "5m", "1d")
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any REPOSAGE_* variables that are set.
func ApplyEnv(cfg *Config) error {
	parseEnvString("REPOSAGE_OUTPUT_DIR", &cfg.OutputDir)
	parseEnvString("REPOSAGE_MODEL", &cfg.Narrator.Model)
	parseEnvString("REPOSAGE_HISTORY_DB", &cfg.History.Path)
	if parseEnvString("REPOSAGE_NARRATOR", &cfg.Narrator.Provider) {
		cfg.Narrator.Provider = strings.ToLower(cfg.Narrator.Provider)
	}
	if err := parseEnvBool("REPOSAGE_HISTORY", &cfg.History.Enabled); err != nil {
		return err
	}
	if value := strings.TrimSpace(os.Getenv("REPOSAGE_CLONE_TIMEOUT")); value != "" {
		timeout, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid value for REPOSAGE_CLONE_TIMEOUT: %w", err)
		}
		cfg.CloneTimeout = timeout
	}
	return nil
}

// parseEnvString copies a non-empty environment variable into dest and
// reports whether it did.
func parseEnvString(key string, dest *string) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return false
	}
	*dest = value
	return true
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
