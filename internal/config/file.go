package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile represents the structure of .reposage.yaml.
type ConfigFile struct {
	OutputDir    string   `yaml:"output_dir,omitempty"`
	CloneDir     string   `yaml:"clone_dir,omitempty"`
	CloneTimeout string   `yaml:"clone_timeout,omitempty"` // Duration string like "5m", "1h", "1d"
	IgnoreDirs   []string `yaml:"ignore_dirs,omitempty"`
	ExcludePaths []string `yaml:"exclude_paths,omitempty"`
	MaxFileBytes int64    `yaml:"max_file_bytes,omitempty"`
	Detectors    []string `yaml:"detectors,omitempty"`
	Formats      []string `yaml:"formats,omitempty"`

	Limits   LimitsFile   `yaml:"limits,omitempty"`
	Narrator NarratorFile `yaml:"narrator,omitempty"`
	History  HistoryFile  `yaml:"history,omitempty"`
}

// LimitsFile is the limits block.
type LimitsFile struct {
	RiskyFiles int `yaml:"risky_files,omitempty"`
	QuickWins  int `yaml:"quick_wins,omitempty"`
	TopIssues  int `yaml:"top_issues,omitempty"`
}

// NarratorFile is the narrator block.
type NarratorFile struct {
	Provider          string  `yaml:"provider,omitempty"`
	Model             string  `yaml:"model,omitempty"`
	MaxTokens         int     `yaml:"max_tokens,omitempty"`
	MaxRetries        *int    `yaml:"max_retries,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// HistoryFile is the history block. Enabled is a pointer so that an explicit
// false can be told apart from an omitted key.
type HistoryFile struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// LoadConfigFile loads configuration from path. An empty path means
// DefaultFileName in the working directory, and a missing default file
// yields DefaultConfig. A missing explicit path is an error.
func LoadConfigFile(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var configFile ConfigFile
	if err := yaml.Unmarshal(data, &configFile); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return configFile.ToConfig()
}

// ToConfig converts a ConfigFile to a Config. Only fields set in the file
// override DefaultConfig.
func (cf *ConfigFile) ToConfig() (*Config, error) {
	config := DefaultConfig()

	if cf.OutputDir != "" {
		config.OutputDir = cf.OutputDir
	}
	if cf.CloneDir != "" {
		config.CloneDir = cf.CloneDir
	}
	if cf.CloneTimeout != "" {
		timeout, err := parseDuration(cf.CloneTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid clone_timeout: %w", err)
		}
		config.CloneTimeout = timeout
	}
	if len(cf.IgnoreDirs) > 0 {
		config.IgnoreDirs = cf.IgnoreDirs
	}
	if len(cf.ExcludePaths) > 0 {
		config.ExcludePaths = cf.ExcludePaths
	}
	if cf.MaxFileBytes > 0 {
		config.MaxFileBytes = cf.MaxFileBytes
	}
	if len(cf.Detectors) > 0 {
		config.Detectors = cf.Detectors
	}
	if len(cf.Formats) > 0 {
		config.Formats = cf.Formats
	}

	if cf.Limits.RiskyFiles > 0 {
		config.Limits.RiskyFiles = cf.Limits.RiskyFiles
	}
	if cf.Limits.QuickWins > 0 {
		config.Limits.QuickWins = cf.Limits.QuickWins
	}
	if cf.Limits.TopIssues > 0 {
		config.Limits.TopIssues = cf.Limits.TopIssues
	}

	if cf.Narrator.Provider != "" {
		config.Narrator.Provider = strings.ToLower(cf.Narrator.Provider)
	}
	if cf.Narrator.Model != "" {
		config.Narrator.Model = cf.Narrator.Model
	}
	if cf.Narrator.MaxTokens > 0 {
		config.Narrator.MaxTokens = cf.Narrator.MaxTokens
	}
	if cf.Narrator.MaxRetries != nil {
		config.Narrator.MaxRetries = *cf.Narrator.MaxRetries
	}
	if cf.Narrator.RequestsPerSecond > 0 {
		config.Narrator.RequestsPerSecond = cf.Narrator.RequestsPerSecond
	}

	if cf.History.Enabled != nil {
		config.History.Enabled = *cf.History.Enabled
	}
	if cf.History.Path != "" {
		config.History.Path = cf.History.Path
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// SaveConfigFile writes config to path as YAML.
func SaveConfigFile(path string, config *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := Marshal(config)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Marshal renders config in the .reposage.yaml format.
func Marshal(config *Config) ([]byte, error) {
	retries := config.Narrator.MaxRetries
	enabled := config.History.Enabled
	configFile := ConfigFile{
		OutputDir:    config.OutputDir,
		CloneDir:     config.CloneDir,
		CloneTimeout: config.CloneTimeout.String(),
		IgnoreDirs:   config.IgnoreDirs,
		ExcludePaths: config.ExcludePaths,
		MaxFileBytes: config.MaxFileBytes,
		Detectors:    config.Detectors,
		Formats:      config.Formats,
		Limits: LimitsFile{
			RiskyFiles: config.Limits.RiskyFiles,
			QuickWins:  config.Limits.QuickWins,
			TopIssues:  config.Limits.TopIssues,
		},
		Narrator: NarratorFile{
			Provider:          config.Narrator.Provider,
			Model:             config.Narrator.Model,
			MaxTokens:         config.Narrator.MaxTokens,
			MaxRetries:        &retries,
			RequestsPerSecond: config.Narrator.RequestsPerSecond,
		},
		History: HistoryFile{
			Enabled: &enabled,
			Path:    config.History.Path,
		},
	}

	data, err := yaml.Marshal(&configFile)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// ExampleConfigFile returns an example configuration file content.
func ExampleConfigFile() string {
	return `# reposage configuration
# Every key is optional; omitted keys keep their defaults.

# Where report.md, summary.json and report.txt are written
output_dir: outputs

# Where --repo URLs are cloned, and how long a clone may take
clone_dir: repos
clone_timeout: 5m

# Directory names skipped at any depth
ignore_dirs:
  - .git
  - node_modules
  - dist
  - build
  - __pycache__
  - .venv
  - venv

# Paths excluded from the scan: "dir/" prefixes, base-name globs, exact paths
exclude_paths:
  - vendor/
  - "*.min.js"

# Files larger than this are skipped (bytes)
max_file_bytes: 2097152

# Detectors to run; leave empty for all (see: reposage detectors)
detectors: []

# Report formats: markdown, json, text
formats:
  - markdown
  - json
  - text

limits:
  risky_files: 5
  quick_wins: 5
  top_issues: 10

# Narrator for the architecture summary and roadmap
# provider: static (offline), anthropic (ANTHROPIC_API_KEY) or gemini (GEMINI_API_KEY)
narrator:
  provider: static
  model: ""
  max_tokens: 4096
  max_retries: 3
  requests_per_second: 0

# Run history used by "reposage history"
history:
  enabled: true
  path: .reposage/history.db
`
}

// parseDuration parses duration strings like "5m", "1h", "7d"
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) > 1 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		var d int
		if _, err := fmt.Sscanf(days, "%d", &d); err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(d) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
