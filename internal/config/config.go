// Package config loads reposage settings from .reposage.yaml, the
// environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/steveyegge/reposage/internal/ai"
	"github.com/steveyegge/reposage/internal/analyzer"
	"github.com/steveyegge/reposage/internal/narrative"
	"github.com/steveyegge/reposage/internal/report"
	"github.com/steveyegge/reposage/internal/risk"
	"github.com/steveyegge/reposage/internal/scan"
	"github.com/steveyegge/reposage/internal/storage"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".reposage.yaml"

// Config is the resolved configuration.
type Config struct {
	OutputDir    string
	CloneDir     string
	CloneTimeout time.Duration
	IgnoreDirs   []string
	ExcludePaths []string
	MaxFileBytes int64
	Detectors    []string // empty means all
	Formats      []string
	Limits       Limits
	Narrator     NarratorConfig
	History      HistoryConfig
}

// Limits caps the ranked lists in reports.
type Limits struct {
	RiskyFiles int
	QuickWins  int
	TopIssues  int
}

// NarratorConfig selects and tunes the narrator.
type NarratorConfig struct {
	Provider          string
	Model             string
	MaxTokens         int
	MaxRetries        int
	RequestsPerSecond float64
}

// HistoryConfig controls run persistence.
type HistoryConfig struct {
	Enabled bool
	Path    string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:    "outputs",
		CloneDir:     "repos",
		CloneTimeout: 5 * time.Minute,
		IgnoreDirs:   append([]string(nil), scan.DefaultIgnoreDirs...),
		MaxFileBytes: scan.DefaultMaxFileBytes,
		Formats:      append([]string(nil), report.DefaultFormats...),
		Limits: Limits{
			RiskyFiles: risk.DefaultLimit,
			QuickWins:  report.DefaultQuickWins,
			TopIssues:  report.DefaultTopIssues,
		},
		Narrator: NarratorConfig{
			Provider:   narrative.ProviderStatic,
			MaxTokens:  ai.DefaultMaxTokens,
			MaxRetries: ai.DefaultRetryConfig().MaxRetries,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    storage.DefaultPath,
		},
	}
}

// Validate checks if the configuration has valid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if strings.TrimSpace(c.CloneDir) == "" {
		return fmt.Errorf("clone_dir is required")
	}
	if c.CloneTimeout < 0 {
		return fmt.Errorf("clone_timeout cannot be negative (got %s)", c.CloneTimeout)
	}
	if c.MaxFileBytes <= 0 {
		return fmt.Errorf("max_file_bytes must be positive (got %d)", c.MaxFileBytes)
	}
	if c.Limits.RiskyFiles < 1 || c.Limits.QuickWins < 1 || c.Limits.TopIssues < 1 {
		return fmt.Errorf("limits must be at least 1 (got risky_files=%d quick_wins=%d top_issues=%d)",
			c.Limits.RiskyFiles, c.Limits.QuickWins, c.Limits.TopIssues)
	}
	if _, err := report.ParseFormats(c.Formats); err != nil {
		return err
	}
	switch strings.ToLower(c.Narrator.Provider) {
	case narrative.ProviderStatic, narrative.ProviderAnthropic, narrative.ProviderGemini:
	default:
		return fmt.Errorf("narrator.provider must be %s, %s or %s (got %q)",
			narrative.ProviderStatic, narrative.ProviderAnthropic, narrative.ProviderGemini, c.Narrator.Provider)
	}
	if c.Narrator.MaxTokens < 0 || c.Narrator.MaxRetries < 0 || c.Narrator.RequestsPerSecond < 0 {
		return fmt.Errorf("narrator max_tokens, max_retries and requests_per_second cannot be negative")
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	return nil
}

// AnalyzerOptions maps the config onto an analyzer run.
func (c *Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		Detectors:    c.Detectors,
		IgnoreDirs:   c.IgnoreDirs,
		ExcludePaths: c.ExcludePaths,
		MaxFileBytes: c.MaxFileBytes,
		RiskLimit:    c.Limits.RiskyFiles,
	}
}

// NarrativeOptions maps the narrator settings onto narrative.New.
func (c *Config) NarrativeOptions() narrative.Options {
	retry := ai.DefaultRetryConfig()
	retry.MaxRetries = c.Narrator.MaxRetries
	retry.RequestsPerSecond = c.Narrator.RequestsPerSecond
	return narrative.Options{
		Provider:  c.Narrator.Provider,
		Model:     c.Narrator.Model,
		MaxTokens: c.Narrator.MaxTokens,
		Retry:     retry,
	}
}

// ReportLimits maps the list caps onto the report builder.
func (c *Config) ReportLimits() report.Limits {
	return report.Limits{TopIssues: c.Limits.TopIssues, QuickWins: c.Limits.QuickWins}
}
