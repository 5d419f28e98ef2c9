// Command reposage analyzes a source repository and writes a health report.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/reposage/internal/config"
)

var (
	configPath string
	verbose    bool

	// cfg is resolved once per invocation by the root command.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reposage",
	Short: "Static health analysis for source repositories",
	Long: `reposage walks a repository, detects languages and architecture, flags
security and performance anti-patterns, and scores overall health.

Reports are written as Markdown (report.md), JSON (summary.json) and a
paginated plain-text report (report.txt).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

// setupLogging routes library logs to stderr; verbose enables debug output.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
