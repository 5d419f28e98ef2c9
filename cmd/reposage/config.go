package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/reposage/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
	// init must work before a config file exists, so loading is left to
	// the subcommands that need it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Print the configuration after applying the config file, .env and REPOSAGE_* variables.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, err := config.Load(configPath)
		if err != nil {
			return err
		}
		data, err := config.Marshal(resolved)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example " + config.DefaultFileName,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		resolved, _ := cmd.Flags().GetBool("resolved")
		path := configPath
		if path == "" {
			path = config.DefaultFileName
		}

		var current *config.Config
		if resolved {
			// Environment only: the target file is about to be replaced.
			current = config.DefaultConfig()
			if err := config.ApplyEnv(current); err != nil {
				return err
			}
		}
		if err := writeConfig(path, force, current); err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", green("✓"), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configInitCmd.Flags().Bool("resolved", false, "Write defaults plus REPOSAGE_* overrides instead of the commented example")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// writeConfig writes the commented example, or current when it is non-nil.
func writeConfig(path string, force bool, current *config.Config) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if current != nil {
		return config.SaveConfigFile(path, current)
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfigFile()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
