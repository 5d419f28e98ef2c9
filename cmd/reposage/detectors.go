package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/reposage/internal/detect"
)

var detectorsCmd = &cobra.Command{
	Use:   "detectors",
	Short: "List the available detectors",
	Long: `List every registered detector with its category.

Select a subset for a run with the "detectors" key in .reposage.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printDetectors(cmd.OutOrStdout(), detect.DefaultRegistry())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectorsCmd)
}

func printDetectors(w io.Writer, registry *detect.Registry) {
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	for _, d := range registry.List() {
		fmt.Fprintf(w, "%-12s %-12s %s\n", cyan(d.Name()), d.Category(), gray(d.Description()))
	}
}
