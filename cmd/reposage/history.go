package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/reposage/internal/storage"
	"github.com/steveyegge/reposage/internal/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analysis runs",
	Long: `List analysis runs recorded by "reposage analyze", newest first.

Examples:
  reposage history
  reposage history --repo shop --limit 5
  reposage history diff 3f2a9c1e 8b7d0e44`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		limit, _ := cmd.Flags().GetInt("limit")

		return withStore(cmd.Context(), func(store storage.Storage) error {
			runs, err := store.ListRuns(cmd.Context(), types.RunFilter{Repo: repo, Limit: limit})
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run and its findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store storage.Storage) error {
			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRun(cmd.OutOrStdout(), run)
			return nil
		})
	},
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff <from-run> <to-run>",
	Short: "Compare the findings of two runs",
	Long: `Show findings that appeared (new) or disappeared (resolved) between two runs.
Run IDs may be abbreviated to any unambiguous prefix.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store storage.Storage) error {
			diff, err := store.DiffRuns(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printDiff(cmd.OutOrStdout(), diff)
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().String("repo", "", "Only runs of this repository")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum runs to list (0 for all)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDiffCmd)
	rootCmd.AddCommand(historyCmd)
}

func withStore(ctx context.Context, fn func(storage.Storage) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := storage.NewStorage(ctx, &storage.Config{Path: cfg.History.Path})
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func printRuns(w io.Writer, runs []*types.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	gray := color.New(color.FgHiBlack).SprintFunc()
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-20s %3d %s  %s\n",
			shortID(r.ID), r.Repo, r.Score, r.Grade, gray(r.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
}

func printRun(w io.Writer, r *types.RunRecord) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", cyan("Run:"), r.ID)
	fmt.Fprintf(w, "  Repo: %s (%s)\n", r.Repo, r.RepoPath)
	if r.Commit != "" {
		fmt.Fprintf(w, "  Commit: %s\n", r.Commit)
	}
	fmt.Fprintf(w, "  Recorded: %s  Narrator: %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Narrator)
	fmt.Fprintf(w, "  Score: %d / 100 (Grade %s)\n", r.Score, r.Grade)
	fmt.Fprintf(w, "  Security %d  Performance %d  Architecture %d  Hygiene %d\n",
		r.Breakdown.Security, r.Breakdown.Performance, r.Breakdown.Architecture, r.Breakdown.Hygiene)

	fmt.Fprintf(w, "\n%s %d\n", cyan("Findings:"), len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(w, "  [%s] %s: %s (%s)\n", f.Category, f.Severity, f.Issue, f.FileLabel())
	}
}

func printDiff(w io.Writer, d *types.RunDiff) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s (%d) -> %s (%d), score %+d\n", cyan("Diff:"),
		shortID(d.From.ID), d.From.Score, shortID(d.To.ID), d.To.Score, d.ScoreDelta)

	fmt.Fprintf(w, "\n%s %d\n", cyan("New findings:"), len(d.New))
	for _, f := range d.New {
		fmt.Fprintf(w, "  %s %s: %s (%s)\n", red("+"), f.Severity, f.Issue, f.FileLabel())
	}
	fmt.Fprintf(w, "\n%s %d\n", cyan("Resolved findings:"), len(d.Resolved))
	for _, f := range d.Resolved {
		fmt.Fprintf(w, "  %s %s: %s (%s)\n", green("-"), f.Severity, f.Issue, f.FileLabel())
	}
	fmt.Fprintf(w, "\nUnchanged: %d\n", d.Unchanged)
}
