package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/reposage/internal/analyzer"
	"github.com/steveyegge/reposage/internal/config"
	"github.com/steveyegge/reposage/internal/git"
	"github.com/steveyegge/reposage/internal/narrative"
	"github.com/steveyegge/reposage/internal/report"
	"github.com/steveyegge/reposage/internal/storage"
	"github.com/steveyegge/reposage/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a repository and write reports",
	Long: `Analyze a repository, either cloned from a URL or already on disk.

Examples:
  # Analyze a local checkout
  reposage analyze --path ./myservice

  # Clone and analyze
  reposage analyze --repo https://github.com/acme/shop.git

  # Only the JSON summary, into a custom directory
  reposage analyze --path . --format json --out /tmp/report

  # Use a model-backed narrator for the architecture summary and roadmap
  ANTHROPIC_API_KEY=... reposage analyze --path . --narrator anthropic`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := analyzeOptions{}
		opts.repoURL, _ = cmd.Flags().GetString("repo")
		opts.path, _ = cmd.Flags().GetString("path")
		opts.outDir, _ = cmd.Flags().GetString("out")
		opts.formats, _ = cmd.Flags().GetStringSlice("format")
		opts.narrator, _ = cmd.Flags().GetString("narrator")
		opts.noHistory, _ = cmd.Flags().GetBool("no-history")

		if err := opts.validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		outcome, err := runAnalyze(ctx, cfg, opts)
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), outcome)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("repo", "", "Git URL to clone and analyze")
	analyzeCmd.Flags().String("path", "", "Local repository directory to analyze")
	analyzeCmd.Flags().StringP("out", "o", "", "Output directory (default from config: outputs)")
	analyzeCmd.Flags().StringSliceP("format", "f", nil, "Report formats: markdown, json, text (default all)")
	analyzeCmd.Flags().String("narrator", "", "Narrator provider: static, anthropic, gemini")
	analyzeCmd.Flags().Bool("no-history", false, "Do not record this run in the history database")
	rootCmd.AddCommand(analyzeCmd)
}

type analyzeOptions struct {
	repoURL   string
	path      string
	outDir    string
	formats   []string
	narrator  string
	noHistory bool
}

// validate checks the flag combination, trimming the repo URL and path in place.
func (o *analyzeOptions) validate() error {
	o.repoURL = strings.TrimSpace(o.repoURL)
	o.path = strings.TrimSpace(o.path)
	hasRepo := o.repoURL != ""
	hasPath := o.path != ""
	switch {
	case hasRepo && hasPath:
		return fmt.Errorf("--repo and --path are mutually exclusive")
	case !hasRepo && !hasPath:
		return fmt.Errorf("one of --repo or --path is required")
	}

	switch strings.ToLower(o.narrator) {
	case "", narrative.ProviderStatic, narrative.ProviderAnthropic, narrative.ProviderGemini:
	default:
		return fmt.Errorf("unknown narrator %q (want %s, %s or %s)", o.narrator,
			narrative.ProviderStatic, narrative.ProviderAnthropic, narrative.ProviderGemini)
	}

	if _, err := report.ParseFormats(o.formats); err != nil {
		return err
	}
	return nil
}

// analyzeOutcome is everything printed after a run.
type analyzeOutcome struct {
	Repo     string
	Result   *analyzer.Result
	Report   *report.Report
	Paths    []string
	Previous *types.RunRecord // last stored run of the same repo, if any
	Saved    bool
}

func runAnalyze(ctx context.Context, cfg *config.Config, opts analyzeOptions) (*analyzeOutcome, error) {
	root, repo, commit, err := acquire(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	a := analyzer.New(nil, buildNarrator(ctx, cfg, opts.narrator), cfg.AnalyzerOptions())
	result, err := a.Run(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	rep := report.Build(result.ReportInput(), cfg.ReportLimits())

	outDir := opts.outDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	formats := opts.formats
	if len(formats) == 0 {
		formats = cfg.Formats
	}
	paths, err := report.WriteAll(outDir, rep, formats)
	if err != nil {
		return nil, err
	}

	outcome := &analyzeOutcome{Repo: repo, Result: result, Report: rep, Paths: paths}
	if cfg.History.Enabled && !opts.noHistory {
		recordHistory(ctx, cfg.History.Path, outcome, commit)
	}
	return outcome, nil
}

// acquire resolves the directory to analyze, cloning when given a URL.
// Clone failures are fatal.
func acquire(ctx context.Context, cfg *config.Config, opts analyzeOptions) (root, repo, commit string, err error) {
	g, gitErr := git.NewGit(ctx)

	if opts.repoURL != "" {
		if gitErr != nil {
			return "", "", "", gitErr
		}
		res, err := g.Clone(ctx, opts.repoURL, cfg.CloneDir, cfg.CloneTimeout)
		if err != nil {
			return "", "", "", err
		}
		root, repo = res.Path, res.Name
	} else {
		abs, err := filepath.Abs(opts.path)
		if err != nil {
			return "", "", "", fmt.Errorf("invalid path %q: %w", opts.path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", "", "", fmt.Errorf("cannot analyze %s: %w", opts.path, err)
		}
		if !info.IsDir() {
			return "", "", "", fmt.Errorf("cannot analyze %s: not a directory", opts.path)
		}
		root, repo = abs, filepath.Base(abs)
	}

	if gitErr == nil && g.IsRepository(ctx, root) {
		if hash, err := g.HeadCommit(ctx, root); err == nil {
			commit = hash
		} else {
			slog.Debug("no commit recorded", "path", root, "error", err)
		}
	}
	return root, repo, commit, nil
}

// buildNarrator honors the --narrator override. A model-backed narrator
// that cannot be constructed (usually a missing API key) degrades to the
// static one.
func buildNarrator(ctx context.Context, cfg *config.Config, override string) narrative.Narrator {
	opts := cfg.NarrativeOptions()
	if override != "" {
		opts.Provider = override
	}
	n, err := narrative.New(ctx, opts)
	if err != nil {
		slog.Warn("narrator unavailable, using static narrator", "provider", opts.Provider, "error", err)
		return narrative.NewStaticNarrator()
	}
	return n
}

// recordHistory stores the run. Failures are logged, never fatal.
func recordHistory(ctx context.Context, path string, outcome *analyzeOutcome, commit string) {
	store, err := storage.NewStorage(ctx, &storage.Config{Path: path})
	if err != nil {
		slog.Warn("run history unavailable", "path", path, "error", err)
		return
	}
	defer store.Close()

	previous, err := store.LatestRun(ctx, outcome.Repo)
	switch {
	case err == nil:
		outcome.Previous = previous
	case !errors.Is(err, storage.ErrRunNotFound):
		slog.Warn("failed to load previous run", "repo", outcome.Repo, "error", err)
	}

	if err := store.SaveRun(ctx, outcome.Result.Record(outcome.Repo, commit)); err != nil {
		slog.Warn("failed to record run", "run_id", outcome.Result.RunID, "error", err)
		return
	}
	outcome.Saved = true
}

func printOutcome(w io.Writer, o *analyzeOutcome) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	r := o.Result
	h := r.Health
	fmt.Fprintf(w, "\n%s %s\n", cyan("Repository:"), o.Repo)
	fmt.Fprintf(w, "  Files scanned: %d  Languages: %s\n", r.Scan.TotalFilesScanned, joinOrNone(r.Scan.DetectedLanguages))
	fmt.Fprintf(w, "  Architecture: %s  Narrator: %s\n", r.Architecture.ArchitectureType, r.Narrator)

	scoreColor := green
	if h.Score < 70 {
		scoreColor = yellow
	}
	fmt.Fprintf(w, "\n%s %s / 100 (Grade %s, %s)\n", cyan("Health Score:"),
		scoreColor(fmt.Sprintf("%d", h.Score)), h.Grade, o.Report.Band.Label)
	fmt.Fprintf(w, "  Security %d  Performance %d  Architecture %d  Hygiene %d\n",
		h.Breakdown.Security, h.Breakdown.Performance, h.Breakdown.Architecture, h.Breakdown.Hygiene)
	fmt.Fprintf(w, "  Badge: %s\n", gray(o.Report.BadgeURL))

	if o.Previous != nil {
		delta := h.Score - o.Previous.Score
		fmt.Fprintf(w, "  Change since %s: %+d\n", shortID(o.Previous.ID), delta)
	}

	fmt.Fprintf(w, "\n%s %d security, %d performance", cyan("Findings:"), len(r.Security), len(r.Performance))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, " (%s)", yellow(fmt.Sprintf("%d file(s) skipped", len(r.Skipped))))
	}
	fmt.Fprintln(w)

	if len(r.RiskyFiles) > 0 {
		fmt.Fprintf(w, "\n%s\n", cyan("Top Risky Files:"))
		for _, f := range r.RiskyFiles {
			fmt.Fprintf(w, "  %-40s risk %d (security %d, performance %d)\n",
				f.File, f.RiskScore, f.SecurityIssues, f.PerformanceIssues)
		}
	}

	fmt.Fprintf(w, "\n%s\n", cyan("Reports:"))
	for _, p := range o.Paths {
		fmt.Fprintf(w, "  %s %s\n", green("✓"), p)
	}
	if o.Saved {
		fmt.Fprintf(w, "\n%s\n", gray("Run "+r.RunID+" recorded in history"))
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// shortID trims a run UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
