// Package analyzer runs one analysis end to end: scan, detect, narrate,
// rank and score.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/reposage/internal/detect"
	"github.com/steveyegge/reposage/internal/health"
	"github.com/steveyegge/reposage/internal/narrative"
	"github.com/steveyegge/reposage/internal/report"
	"github.com/steveyegge/reposage/internal/risk"
	"github.com/steveyegge/reposage/internal/scan"
	"github.com/steveyegge/reposage/internal/types"
)

// Options tunes a run. Zero values use the package defaults.
type Options struct {
	Detectors    []string // names to run; empty means all registered
	IgnoreDirs   []string
	ExcludePaths []string
	MaxFileBytes int64
	RiskLimit    int
}

// Result is everything one run produced.
type Result struct {
	RunID        string                   `json:"run_id"`
	StartedAt    time.Time                `json:"started_at"`
	CompletedAt  time.Time                `json:"completed_at"`
	Narrator     string                   `json:"narrator"`
	Scan         types.ScanResult         `json:"scan"`
	Architecture types.ArchitectureResult `json:"architecture"`
	Security     []types.Finding          `json:"security"`
	Performance  []types.Finding          `json:"performance"`
	Skipped      []detect.SkippedFile     `json:"skipped,omitempty"`
	RiskyFiles   []types.RiskedFile       `json:"top_risky_files"`
	Health       types.HealthScore        `json:"health"`
	Roadmap      types.Roadmap            `json:"roadmap"`
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// ReportInput adapts the result for the report renderers.
func (r *Result) ReportInput() report.Input {
	return report.Input{
		RunID:        r.RunID,
		Narrator:     r.Narrator,
		GeneratedAt:  r.CompletedAt,
		Scan:         &r.Scan,
		Architecture: &r.Architecture,
		Security:     r.Security,
		Performance:  r.Performance,
		Roadmap:      &r.Roadmap,
		Health:       r.Health,
		RiskyFiles:   r.RiskyFiles,
	}
}

// Record converts the result for the run history store.
func (r *Result) Record(repo, commit string) *types.RunRecord {
	findings := make([]types.Finding, 0, len(r.Security)+len(r.Performance))
	findings = append(findings, r.Security...)
	findings = append(findings, r.Performance...)
	return &types.RunRecord{
		ID:        r.RunID,
		Repo:      repo,
		RepoPath:  r.Scan.RepoPath,
		Commit:    commit,
		Narrator:  r.Narrator,
		CreatedAt: r.CompletedAt,
		Score:     r.Health.Score,
		Grade:     r.Health.Grade,
		Breakdown: r.Health.Breakdown,
		Findings:  findings,
	}
}

// Analyzer wires the scanner, detectors and narrator together.
type Analyzer struct {
	registry *detect.Registry
	narrator narrative.Narrator
	fallback narrative.Narrator
	opts     Options
}

// New creates an analyzer. A nil registry uses every built-in detector and a
// nil narrator uses the static one.
func New(registry *detect.Registry, narrator narrative.Narrator, opts Options) *Analyzer {
	if registry == nil {
		registry = detect.DefaultRegistry()
	}
	static := narrative.NewStaticNarrator()
	if narrator == nil {
		narrator = static
	}
	return &Analyzer{
		registry: registry,
		narrator: narrator,
		fallback: static,
		opts:     opts,
	}
}

// Run analyzes the repository at root. Architecture narration runs alongside
// detection; the roadmap needs the findings and runs after.
func (a *Analyzer) Run(ctx context.Context, root string) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Narrator:  a.narrator.Name(),
	}

	detectors, err := a.registry.Resolve(a.opts.Detectors)
	if err != nil {
		return nil, fmt.Errorf("resolving detectors: %w", err)
	}

	scanner, err := scan.NewScanner(root)
	if err != nil {
		return nil, err
	}
	if len(a.opts.IgnoreDirs) > 0 {
		scanner.IgnoreDirs = a.opts.IgnoreDirs
	}
	scanner.ExcludePaths = a.opts.ExcludePaths
	if a.opts.MaxFileBytes > 0 {
		scanner.MaxFileBytes = a.opts.MaxFileBytes
	}

	inv, err := scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning repository: %w", err)
	}
	result.Scan = inv.Result
	slog.Debug("scan complete", "run_id", result.RunID, "files", len(inv.Files), "languages", inv.Result.DetectedLanguages)

	var buckets *detect.Buckets
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		arch, err := a.architecture(gctx, inv.Result)
		if err != nil {
			return err
		}
		result.Architecture = arch
		return nil
	})
	g.Go(func() error {
		b, err := detect.NewRunner(detectors).Run(gctx, inv.Files, scanner)
		if err != nil {
			return err
		}
		buckets = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Security = buckets.Security
	result.Performance = buckets.Performance
	result.Skipped = buckets.Skipped
	slog.Debug("detection complete", "run_id", result.RunID, "summary", buckets.Summary())

	roadmap, err := a.roadmap(ctx, inv.Result, buckets.Security, buckets.Performance)
	if err != nil {
		return nil, err
	}
	result.Roadmap = roadmap

	result.RiskyFiles = risk.RankRiskyFiles(result.Security, result.Performance, a.opts.RiskLimit)
	result.Health = health.Score(result.Scan, result.Architecture, result.Security, result.Performance)
	result.CompletedAt = time.Now()
	return result, nil
}

// architecture asks the narrator and falls back to the static narrator on
// failure, unless the run itself was canceled.
func (a *Analyzer) architecture(ctx context.Context, sr types.ScanResult) (types.ArchitectureResult, error) {
	arch, err := a.narrator.Architecture(ctx, sr)
	if err == nil {
		return arch, nil
	}
	if ctx.Err() != nil {
		return types.ArchitectureResult{}, fmt.Errorf("architecture narration: %w", ctx.Err())
	}
	slog.Warn("narrator failed, using static architecture", "narrator", a.narrator.Name(), "error", err)
	return a.fallback.Architecture(ctx, sr)
}

func (a *Analyzer) roadmap(ctx context.Context, sr types.ScanResult, security, performance []types.Finding) (types.Roadmap, error) {
	roadmap, err := a.narrator.Roadmap(ctx, sr, security, performance)
	if err == nil {
		return roadmap, nil
	}
	if ctx.Err() != nil {
		return types.Roadmap{}, fmt.Errorf("roadmap narration: %w", ctx.Err())
	}
	slog.Warn("narrator failed, using static roadmap", "narrator", a.narrator.Name(), "error", err)
	return a.fallback.Roadmap(ctx, sr, security, performance)
}
