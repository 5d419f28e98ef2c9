package detect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steveyegge/reposage/internal/types"
)

// ContentSource reads a file's text by its relative path.
type ContentSource interface {
	ReadFile(rel string) (string, error)
}

// SkippedFile records a file whose detectors did not run.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Buckets holds the category-scoped findings of one run.
type Buckets struct {
	Security      []types.Finding `json:"security"`
	Performance   []types.Finding `json:"performance"`
	Skipped       []SkippedFile   `json:"skipped,omitempty"`
	FilesAnalyzed int             `json:"files_analyzed"`
}

// Summary returns a one-line description of the buckets.
func (b *Buckets) Summary() string {
	return fmt.Sprintf("%d files analyzed, %d security findings, %d performance findings, %d skipped",
		b.FilesAnalyzed, len(b.Security), len(b.Performance), len(b.Skipped))
}

// Runner applies a fixed set of detectors to files one at a time.
type Runner struct {
	detectors []Detector
}

// NewRunner creates a runner over the given detectors, applied in order.
func NewRunner(detectors []Detector) *Runner {
	return &Runner{detectors: detectors}
}

// Detectors returns the detectors the runner applies.
func (r *Runner) Detectors() []Detector {
	return r.detectors
}

// AnalyzeFile runs every detector over one file and returns their findings
// in detector order.
func (r *Runner) AnalyzeFile(path, content string) []types.Finding {
	var findings []types.Finding
	for _, d := range r.detectors {
		findings = append(findings, d.Detect(path, content)...)
	}
	return findings
}

// Run reads each file from src and buckets the findings by category.
// Files that cannot be read are skipped and recorded; the run continues.
// Only context cancellation stops it early.
func (r *Runner) Run(ctx context.Context, files []string, src ContentSource) (*Buckets, error) {
	b := &Buckets{
		Security:    []types.Finding{},
		Performance: []types.Finding{},
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("detection interrupted: %w", err)
		}

		content, err := src.ReadFile(file)
		if err != nil {
			slog.Debug("skipping file", "file", file, "error", err)
			b.Skipped = append(b.Skipped, SkippedFile{File: file, Reason: err.Error()})
			continue
		}
		b.FilesAnalyzed++

		for _, f := range r.AnalyzeFile(file, content) {
			switch f.Category {
			case types.CategorySecurity:
				b.Security = append(b.Security, f)
			case types.CategoryPerformance:
				b.Performance = append(b.Performance, f)
			default:
				slog.Warn("dropping finding with unknown category", "file", file, "category", f.Category, "detector", f.Detector)
			}
		}
	}

	return b, nil
}
