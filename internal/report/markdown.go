package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/steveyegge/reposage/internal/health"
	"github.com/steveyegge/reposage/internal/types"
)

// Roadmap phase titles shared by the markdown and text renderers.
const (
	phaseImmediate = "Immediate Fixes (1-2 days)"
	phaseShort     = "Short Term (1-2 weeks)"
	phaseMedium    = "Medium Term (1-2 months)"
)

// WriteMarkdown renders r as report.md.
func WriteMarkdown(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Repository Analysis Report\n\n")

	fmt.Fprintf(bw, "## Repository Overview\n\n")
	fmt.Fprintf(bw, "- **Repository Path**: `%s`\n", r.Scan.RepoPath)
	fmt.Fprintf(bw, "- **Total Files Scanned**: %d\n", r.Scan.TotalFilesScanned)
	fmt.Fprintf(bw, "- **Detected Languages**: %s\n", joinOr(r.Scan.DetectedLanguages, "None"))
	if r.RunID != "" {
		fmt.Fprintf(bw, "- **Run ID**: `%s`\n", r.RunID)
	}
	fmt.Fprintf(bw, "- **Generated**: %s\n\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))

	fmt.Fprintf(bw, "## Repository Health Score\n\n")
	fmt.Fprintf(bw, "![Repo Health](%s)\n\n", r.BadgeURL)
	fmt.Fprintf(bw, "**Overall Score: %d / 100 (Grade %s)**\n\n", r.Health.Score, r.Health.Grade)
	fmt.Fprintf(bw, "**%s** - %s\n\n", r.Band.Label, r.Band.Description)
	b := r.Health.Breakdown
	fmt.Fprintf(bw, "| Area | Score |\n|------|-------|\n")
	fmt.Fprintf(bw, "| Security | %d / %d |\n", b.Security, health.MaxSecurity)
	fmt.Fprintf(bw, "| Performance | %d / %d |\n", b.Performance, health.MaxPerformance)
	fmt.Fprintf(bw, "| Architecture | %d / %d |\n", b.Architecture, health.MaxArchitecture)
	fmt.Fprintf(bw, "| Hygiene | %d / %d |\n\n", b.Hygiene, health.MaxHygiene)

	fmt.Fprintf(bw, "## Top %d Critical Issues\n\n", r.Limits.TopIssues)
	if len(r.TopIssues) == 0 {
		fmt.Fprintf(bw, "No issues detected.\n\n")
	} else {
		fmt.Fprintf(bw, "| # | Category | Issue | Severity | File | Recommended Fix |\n")
		fmt.Fprintf(bw, "|---|----------|-------|----------|------|-----------------|\n")
		for i, row := range r.TopIssues {
			fmt.Fprintf(bw, "| %d | %s | %s | %s | %s | %s |\n",
				i+1, row.Category.Title(), cell(row.Issue), cell(string(row.Severity)), cell(row.File), cell(row.Fix))
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "## Top Risky Files\n\n")
	if len(r.RiskyFiles) == 0 {
		fmt.Fprintf(bw, "No risky files identified.\n\n")
	} else {
		fmt.Fprintf(bw, "| File | Risk Score | Security Issues | Performance Issues |\n")
		fmt.Fprintf(bw, "|------|------------|-----------------|--------------------|\n")
		for _, rf := range r.RiskyFiles {
			fmt.Fprintf(bw, "| %s | %d | %d | %d |\n", cell(rf.File), rf.RiskScore, rf.SecurityIssues, rf.PerformanceIssues)
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "## Top %d Quick Wins\n\n", r.Limits.QuickWins)
	if len(r.QuickWins) == 0 {
		fmt.Fprintf(bw, "No immediate quick wins identified.\n\n")
	} else {
		for i, item := range r.QuickWins {
			fmt.Fprintf(bw, "%d. **[%s] %s**\n", i+1, item.Priority, item.Task)
			fmt.Fprintf(bw, "   - Impact: %s\n   - Effort: %s\n   - Risk: %s\n", item.Impact, item.Effort, item.Risk)
		}
		fmt.Fprintln(bw)
	}

	a := r.Architecture
	fmt.Fprintf(bw, "## Architecture Summary\n\n")
	fmt.Fprintf(bw, "- **Architecture Type**: %s\n", a.ArchitectureType)
	fmt.Fprintf(bw, "- **Key Modules**: %s\n", joinOr(a.KeyModules, "None"))
	fmt.Fprintf(bw, "- **Detected Design Patterns**: %s\n", joinOr(a.DesignPatterns, "None"))
	fmt.Fprintf(bw, "- **Frameworks**: %s\n", joinOr(a.Frameworks, "None"))
	if len(a.ServiceInteractions) > 0 {
		fmt.Fprintf(bw, "- **Service Interactions**:\n")
		for _, si := range a.ServiceInteractions {
			fmt.Fprintf(bw, "  - %s\n", si)
		}
	}
	fmt.Fprintf(bw, "\n### Runtime Flow\n\n%s\n\n", orNA(a.RuntimeFlowSummary))

	fmt.Fprintf(bw, "## Security Risks\n\n")
	if len(r.Security) == 0 {
		fmt.Fprintf(bw, "- No significant security risks detected.\n\n")
	}
	for _, f := range r.Security {
		fmt.Fprintf(bw, "- **%s** (Severity: %s)\n", f.Issue, f.Severity)
		fmt.Fprintf(bw, "  - Affected Files: %s\n", f.FileLabel())
		fmt.Fprintf(bw, "  - Recommended Fix: %s\n\n", orNA(f.RecommendedFix))
	}

	fmt.Fprintf(bw, "## Performance & Scalability Risks\n\n")
	if len(r.Performance) == 0 {
		fmt.Fprintf(bw, "- No significant performance risks detected.\n\n")
	}
	for _, f := range r.Performance {
		fmt.Fprintf(bw, "- **%s** (Severity: %s)\n", f.Issue, f.Severity)
		fmt.Fprintf(bw, "  - File: %s\n", f.FileLabel())
		fmt.Fprintf(bw, "  - Likely Symptoms: %s\n", orNA(f.LikelySymptoms))
		fmt.Fprintf(bw, "  - Recommended Fix: %s\n\n", orNA(f.RecommendedFix))
	}

	fmt.Fprintf(bw, "## Roadmap / Improvement Plan\n\n")
	writeMarkdownPhase(bw, phaseImmediate, r.Roadmap.ImmediateFixes)
	writeMarkdownPhase(bw, phaseShort, r.Roadmap.ShortTerm)
	writeMarkdownPhase(bw, phaseMedium, r.Roadmap.MediumTerm)

	return bw.Flush()
}

func writeMarkdownPhase(w io.Writer, title string, items []types.RoadmapItem) {
	fmt.Fprintf(w, "### %s\n\n", title)
	if len(items) == 0 {
		fmt.Fprintf(w, "- No items identified.\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "- **[%s] %s**\n", item.Priority, item.Task)
		fmt.Fprintf(w, "  - Impact: %s\n  - Effort: %s\n  - Risk: %s\n", item.Impact, item.Effort, item.Risk)
		fmt.Fprintf(w, "  - Justification: %s\n\n", item.Justification)
	}
}

// cell keeps a value from breaking its table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
