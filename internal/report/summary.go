package report

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/steveyegge/reposage/internal/types"
)

// Summary is the machine-readable digest written to summary.json.
type Summary struct {
	RunID               string             `json:"run_id,omitempty"`
	RepoName            string             `json:"repo_name"`
	LanguageDetected    []string           `json:"language_detected"`
	Frameworks          []string           `json:"frameworks"`
	ArchitectureType    string             `json:"architecture_type"`
	Health              SummaryHealth      `json:"health"`
	TopSecurityRisks    []SummaryRisk      `json:"top_security_risks"`
	TopPerformanceRisks []SummaryRisk      `json:"top_performance_risks"`
	TopRiskyFiles       []types.RiskedFile `json:"top_risky_files"`
	Roadmap             []SummaryTask      `json:"roadmap"`
}

// SummaryHealth is the score block of the summary.
type SummaryHealth struct {
	Score     int             `json:"score"`
	Grade     types.Grade     `json:"grade"`
	Breakdown types.Breakdown `json:"breakdown"`
	Badge     string          `json:"badge"`
}

// SummaryRisk is a High or Medium finding. File is null when the finding
// names no file.
type SummaryRisk struct {
	Issue    string         `json:"issue"`
	Severity types.Severity `json:"severity"`
	File     *string        `json:"file"`
}

// SummaryTask is a near-term roadmap item.
type SummaryTask struct {
	Priority types.Priority `json:"priority"`
	Task     string         `json:"task"`
	Effort   string         `json:"effort"`
}

// BuildSummary derives the summary from a normalized report.
func BuildSummary(r *Report) Summary {
	s := Summary{
		RunID:            r.RunID,
		RepoName:         repoName(r.Scan.RepoPath),
		LanguageDetected: r.Scan.DetectedLanguages,
		Frameworks:       r.Architecture.Frameworks,
		ArchitectureType: string(r.Architecture.ArchitectureType),
		Health: SummaryHealth{
			Score:     r.Health.Score,
			Grade:     r.Health.Grade,
			Breakdown: r.Health.Breakdown,
			Badge:     r.BadgeURL,
		},
		TopSecurityRisks:    summaryRisks(r.Security),
		TopPerformanceRisks: summaryRisks(r.Performance),
		TopRiskyFiles:       r.RiskyFiles,
		Roadmap:             []SummaryTask{},
	}

	for _, item := range r.Roadmap.Near() {
		if len(s.Roadmap) == summaryRoadmapLimit {
			break
		}
		s.Roadmap = append(s.Roadmap, SummaryTask{Priority: item.Priority, Task: item.Task, Effort: item.Effort})
	}
	return s
}

// WriteSummary encodes the summary of r as indented JSON.
func WriteSummary(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildSummary(r))
}

func summaryRisks(findings []types.Finding) []SummaryRisk {
	risks := []SummaryRisk{}
	for _, f := range findings {
		if f.Severity != types.SeverityHigh && f.Severity != types.SeverityMedium {
			continue
		}
		risk := SummaryRisk{Issue: f.Issue, Severity: f.Severity}
		if file := f.PrimaryFile(); file != "" {
			risk.File = &file
		}
		risks = append(risks, risk)
		if len(risks) == summaryRiskLimit {
			break
		}
	}
	return risks
}

func repoName(repoPath string) string {
	if repoPath == "" {
		return "unknown"
	}
	return filepath.Base(filepath.Clean(repoPath))
}
