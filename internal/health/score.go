package health

import (
	"github.com/steveyegge/reposage/internal/types"
)

// Sub-score ceilings. They sum to 100.
const (
	MaxSecurity     = 40
	MaxPerformance  = 30
	MaxArchitecture = 20
	MaxHygiene      = 10
)

// Score derives the health score from the scan, the narrator's architecture
// view and the two finding buckets. It is a pure function.
//
// Security and performance cap the accumulated penalty at the ceiling before
// subtracting. Architecture and hygiene subtract first and floor at zero.
func Score(scan types.ScanResult, arch types.ArchitectureResult, security, performance []types.Finding) types.HealthScore {
	b := types.Breakdown{
		Security:     securityScore(security),
		Performance:  performanceScore(performance),
		Architecture: architectureScore(arch),
		Hygiene:      hygieneScore(scan),
	}

	score := clamp(b.Total(), 0, 100)
	return types.HealthScore{
		Score:     score,
		Breakdown: b,
		Grade:     GradeFor(score),
	}
}

func securityScore(findings []types.Finding) int {
	penalty := 0
	for _, f := range findings {
		penalty += f.Severity.SecurityPenalty()
	}
	return MaxSecurity - min(penalty, MaxSecurity)
}

func performanceScore(findings []types.Finding) int {
	penalty := 0
	for _, f := range findings {
		penalty += f.Severity.PerformancePenalty()
	}
	return MaxPerformance - min(penalty, MaxPerformance)
}

func architectureScore(arch types.ArchitectureResult) int {
	score := MaxArchitecture
	switch arch.ArchitectureType {
	case types.ArchMonolith:
		score -= 6
	case types.ArchModularMonolith:
		score -= 2
	}
	if len(arch.DesignPatterns) == 0 {
		score -= 4
	}
	return max(score, 0)
}

func hygieneScore(scan types.ScanResult) int {
	score := MaxHygiene
	if len(scan.EntryPoints) == 0 {
		score -= 3
	}
	if len(scan.DependencyFiles) == 0 {
		score -= 3
	}
	if scan.TotalFilesScanned < 5 {
		score -= 4
	}
	return max(score, 0)
}

// GradeFor maps a score to a letter. There is no F branch: a score of 0 is a D.
func GradeFor(score int) types.Grade {
	switch {
	case score >= 85:
		return types.GradeA
	case score >= 70:
		return types.GradeB
	case score >= 50:
		return types.GradeC
	default:
		return types.GradeD
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
