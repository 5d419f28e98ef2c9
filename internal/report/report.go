// Package report renders an analysis into report.md, summary.json and a
// paginated report.txt.
package report

import (
	"sort"
	"time"

	"github.com/steveyegge/reposage/internal/health"
	"github.com/steveyegge/reposage/internal/types"
)

// Default limits for the ranked sections.
const (
	DefaultTopIssues = 10
	DefaultQuickWins = 5

	summaryRiskLimit    = 5
	summaryRoadmapLimit = 5
)

// Input is everything the renderers consume. Any of the pointer fields may
// be nil and any slice may be nil; Build substitutes empty values.
type Input struct {
	RunID        string
	Narrator     string
	GeneratedAt  time.Time
	Scan         *types.ScanResult
	Architecture *types.ArchitectureResult
	Security     []types.Finding
	Performance  []types.Finding
	Roadmap      *types.Roadmap
	Health       types.HealthScore
	RiskyFiles   []types.RiskedFile
}

// Limits bounds the ranked sections. Zero values use the defaults.
type Limits struct {
	TopIssues int
	QuickWins int
}

// IssueRow is one line of the combined issues table.
type IssueRow struct {
	Category types.Category
	Issue    string
	Severity types.Severity
	File     string
	Fix      string
}

// Report is the normalized view every renderer works from.
type Report struct {
	RunID        string
	Narrator     string
	GeneratedAt  time.Time
	Scan         types.ScanResult
	Architecture types.ArchitectureResult
	Security     []types.Finding
	Performance  []types.Finding
	Roadmap      types.Roadmap
	Health       types.HealthScore
	Band         health.Band
	BadgeURL     string
	RiskyFiles   []types.RiskedFile
	TopIssues    []IssueRow
	QuickWins    []types.RoadmapItem
	Limits       Limits
}

// Build normalizes in and computes the ranked sections. It never fails.
func Build(in Input, limits Limits) *Report {
	if limits.TopIssues <= 0 {
		limits.TopIssues = DefaultTopIssues
	}
	if limits.QuickWins <= 0 {
		limits.QuickWins = DefaultQuickWins
	}

	r := &Report{
		RunID:       in.RunID,
		Narrator:    in.Narrator,
		GeneratedAt: in.GeneratedAt,
		Health:      in.Health,
		Band:        health.BandFor(in.Health.Score),
		BadgeURL:    health.BadgeURL(in.Health.Score),
		Security:    nonNil(in.Security),
		Performance: nonNil(in.Performance),
		RiskyFiles:  in.RiskyFiles,
		Limits:      limits,
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now()
	}
	if r.RiskyFiles == nil {
		r.RiskyFiles = []types.RiskedFile{}
	}

	if in.Scan != nil {
		r.Scan = *in.Scan
	}
	r.Scan = normalizeScan(r.Scan)

	if in.Architecture != nil {
		r.Architecture = *in.Architecture
	}
	r.Architecture = normalizeArchitecture(r.Architecture)

	if in.Roadmap != nil {
		r.Roadmap = *in.Roadmap
	}
	r.Roadmap = normalizeRoadmap(r.Roadmap)

	r.TopIssues = TopIssues(r.Security, r.Performance, limits.TopIssues)
	r.QuickWins = QuickWins(r.Roadmap, limits.QuickWins)
	return r
}

// TopIssues merges both buckets, security first, and returns the limit most
// severe rows. Equal severities keep their original order.
func TopIssues(security, performance []types.Finding, limit int) []IssueRow {
	rows := make([]IssueRow, 0, len(security)+len(performance))
	groups := []struct {
		category types.Category
		findings []types.Finding
	}{
		{types.CategorySecurity, security},
		{types.CategoryPerformance, performance},
	}
	for _, group := range groups {
		for _, f := range group.findings {
			category := f.Category
			if !category.IsValid() {
				category = group.category
			}
			rows = append(rows, IssueRow{
				Category: category,
				Issue:    f.Issue,
				Severity: f.Severity,
				File:     f.FileLabel(),
				Fix:      f.RecommendedFix,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Severity.Rank() > rows[j].Severity.Rank()
	})
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// QuickWins picks P0 and P1 items from the immediate and short-term phases,
// all P0 items first, each group in its original order.
func QuickWins(roadmap types.Roadmap, limit int) []types.RoadmapItem {
	var p0, p1 []types.RoadmapItem
	for _, item := range roadmap.Near() {
		switch item.Priority {
		case types.PriorityP0:
			p0 = append(p0, item)
		case types.PriorityP1:
			p1 = append(p1, item)
		}
	}

	wins := append(append(make([]types.RoadmapItem, 0, len(p0)+len(p1)), p0...), p1...)
	if limit >= 0 && len(wins) > limit {
		wins = wins[:limit]
	}
	return wins
}

func normalizeScan(s types.ScanResult) types.ScanResult {
	s.MainDirectories = nonNil(s.MainDirectories)
	s.DetectedLanguages = nonNil(s.DetectedLanguages)
	s.EntryPoints = nonNil(s.EntryPoints)
	s.ConfigFiles = nonNil(s.ConfigFiles)
	s.DependencyFiles = nonNil(s.DependencyFiles)
	if s.FileSummaries == nil {
		s.FileSummaries = map[string]string{}
	}
	return s
}

func normalizeArchitecture(a types.ArchitectureResult) types.ArchitectureResult {
	if a.ArchitectureType == "" {
		a.ArchitectureType = types.ArchUnspecified
	}
	a.KeyModules = nonNil(a.KeyModules)
	a.DesignPatterns = nonNil(a.DesignPatterns)
	a.ServiceInteractions = nonNil(a.ServiceInteractions)
	a.Frameworks = nonNil(a.Frameworks)
	return a
}

func normalizeRoadmap(r types.Roadmap) types.Roadmap {
	r.ImmediateFixes = nonNil(r.ImmediateFixes)
	r.ShortTerm = nonNil(r.ShortTerm)
	r.MediumTerm = nonNil(r.MediumTerm)
	return r
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
