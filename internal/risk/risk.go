// Package risk ranks files by the weighted findings that name them.
package risk

import (
	"sort"

	"github.com/steveyegge/reposage/internal/types"
)

// DefaultLimit is the number of rows RankRiskyFiles returns by default.
const DefaultLimit = 5

// RankRiskyFiles sums each finding's risk weight into every file it names,
// then returns the top limit files by score. Security findings are processed
// before performance findings and ties keep that first-seen order. Findings
// with no file contribute nothing; unknown severities add a zero weight but
// still count as an issue for the file. A non-positive limit means DefaultLimit.
func RankRiskyFiles(security, performance []types.Finding, limit int) []types.RiskedFile {
	if limit <= 0 {
		limit = DefaultLimit
	}

	index := make(map[string]int)
	var rows []types.RiskedFile

	add := func(f types.Finding, category types.Category) {
		weight := f.Severity.RiskWeight()
		for _, file := range f.Files {
			if file == "" {
				continue
			}
			i, ok := index[file]
			if !ok {
				i = len(rows)
				index[file] = i
				rows = append(rows, types.RiskedFile{File: file})
			}
			rows[i].RiskScore += weight
			if category == types.CategorySecurity {
				rows[i].SecurityIssues++
			} else {
				rows[i].PerformanceIssues++
			}
		}
	}

	for _, f := range security {
		add(f, types.CategorySecurity)
	}
	for _, f := range performance {
		add(f, types.CategoryPerformance)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RiskScore > rows[j].RiskScore
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []types.RiskedFile{}
	}
	return rows
}
