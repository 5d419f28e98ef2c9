package types

import (
	"fmt"
	"time"
)

// RunRecord is one persisted analysis run.
type RunRecord struct {
	ID        string    `json:"id"`
	Repo      string    `json:"repo"`
	RepoPath  string    `json:"repo_path"`
	Commit    string    `json:"commit,omitempty"`
	Narrator  string    `json:"narrator"`
	CreatedAt time.Time `json:"created_at"`
	Score     int       `json:"score"`
	Grade     Grade     `json:"grade"`
	Breakdown Breakdown `json:"breakdown"`
	Findings  []Finding `json:"findings,omitempty"`
}

// Validate checks the fields the history store requires.
func (r *RunRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if r.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("score must be between 0 and 100 (got %d)", r.Score)
	}
	for i, f := range r.Findings {
		if !f.Category.IsValid() {
			return fmt.Errorf("finding %d: invalid category: %s", i, f.Category)
		}
	}
	return nil
}

// RunFilter narrows a history listing.
type RunFilter struct {
	Repo  string // exact repo name; empty means all
	Limit int    // 0 means no limit
}

// RunDiff compares the findings of two runs. Findings match on Finding.Key.
type RunDiff struct {
	From       *RunRecord `json:"from"`
	To         *RunRecord `json:"to"`
	New        []Finding  `json:"new"`
	Resolved   []Finding  `json:"resolved"`
	Unchanged  int        `json:"unchanged"`
	ScoreDelta int        `json:"score_delta"`
}

// DiffFindings returns the findings of to that are absent from from (new)
// and those of from that are absent from to (resolved), each in input order.
func DiffFindings(from, to []Finding) (added, resolved []Finding, unchanged int) {
	before := make(map[string]bool, len(from))
	for _, f := range from {
		before[f.Key()] = true
	}
	after := make(map[string]bool, len(to))
	for _, f := range to {
		after[f.Key()] = true
	}

	added, resolved = []Finding{}, []Finding{}
	for _, f := range to {
		if before[f.Key()] {
			unchanged++
		} else {
			added = append(added, f)
		}
	}
	for _, f := range from {
		if !after[f.Key()] {
			resolved = append(resolved, f)
		}
	}
	return added, resolved, unchanged
}
