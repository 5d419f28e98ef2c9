package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/steveyegge/reposage/internal/types"
)

// Fixed-width so that text ordering matches time ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

const runColumns = "id, repo, repo_path, commit_hash, narrator, created_at, score, grade, breakdown"

// SaveRun stores a run and its findings atomically.
func (s *HistoryStorage) SaveRun(ctx context.Context, run *types.RunRecord) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	breakdown, err := json.Marshal(run.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Repo, run.RepoPath, run.Commit, run.Narrator,
		run.CreatedAt.UTC().Format(timeFormat), run.Score, string(run.Grade), string(breakdown))
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	for i, f := range run.Findings {
		files, err := json.Marshal(nonNilFiles(f.Files))
		if err != nil {
			return fmt.Errorf("failed to encode files: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO findings (run_id, seq, category, detector, severity, issue, files, likely_symptoms, recommended_fix)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, string(f.Category), f.Detector, string(f.Severity), f.Issue, string(files),
			f.LikelySymptoms, f.RecommendedFix)
		if err != nil {
			return fmt.Errorf("failed to insert finding %d of run %s: %w", i, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads a run with its findings. id may be any unambiguous prefix of
// a stored run ID.
func (s *HistoryStorage) GetRun(ctx context.Context, id string) (*types.RunRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE id = ? OR substr(id, 1, length(?)) = ?
		ORDER BY id = ? DESC
		LIMIT 2
	`, id, id, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", id, err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(runs) > 1 && runs[0].ID != id:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}

	run := runs[0]
	if run.Findings, err = s.findings(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first, without findings.
func (s *HistoryStorage) ListRuns(ctx context.Context, filter types.RunFilter) ([]*types.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if filter.Repo != "" {
		query += ` WHERE repo = ?`
		args = append(args, filter.Repo)
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return scanRuns(rows)
}

// LatestRun returns the newest run for repo, with findings.
func (s *HistoryStorage) LatestRun(ctx context.Context, repo string) (*types.RunRecord, error) {
	runs, err := s.ListRuns(ctx, types.RunFilter{Repo: repo, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no runs for %s", ErrRunNotFound, repo)
	}
	run := runs[0]
	if run.Findings, err = s.findings(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// DiffRuns compares the findings of two stored runs.
func (s *HistoryStorage) DiffRuns(ctx context.Context, fromID, toID string) (*types.RunDiff, error) {
	from, err := s.GetRun(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.GetRun(ctx, toID)
	if err != nil {
		return nil, err
	}

	added, resolved, unchanged := types.DiffFindings(from.Findings, to.Findings)
	return &types.RunDiff{
		From:       from,
		To:         to,
		New:        added,
		Resolved:   resolved,
		Unchanged:  unchanged,
		ScoreDelta: to.Score - from.Score,
	}, nil
}

func (s *HistoryStorage) findings(ctx context.Context, runID string) ([]types.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, detector, severity, issue, files, likely_symptoms, recommended_fix
		FROM findings WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings for %s: %w", runID, err)
	}
	defer rows.Close()

	findings := []types.Finding{}
	for rows.Next() {
		var f types.Finding
		var category, severity, files string
		if err := rows.Scan(&category, &f.Detector, &severity, &f.Issue, &files, &f.LikelySymptoms, &f.RecommendedFix); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Category = types.Category(category)
		f.Severity = types.Severity(severity)
		if err := json.Unmarshal([]byte(files), &f.Files); err != nil {
			return nil, fmt.Errorf("failed to decode files for %s: %w", runID, err)
		}
		if len(f.Files) == 0 {
			f.Files = nil
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

func scanRuns(rows *sql.Rows) ([]*types.RunRecord, error) {
	defer rows.Close()

	runs := []*types.RunRecord{}
	for rows.Next() {
		var run types.RunRecord
		var createdAt, grade, breakdown string
		if err := rows.Scan(&run.ID, &run.Repo, &run.RepoPath, &run.Commit, &run.Narrator,
			&createdAt, &run.Score, &grade, &breakdown); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		t, err := time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at %q for run %s: %w", createdAt, run.ID, err)
		}
		run.CreatedAt = t
		run.Grade = types.Grade(grade)
		if err := json.Unmarshal([]byte(breakdown), &run.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown for %s: %w", run.ID, err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

func nonNilFiles(files []string) []string {
	if files == nil {
		return []string{}
	}
	return files
}
