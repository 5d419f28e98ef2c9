// Package storage persists analysis runs so results can be compared over time.
package storage

import (
	"context"

	"github.com/steveyegge/reposage/internal/storage/sqlite"
	"github.com/steveyegge/reposage/internal/types"
)

// ErrRunNotFound is returned when no stored run matches an ID.
var ErrRunNotFound = sqlite.ErrRunNotFound

// Storage defines the interface for run history backends.
type Storage interface {
	SaveRun(ctx context.Context, run *types.RunRecord) error
	GetRun(ctx context.Context, id string) (*types.RunRecord, error)
	ListRuns(ctx context.Context, filter types.RunFilter) ([]*types.RunRecord, error)
	LatestRun(ctx context.Context, repo string) (*types.RunRecord, error)
	DiffRuns(ctx context.Context, fromID, toID string) (*types.RunDiff, error)

	Close() error
}

// DefaultPath is where history lives when nothing else is configured.
const DefaultPath = ".reposage/history.db"

// Config holds database configuration.
type Config struct {
	// Path is the SQLite database file path.
	// Default: ".reposage/history.db"
	Path string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{Path: DefaultPath}
}

// NewStorage opens the SQLite history database described by cfg.
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	return sqlite.New(ctx, path)
}
