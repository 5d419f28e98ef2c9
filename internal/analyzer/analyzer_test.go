package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/reposage/internal/types"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

// fakeNarrator returns canned results, or errors when err is set.
type fakeNarrator struct {
	arch    types.ArchitectureResult
	roadmap types.Roadmap
	err     error
}

func (f *fakeNarrator) Name() string { return "fake" }

func (f *fakeNarrator) Architecture(context.Context, types.ScanResult) (types.ArchitectureResult, error) {
	return f.arch, f.err
}

func (f *fakeNarrator) Roadmap(context.Context, types.ScanResult, []types.Finding, []types.Finding) (types.Roadmap, error) {
	return f.roadmap, f.err
}

func TestRun_EndToEnd(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"app.py":            "API_KEY = \"abcdefghijklmnop1234\"\n",
		"orders/views.py":   "for o in orders:\n    cursor.execute(\"select * from items\")\n",
		"requirements.txt":  "flask\n",
		"README.md":         "# shop\n",
		"node_modules/x.js": "password = \"hunter2\"\n",
	})

	a := New(nil, nil, Options{})
	result, err := a.Run(context.Background(), root)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "static", result.Narrator)
	assert.Equal(t, 4, result.Scan.TotalFilesScanned)
	assert.Equal(t, []string{"app.py"}, result.Scan.EntryPoints)
	assert.Equal(t, []string{"Python"}, result.Scan.DetectedLanguages)

	require.NotEmpty(t, result.Security)
	assert.Equal(t, "app.py", result.Security[0].PrimaryFile())
	for _, f := range result.Security {
		assert.NotEqual(t, "node_modules/x.js", f.PrimaryFile())
	}

	require.NotEmpty(t, result.RiskyFiles)
	assert.Equal(t, "app.py", result.RiskyFiles[0].File)

	assert.Equal(t, types.ArchMonolith, result.Architecture.ArchitectureType)
	assert.NotEmpty(t, result.Roadmap.ImmediateFixes)
	assert.GreaterOrEqual(t, result.Health.Score, 0)
	assert.LessOrEqual(t, result.Health.Score, 100)
	assert.False(t, result.CompletedAt.Before(result.StartedAt))

	in := result.ReportInput()
	assert.Equal(t, result.RunID, in.RunID)
	assert.Same(t, &result.Scan, in.Scan)

	rec := result.Record("shop", "abc123")
	require.NoError(t, rec.Validate())
	assert.Equal(t, result.RunID, rec.ID)
	assert.Equal(t, result.Health.Score, rec.Score)
	assert.Len(t, rec.Findings, len(result.Security)+len(result.Performance))
}

func TestRun_UsesNarrator(t *testing.T) {
	root := writeRepo(t, map[string]string{"main.go": "package main\n"})
	n := &fakeNarrator{
		arch: types.ArchitectureResult{ArchitectureType: types.ArchMicroservices, DesignPatterns: []string{"Gateway"}},
		roadmap: types.Roadmap{
			ImmediateFixes: []types.RoadmapItem{{Priority: types.PriorityP0, Task: "canned"}},
		},
	}

	result, err := New(nil, n, Options{}).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "fake", result.Narrator)
	assert.Equal(t, types.ArchMicroservices, result.Architecture.ArchitectureType)
	assert.Equal(t, "canned", result.Roadmap.ImmediateFixes[0].Task)
	assert.Equal(t, 20, result.Health.Breakdown.Architecture)
}

func TestRun_NarratorFailureFallsBack(t *testing.T) {
	root := writeRepo(t, map[string]string{"main.py": "print('hi')\n"})

	result, err := New(nil, &fakeNarrator{err: errors.New("provider down")}, Options{}).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, types.ArchMonolith, result.Architecture.ArchitectureType)
	assert.NotNil(t, result.Roadmap.ImmediateFixes)
}

func TestRun_DetectorSelection(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"app.py": "API_KEY = \"abcdefghijklmnop1234\"\ntime.sleep(1)\n",
	})

	result, err := New(nil, nil, Options{Detectors: []string{"sync-io"}}).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Security)
	assert.Len(t, result.Performance, 1)

	_, err = New(nil, nil, Options{Detectors: []string{"nope"}}).Run(context.Background(), root)
	assert.ErrorContains(t, err, `detector "nope" not registered`)
}

func TestRun_SkipsOversizedFiles(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"big.py":   "x = 1\ny = 2\n",
		"small.py": "z = 3\n",
	})

	result, err := New(nil, nil, Options{MaxFileBytes: 8}).Run(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "big.py", result.Skipped[0].File)
}

func TestRun_InvalidRoot(t *testing.T) {
	_, err := New(nil, nil, Options{}).Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRun_Canceled(t *testing.T) {
	root := writeRepo(t, map[string]string{"a.py": "pass\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, nil, Options{}).Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
