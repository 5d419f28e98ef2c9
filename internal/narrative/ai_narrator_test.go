package narrative

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/reposage/internal/types"
)

// fakeCaller replies by operation name and records the prompts it saw.
type fakeCaller struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	prompts map[string]string
}

func (f *fakeCaller) CallAI(_ context.Context, prompt, operation, _ string, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prompts == nil {
		f.prompts = make(map[string]string)
	}
	f.prompts[operation] = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.replies[operation], nil
}

func TestAINarrator_Architecture(t *testing.T) {
	caller := &fakeCaller{replies: map[string]string{
		"architecture": "```json\n{\"architecture_type\": \"microservices\", \"key_modules\": [\"gateway\"]}\n```",
	}}
	n := NewAINarrator("fake", caller, "", 0, NewStaticNarrator())

	scan := types.ScanResult{
		RepoPath:          "/tmp/repo",
		TotalFilesScanned: 2,
		EntryPoints:       []string{"main.go"},
		FileSummaries:     map[string]string{"main.go": "Go source, 12 lines"},
	}
	arch, err := n.Architecture(context.Background(), scan)
	require.NoError(t, err)

	assert.Equal(t, types.ArchMicroservices, arch.ArchitectureType)
	assert.Equal(t, []string{"gateway"}, arch.KeyModules)
	assert.Contains(t, caller.prompts["architecture"], "main.go: Go source, 12 lines")
	assert.Contains(t, caller.prompts["architecture"], "Entry points: main.go")
	assert.Equal(t, "fake", n.Name())
}

func TestAINarrator_FallsBackOnTransportError(t *testing.T) {
	caller := &fakeCaller{err: errors.New("503 service unavailable")}
	n := NewAINarrator("fake", caller, "", 0, NewStaticNarrator())

	arch, err := n.Architecture(context.Background(), types.ScanResult{TotalFilesScanned: 1})
	require.NoError(t, err)
	assert.Equal(t, types.ArchMonolith, arch.ArchitectureType)

	security := []types.Finding{{Issue: "Leak", Severity: types.SeverityHigh, Category: types.CategorySecurity}}
	roadmap, err := n.Roadmap(context.Background(), types.ScanResult{}, security, nil)
	require.NoError(t, err)
	require.Len(t, roadmap.ImmediateFixes, 1)
}

func TestAINarrator_FallsBackOnUnreadableReply(t *testing.T) {
	caller := &fakeCaller{replies: map[string]string{
		"architecture": "I cannot determine the architecture.",
		"roadmap":      "",
	}}
	n := NewAINarrator("fake", caller, "", 0, NewStaticNarrator())

	arch, err := n.Architecture(context.Background(), types.ScanResult{TotalFilesScanned: 4, MainDirectories: []string{"a", "b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, types.ArchModularMonolith, arch.ArchitectureType)

	roadmap, err := n.Roadmap(context.Background(), types.ScanResult{}, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, roadmap.ImmediateFixes)
}

func TestAINarrator_NoFallback(t *testing.T) {
	caller := &fakeCaller{err: errors.New("boom")}
	n := NewAINarrator("fake", caller, "", 0, nil)

	_, err := n.Architecture(context.Background(), types.ScanResult{})
	assert.ErrorContains(t, err, "architecture narration failed")

	_, err = n.Roadmap(context.Background(), types.ScanResult{}, nil, nil)
	assert.ErrorContains(t, err, "roadmap narration failed")
}

func TestAINarrator_Roadmap(t *testing.T) {
	caller := &fakeCaller{replies: map[string]string{
		"roadmap": `{"immediate_fixes": [{"priority": "P0", "task": "Rotate leaked key"}], "short_term": [], "medium_term": []}`,
	}}
	n := NewAINarrator("fake", caller, "", 0, NewStaticNarrator())

	security := []types.Finding{{Issue: "Leak", Severity: types.SeverityHigh, Category: types.CategorySecurity, Files: []string{"x.py"}}}
	roadmap, err := n.Roadmap(context.Background(), types.ScanResult{RepoPath: "/r"}, security, nil)
	require.NoError(t, err)

	require.Len(t, roadmap.ImmediateFixes, 1)
	assert.Equal(t, "Rotate leaked key", roadmap.ImmediateFixes[0].Task)
	assert.True(t, strings.Contains(caller.prompts["roadmap"], `"issue": "Leak"`))
}

func TestNew(t *testing.T) {
	n, err := New(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, ProviderStatic, n.Name())

	_, err = New(context.Background(), Options{Provider: "oracle"})
	assert.ErrorContains(t, err, "unknown narrator provider")

	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err = New(context.Background(), Options{Provider: "Anthropic"})
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY not set")

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	n, err = New(context.Background(), Options{Provider: ProviderAnthropic})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, n.Name())
}
