package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/steveyegge/reposage/internal/ai"
	"github.com/steveyegge/reposage/internal/types"
)

// Prompt inputs are capped so a large repository does not blow the context window.
const (
	maxPromptFiles    = 200
	maxPromptFindings = 40
	maxPromptBytes    = 24 * 1024
)

// AINarrator asks a model for the narrative. Transport failures and
// unreadable replies fall back to another narrator.
type AINarrator struct {
	name      string
	caller    ai.Caller
	model     string
	maxTokens int
	fallback  Narrator
}

var _ Narrator = (*AINarrator)(nil)

// NewAINarrator wraps caller. fallback may be nil, in which case failures
// are returned to the caller.
func NewAINarrator(name string, caller ai.Caller, model string, maxTokens int, fallback Narrator) *AINarrator {
	return &AINarrator{
		name:      name,
		caller:    caller,
		model:     model,
		maxTokens: maxTokens,
		fallback:  fallback,
	}
}

// Name implements Narrator.
func (n *AINarrator) Name() string {
	return n.name
}

// Architecture implements Narrator.
func (n *AINarrator) Architecture(ctx context.Context, scan types.ScanResult) (types.ArchitectureResult, error) {
	reply, err := n.caller.CallAI(ctx, buildArchitecturePrompt(scan), "architecture", n.model, n.maxTokens)
	if err != nil {
		if n.fallback == nil || ctx.Err() != nil {
			return types.ArchitectureResult{}, fmt.Errorf("architecture narration failed: %w", err)
		}
		slog.Warn("architecture narration failed, using fallback", "narrator", n.name, "error", err)
		return n.fallback.Architecture(ctx, scan)
	}

	payload := RawText(reply)
	if payload.fields("architecture") == nil && n.fallback != nil {
		slog.Warn("architecture reply was not JSON, using fallback", "narrator", n.name)
		return n.fallback.Architecture(ctx, scan)
	}
	return ResolveArchitecture(payload), nil
}

// Roadmap implements Narrator.
func (n *AINarrator) Roadmap(ctx context.Context, scan types.ScanResult, security, performance []types.Finding) (types.Roadmap, error) {
	prompt := buildRoadmapPrompt(scan, security, performance)
	reply, err := n.caller.CallAI(ctx, prompt, "roadmap", n.model, n.maxTokens)
	if err != nil {
		if n.fallback == nil || ctx.Err() != nil {
			return types.Roadmap{}, fmt.Errorf("roadmap narration failed: %w", err)
		}
		slog.Warn("roadmap narration failed, using fallback", "narrator", n.name, "error", err)
		return n.fallback.Roadmap(ctx, scan, security, performance)
	}

	payload := RawText(reply)
	if payload.fields("roadmap") == nil && n.fallback != nil {
		slog.Warn("roadmap reply was not JSON, using fallback", "narrator", n.name)
		return n.fallback.Roadmap(ctx, scan, security, performance)
	}
	return ResolveRoadmap(payload), nil
}

func buildArchitecturePrompt(scan types.ScanResult) string {
	files := make([]string, 0, len(scan.FileSummaries))
	for file, summary := range scan.FileSummaries {
		files = append(files, file+": "+summary)
	}
	sort.Strings(files)
	if len(files) > maxPromptFiles {
		files = files[:maxPromptFiles]
	}

	return ai.TruncateForPrompt(fmt.Sprintf(`You are a software architect reviewing a repository you have never seen.

Repository: %s
Total files scanned: %d
Languages: %s
Main directories: %s
Entry points: %s
Dependency files: %s
Config files: %s

File summaries:
%s

Describe the architecture. Respond with a single JSON object and nothing else:
{
  "architecture_type": "monolith | modular-monolith | microservices | unspecified",
  "key_modules": ["..."],
  "detected_design_patterns": ["..."],
  "service_interactions": ["..."],
  "frameworks": ["..."],
  "runtime_flow_summary": "one paragraph"
}`,
		scan.RepoPath,
		scan.TotalFilesScanned,
		listOrNone(scan.DetectedLanguages),
		listOrNone(scan.MainDirectories),
		listOrNone(scan.EntryPoints),
		listOrNone(scan.DependencyFiles),
		listOrNone(scan.ConfigFiles),
		strings.Join(files, "\n"),
	), maxPromptBytes)
}

func buildRoadmapPrompt(scan types.ScanResult, security, performance []types.Finding) string {
	return ai.TruncateForPrompt(fmt.Sprintf(`You are planning remediation work for the repository %s.

Security findings (JSON):
%s

Performance findings (JSON):
%s

Group the work into phases. Use priority P0 for fixes that must land in 1-2 days,
P1 for 1-2 weeks, P2 for 1-2 months. Respond with a single JSON object and nothing else:
{
  "immediate_fixes": [{"priority": "P0", "task": "", "impact": "", "effort": "", "risk": "", "justification": ""}],
  "short_term": [],
  "medium_term": []
}`,
		scan.RepoPath,
		findingsJSON(security),
		findingsJSON(performance),
	), maxPromptBytes)
}

func findingsJSON(findings []types.Finding) string {
	if len(findings) > maxPromptFindings {
		findings = findings[:maxPromptFindings]
	}
	if len(findings) == 0 {
		return "[]"
	}
	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
