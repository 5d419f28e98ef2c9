package narrative

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/steveyegge/reposage/internal/scan"
	"github.com/steveyegge/reposage/internal/types"
)

// patternMarkers maps path fragments to the design pattern they suggest.
// Order decides report order.
var patternMarkers = []struct {
	fragment string
	pattern  string
}{
	{"controller", "MVC"},
	{"handler", "Handler"},
	{"service", "Service Layer"},
	{"repositor", "Repository"},
	{"middleware", "Middleware"},
	{"factory", "Factory"},
	{"adapter", "Adapter"},
	{"plugin", "Plugin"},
}

// severityPlan is how a severity maps onto the roadmap.
type severityPlan struct {
	priority types.Priority
	impact   string
	effort   string
	risk     string
}

var severityPlans = map[types.Severity]severityPlan{
	types.SeverityHigh:   {types.PriorityP0, "High", "Low", "Low"},
	types.SeverityMedium: {types.PriorityP1, "Medium", "Medium", "Low"},
	types.SeverityLow:    {types.PriorityP2, "Low", "Medium", "Medium"},
}

// StaticNarrator derives the narrative from the scan alone. It needs no
// network and always succeeds.
type StaticNarrator struct{}

var _ Narrator = (*StaticNarrator)(nil)

// NewStaticNarrator creates a static narrator.
func NewStaticNarrator() *StaticNarrator {
	return &StaticNarrator{}
}

// Name implements Narrator.
func (n *StaticNarrator) Name() string {
	return ProviderStatic
}

// Architecture infers the architecture type from layout: two or more
// top-level directories with their own dependency manifest read as
// microservices, three or more main directories as a modular monolith.
func (n *StaticNarrator) Architecture(_ context.Context, result types.ScanResult) (types.ArchitectureResult, error) {
	arch := types.ArchitectureResult{
		ArchitectureType:    types.ArchUnspecified,
		KeyModules:          []string{},
		DesignPatterns:      []string{},
		ServiceInteractions: []string{},
		Frameworks:          []string{},
	}
	if result.TotalFilesScanned == 0 {
		return arch, nil
	}

	services := serviceDirectories(result.DependencyFiles)
	switch {
	case len(services) >= 2:
		arch.ArchitectureType = types.ArchMicroservices
		for _, svc := range services {
			arch.ServiceInteractions = append(arch.ServiceInteractions,
				fmt.Sprintf("%s: deployed independently with its own dependency manifest", svc))
		}
	case len(result.MainDirectories) >= 3:
		arch.ArchitectureType = types.ArchModularMonolith
	default:
		arch.ArchitectureType = types.ArchMonolith
	}

	arch.KeyModules = append(arch.KeyModules, result.MainDirectories...)
	arch.DesignPatterns = detectPatterns(knownPaths(result))
	arch.Frameworks = scan.DetectFrameworks(result.RepoPath, result.DependencyFiles)
	arch.RuntimeFlowSummary = runtimeFlow(result)
	return arch, nil
}

// Roadmap schedules one item per distinct issue: High findings become P0
// immediate fixes, Medium P1 short-term work, everything else P2.
func (n *StaticNarrator) Roadmap(_ context.Context, _ types.ScanResult, security, performance []types.Finding) (types.Roadmap, error) {
	roadmap := types.Roadmap{
		ImmediateFixes: []types.RoadmapItem{},
		ShortTerm:      []types.RoadmapItem{},
		MediumTerm:     []types.RoadmapItem{},
	}

	type group struct {
		finding types.Finding
		files   map[string]bool
	}
	var order []string
	groups := make(map[string]*group)

	all := make([]types.Finding, 0, len(security)+len(performance))
	all = append(all, security...)
	all = append(all, performance...)
	for _, f := range all {
		g, ok := groups[f.Issue]
		if !ok {
			g = &group{finding: f, files: make(map[string]bool)}
			groups[f.Issue] = g
			order = append(order, f.Issue)
		}
		for _, file := range f.Files {
			if file != "" {
				g.files[file] = true
			}
		}
	}

	for _, issue := range order {
		g := groups[issue]
		plan, ok := severityPlans[g.finding.Severity]
		if !ok {
			plan = severityPlans[types.SeverityLow]
		}

		task := g.finding.RecommendedFix
		if task == "" {
			task = "Investigate: " + g.finding.Issue
		}
		item := types.RoadmapItem{
			Priority:      plan.priority,
			Task:          task,
			Impact:        plan.impact,
			Effort:        plan.effort,
			Risk:          plan.risk,
			Justification: justification(g.finding, len(g.files)),
		}

		switch plan.priority {
		case types.PriorityP0:
			roadmap.ImmediateFixes = append(roadmap.ImmediateFixes, item)
		case types.PriorityP1:
			roadmap.ShortTerm = append(roadmap.ShortTerm, item)
		default:
			roadmap.MediumTerm = append(roadmap.MediumTerm, item)
		}
	}
	return roadmap, nil
}

func justification(f types.Finding, files int) string {
	noun := "files"
	if files == 1 {
		noun = "file"
	}
	source := string(f.Category)
	if f.Detector != "" {
		source = f.Detector
	}
	return fmt.Sprintf("%s (%s severity) reported by %s in %d %s.", f.Issue, f.Severity, source, files, noun)
}

// serviceDirectories returns top-level directories holding a dependency
// manifest, in first-seen order.
func serviceDirectories(dependencyFiles []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, dep := range dependencyFiles {
		top, rest, nested := strings.Cut(dep, "/")
		if !nested || rest == "" || seen[top] {
			continue
		}
		seen[top] = true
		dirs = append(dirs, top)
	}
	return dirs
}

func knownPaths(result types.ScanResult) []string {
	paths := make([]string, 0, len(result.FileSummaries)+len(result.MainDirectories))
	paths = append(paths, result.MainDirectories...)
	for file := range result.FileSummaries {
		paths = append(paths, file)
	}
	paths = append(paths, result.EntryPoints...)
	paths = append(paths, result.ConfigFiles...)
	return paths
}

func detectPatterns(paths []string) []string {
	patterns := []string{}
	seen := make(map[string]bool)
	for _, marker := range patternMarkers {
		if seen[marker.pattern] {
			continue
		}
		for _, p := range paths {
			if strings.Contains(strings.ToLower(p), marker.fragment) {
				seen[marker.pattern] = true
				patterns = append(patterns, marker.pattern)
				break
			}
		}
	}
	return patterns
}

func runtimeFlow(result types.ScanResult) string {
	langs := "no recognized languages"
	if len(result.DetectedLanguages) > 0 {
		langs = strings.Join(result.DetectedLanguages, ", ")
	}

	if len(result.EntryPoints) == 0 {
		return fmt.Sprintf("No conventional entry point found; %d files scanned (%s).",
			result.TotalFilesScanned, langs)
	}

	entries := make([]string, 0, len(result.EntryPoints))
	for _, ep := range result.EntryPoints {
		entries = append(entries, path.Clean(ep))
	}
	return fmt.Sprintf("Execution starts at %s; %d files scanned (%s).",
		strings.Join(entries, ", "), result.TotalFilesScanned, langs)
}
