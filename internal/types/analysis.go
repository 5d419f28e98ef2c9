package types

import "strings"

// ScanResult describes one repository traversal. It is built once per run and
// treated as read-only afterwards.
type ScanResult struct {
	RepoPath          string            `json:"repo_path"`
	TotalFilesScanned int               `json:"total_files_scanned"`
	MainDirectories   []string          `json:"main_directories"`
	DetectedLanguages []string          `json:"detected_languages"`
	EntryPoints       []string          `json:"entry_points"`
	ConfigFiles       []string          `json:"config_files"`
	DependencyFiles   []string          `json:"dependency_files"`
	FileSummaries     map[string]string `json:"file_summaries"`
}

// ArchitectureType is the coarse shape of a codebase as reported by the narrator.
type ArchitectureType string

const (
	ArchMonolith        ArchitectureType = "monolith"
	ArchModularMonolith ArchitectureType = "modular-monolith"
	ArchMicroservices   ArchitectureType = "microservices"
	ArchUnspecified     ArchitectureType = "unspecified"
)

// IsValid reports whether the type is one of the known shapes.
func (a ArchitectureType) IsValid() bool {
	switch a {
	case ArchMonolith, ArchModularMonolith, ArchMicroservices, ArchUnspecified:
		return true
	}
	return false
}

// ParseArchitectureType normalizes free text such as "Modular Monolith" or
// "modular_monolith". Unrecognized text yields ArchUnspecified.
func ParseArchitectureType(s string) ArchitectureType {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	norm = strings.Join(strings.Fields(norm), " ")
	switch norm {
	case "monolith", "monolithic":
		return ArchMonolith
	case "modular monolith":
		return ArchModularMonolith
	case "microservices", "microservice":
		return ArchMicroservices
	}
	return ArchUnspecified
}

// ArchitectureResult is supplied by the narrator; the analyzer never computes it.
type ArchitectureResult struct {
	ArchitectureType    ArchitectureType `json:"architecture_type"`
	KeyModules          []string         `json:"key_modules"`
	DesignPatterns      []string         `json:"detected_design_patterns"`
	ServiceInteractions []string         `json:"service_interactions"`
	Frameworks          []string         `json:"frameworks"`
	RuntimeFlowSummary  string           `json:"runtime_flow_summary"`
}

// Priority tags a roadmap item.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

// RoadmapItem is one remediation task.
type RoadmapItem struct {
	Priority      Priority `json:"priority"`
	Task          string   `json:"task"`
	Impact        string   `json:"impact"`
	Effort        string   `json:"effort"`
	Risk          string   `json:"risk"`
	Justification string   `json:"justification"`
}

// Roadmap groups remediation items into delivery phases.
type Roadmap struct {
	ImmediateFixes []RoadmapItem `json:"immediate_fixes"`
	ShortTerm      []RoadmapItem `json:"short_term"`
	MediumTerm     []RoadmapItem `json:"medium_term"`
}

// Near returns immediate fixes followed by short-term items.
func (r Roadmap) Near() []RoadmapItem {
	items := make([]RoadmapItem, 0, len(r.ImmediateFixes)+len(r.ShortTerm))
	items = append(items, r.ImmediateFixes...)
	return append(items, r.ShortTerm...)
}

// Grade is the letter attached to an overall health score.
// GradeF exists for completeness; the scoring formula never produces it.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Breakdown holds the four sub-scores.
type Breakdown struct {
	Security     int `json:"security"`
	Performance  int `json:"performance"`
	Architecture int `json:"architecture"`
	Hygiene      int `json:"hygiene"`
}

// Total sums the sub-scores.
func (b Breakdown) Total() int {
	return b.Security + b.Performance + b.Architecture + b.Hygiene
}

// HealthScore is the deterministic summary of a run.
type HealthScore struct {
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
	Grade     Grade     `json:"grade"`
}
