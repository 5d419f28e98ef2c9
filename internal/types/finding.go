package types

import "strings"

// Severity is the ordinal rating attached to every finding.
// Values outside the three known literals are tolerated everywhere and weigh nothing.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// IsValid reports whether the severity is one of the known literals.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Rank orders severities for sorting issue tables (High=3, Medium=2, Low=1, unknown=0).
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// RiskWeight is the per-finding contribution to a file's risk score.
func (s Severity) RiskWeight() int {
	switch s {
	case SeverityHigh:
		return 10
	case SeverityMedium:
		return 5
	case SeverityLow:
		return 2
	default:
		return 0
	}
}

// SecurityPenalty is subtracted from the security sub-score per finding.
func (s Severity) SecurityPenalty() int {
	switch s {
	case SeverityHigh:
		return 10
	case SeverityMedium:
		return 6
	case SeverityLow:
		return 3
	default:
		return 0
	}
}

// PerformancePenalty is subtracted from the performance sub-score per finding.
func (s Severity) PerformancePenalty() int {
	switch s {
	case SeverityHigh:
		return 8
	case SeverityMedium:
		return 5
	case SeverityLow:
		return 2
	default:
		return 0
	}
}

// ParseSeverity maps loosely formatted input ("high", " HIGH ") onto the known literals.
// Anything else is returned verbatim so it keeps rendering but scores zero.
func ParseSeverity(s string) Severity {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	}
	return Severity(trimmed)
}

// Category is the analysis bucket a finding belongs to.
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
)

// IsValid reports whether the category is known.
func (c Category) IsValid() bool {
	return c == CategorySecurity || c == CategoryPerformance
}

// Title returns the display label used in report tables.
func (c Category) Title() string {
	switch c {
	case CategorySecurity:
		return "Security"
	case CategoryPerformance:
		return "Performance"
	}
	return string(c)
}

// Finding is one issue instance reported by a single detector.
// Findings are never merged, even when two detectors report the same file.
type Finding struct {
	Issue          string   `json:"issue"`
	Severity       Severity `json:"severity"`
	Category       Category `json:"category"`
	Detector       string   `json:"detector,omitempty"`
	Files          []string `json:"affected_files,omitempty"`
	LikelySymptoms string   `json:"likely_symptoms,omitempty"`
	RecommendedFix string   `json:"recommended_fix"`
}

// PrimaryFile returns the first affected file, or "" when the finding names none.
func (f Finding) PrimaryFile() string {
	for _, file := range f.Files {
		if file != "" {
			return file
		}
	}
	return ""
}

// FileLabel joins the affected files for table cells, "N/A" when empty.
func (f Finding) FileLabel() string {
	var files []string
	for _, file := range f.Files {
		if file != "" {
			files = append(files, file)
		}
	}
	if len(files) == 0 {
		return "N/A"
	}
	return strings.Join(files, ", ")
}

// Key identifies a finding across runs for history diffs.
func (f Finding) Key() string {
	return string(f.Category) + "|" + f.Issue + "|" + strings.Join(f.Files, ",")
}

// RiskedFile is one row of the risky-file ranking.
type RiskedFile struct {
	File              string `json:"file"`
	RiskScore         int    `json:"risk_score"`
	SecurityIssues    int    `json:"security_issues"`
	PerformanceIssues int    `json:"performance_issues"`
}
