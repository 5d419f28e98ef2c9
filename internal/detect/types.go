// Package detect holds the per-file heuristic detectors and the runner that
// feeds repository content through them.
//
// Detectors are whole-file substring and regex tests. They carry no line,
// scope or syntax awareness and false positives are expected: the output is
// a signal for a reviewer, not a verdict.
package detect

import (
	"strings"

	"github.com/steveyegge/reposage/internal/types"
)

// Detector inspects one file's content and reports findings.
//
// Implementations must be stateless: the same (path, content) always yields
// the same findings, and nothing carries over between calls.
type Detector interface {
	// Name returns the unique identifier, e.g. "secrets".
	Name() string

	// Category returns the bucket the detector's findings land in.
	Category() types.Category

	// Description is a one-line summary shown by `reposage detectors`.
	Description() string

	// Detect returns zero or more findings for a single file.
	Detect(path, content string) []types.Finding
}

// containsAny reports whether s contains at least one of the keywords.
func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// countDistinct returns how many of the keywords occur in s.
func countDistinct(s string, keywords ...string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			n++
		}
	}
	return n
}
