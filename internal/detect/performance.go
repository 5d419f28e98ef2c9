package detect

import (
	"strings"

	"github.com/steveyegge/reposage/internal/types"
)

var queryKeywords = []string{"select ", "find(", "find_one", "query(", ".execute(", ".fetchall("}

// NPlusOneDetector flags files where a loop keyword coexists with at least
// two distinct query-like calls. It is a co-occurrence test, not control flow.
type NPlusOneDetector struct{}

// NewNPlusOneDetector creates the N+1 detector.
func NewNPlusOneDetector() *NPlusOneDetector { return &NPlusOneDetector{} }

func (d *NPlusOneDetector) Name() string             { return "n-plus-one" }
func (d *NPlusOneDetector) Category() types.Category { return types.CategoryPerformance }
func (d *NPlusOneDetector) Description() string {
	return "Loops in files issuing two or more kinds of database query"
}

func (d *NPlusOneDetector) Detect(path, content string) []types.Finding {
	lowered := strings.ToLower(content)
	if !containsAny(lowered, "for ", "foreach") {
		return nil
	}
	if countDistinct(lowered, queryKeywords...) < 2 {
		return nil
	}
	return []types.Finding{{
		Issue:          "Possible N+1 database query pattern",
		Severity:       types.SeverityMedium,
		Category:       types.CategoryPerformance,
		Detector:       d.Name(),
		Files:          []string{path},
		LikelySymptoms: "High database latency under load",
		RecommendedFix: "Batch queries or use eager loading / joins",
	}}
}

var paginationKeywords = []string{"limit", "offset", "page", "pagesize", "cursor"}

// PaginationDetector flags list/get handlers that query data with no sign of
// limit, offset, page or cursor handling anywhere in the file.
type PaginationDetector struct{}

// NewPaginationDetector creates the missing-pagination detector.
func NewPaginationDetector() *PaginationDetector { return &PaginationDetector{} }

func (d *PaginationDetector) Name() string             { return "pagination" }
func (d *PaginationDetector) Category() types.Category { return types.CategoryPerformance }
func (d *PaginationDetector) Description() string {
	return "Get/list queries with no limit, offset, page or cursor handling"
}

func (d *PaginationDetector) Detect(path, content string) []types.Finding {
	lowered := strings.ToLower(content)
	if !containsAny(lowered, "get", "list") || !containsAny(lowered, "select", "find(") {
		return nil
	}
	if containsAny(lowered, paginationKeywords...) {
		return nil
	}
	return []types.Finding{{
		Issue:          "API endpoint without pagination",
		Severity:       types.SeverityMedium,
		Category:       types.CategoryPerformance,
		Detector:       d.Name(),
		Files:          []string{path},
		LikelySymptoms: "High memory usage and slow response times",
		RecommendedFix: "Add pagination using limit/offset or cursor-based pagination",
	}}
}

var blockingKeywords = []string{"time.sleep", "open(", "read(", "write(", "requests.get", "requests.post"}

// SyncIODetector flags blocking calls. It reports at most once per file.
type SyncIODetector struct{}

// NewSyncIODetector creates the synchronous I/O detector.
func NewSyncIODetector() *SyncIODetector { return &SyncIODetector{} }

func (d *SyncIODetector) Name() string             { return "sync-io" }
func (d *SyncIODetector) Category() types.Category { return types.CategoryPerformance }
func (d *SyncIODetector) Description() string {
	return "Blocking sleeps, file reads/writes and synchronous HTTP calls"
}

func (d *SyncIODetector) Detect(path, content string) []types.Finding {
	lowered := strings.ToLower(content)
	if !containsAny(lowered, blockingKeywords...) {
		return nil
	}
	return []types.Finding{{
		Issue:          "Potential blocking synchronous I/O operation",
		Severity:       types.SeverityLow,
		Category:       types.CategoryPerformance,
		Detector:       d.Name(),
		Files:          []string{path},
		LikelySymptoms: "Thread blocking and reduced throughput",
		RecommendedFix: "Use asynchronous I/O or move work to background workers",
	}}
}
