package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/steveyegge/reposage/internal/types"
)

// Page geometry of report.txt.
const (
	TextWidth    = 80
	LinesPerPage = 60
)

// WriteText renders r as a paginated plain-text report. Pages are separated
// by form feeds and end with a "Page N of M" footer.
func WriteText(w io.Writer, r *Report) error {
	pages := Paginate(textLines(r), LinesPerPage)

	bw := bufio.NewWriter(w)
	for i, page := range pages {
		if i > 0 {
			bw.WriteString("\f")
		}
		for _, line := range page {
			bw.WriteString(line)
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// Paginate splits lines into pages of exactly perPage lines, the last two
// being a blank line and the footer. There is always at least one page.
func Paginate(lines []string, perPage int) [][]string {
	body := perPage - 2
	if body < 1 {
		body = 1
	}

	var chunks [][]string
	for start := 0; start < len(lines); start += body {
		end := min(start+body, len(lines))
		chunks = append(chunks, lines[start:end])
	}
	if len(chunks) == 0 {
		chunks = [][]string{nil}
	}

	pages := make([][]string, 0, len(chunks))
	for i, chunk := range chunks {
		page := make([]string, 0, body+2)
		page = append(page, chunk...)
		for len(page) < body {
			page = append(page, "")
		}
		page = append(page, "", center(fmt.Sprintf("Page %d of %d", i+1, len(chunks)), TextWidth))
		pages = append(pages, page)
	}
	return pages
}

func textLines(r *Report) []string {
	var lines []string
	add := func(text string) {
		lines = append(lines, Wrap(text, TextWidth, "")...)
	}
	item := func(text string) {
		lines = append(lines, Wrap("- "+text, TextWidth, "  ")...)
	}
	section := func(title string) {
		lines = append(lines, "", title, strings.Repeat("=", utf8.RuneCountInString(title)))
	}

	lines = append(lines, center("Repository Analysis Report", TextWidth), "")

	section("Repository Overview")
	add("Repository Path: " + orNA(r.Scan.RepoPath))
	add(fmt.Sprintf("Total Files Scanned: %d", r.Scan.TotalFilesScanned))
	add("Detected Languages: " + joinOr(r.Scan.DetectedLanguages, "None"))

	section("Repository Health")
	add(fmt.Sprintf("Health Score: %d / 100 (Grade %s) - %s", r.Health.Score, r.Health.Grade, r.Band.Label))
	b := r.Health.Breakdown
	item(fmt.Sprintf("Security: %d", b.Security))
	item(fmt.Sprintf("Performance: %d", b.Performance))
	item(fmt.Sprintf("Architecture: %d", b.Architecture))
	item(fmt.Sprintf("Hygiene: %d", b.Hygiene))

	section("Architecture Summary")
	add("Architecture Type: " + string(r.Architecture.ArchitectureType))
	if len(r.Architecture.KeyModules) > 0 {
		add("Key Modules: " + strings.Join(r.Architecture.KeyModules, ", "))
	}
	if r.Architecture.RuntimeFlowSummary != "" {
		add("Runtime Flow:")
		add(r.Architecture.RuntimeFlowSummary)
	}

	section("Security Findings")
	if len(r.Security) == 0 {
		add("No security issues detected.")
	}
	for _, f := range r.Security {
		item(fmt.Sprintf("%s: %s (%s)", f.Severity, f.Issue, f.FileLabel()))
	}

	section("Performance Findings")
	if len(r.Performance) == 0 {
		add("No performance issues detected.")
	}
	for _, f := range r.Performance {
		item(fmt.Sprintf("%s: %s (%s)", f.Severity, f.Issue, f.FileLabel()))
	}

	section("Engineering Roadmap")
	for _, phase := range []struct {
		title string
		items []types.RoadmapItem
	}{
		{phaseImmediate, r.Roadmap.ImmediateFixes},
		{phaseShort, r.Roadmap.ShortTerm},
		{phaseMedium, r.Roadmap.MediumTerm},
	} {
		lines = append(lines, "", phase.title)
		if len(phase.items) == 0 {
			add("No items identified.")
			continue
		}
		for _, it := range phase.items {
			item(fmt.Sprintf("%s: %s", it.Priority, it.Task))
		}
	}
	return lines
}

// Wrap breaks text into lines of at most width runes. Continuation lines
// start with indent. Words longer than a line are split.
func Wrap(text string, width int, indent string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	indentLen := utf8.RuneCountInString(indent)
	if width <= indentLen {
		width = indentLen + 1
	}

	limit := width - indentLen
	var pieces []string
	for _, word := range words {
		for utf8.RuneCountInString(word) > limit {
			head, tail := splitRunes(word, limit)
			pieces = append(pieces, head)
			word = tail
		}
		pieces = append(pieces, word)
	}

	var lines []string
	line := pieces[0]
	lineLen := utf8.RuneCountInString(line)
	for _, piece := range pieces[1:] {
		n := utf8.RuneCountInString(piece)
		if lineLen+1+n > width {
			lines = append(lines, line)
			line = indent + piece
			lineLen = indentLen + n
			continue
		}
		line += " " + piece
		lineLen += 1 + n
	}
	return append(lines, line)
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

func center(s string, width int) string {
	pad := (width - utf8.RuneCountInString(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
