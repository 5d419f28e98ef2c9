package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatText     = "text"
)

// DefaultFormats are written when none are configured.
var DefaultFormats = []string{FormatMarkdown, FormatJSON, FormatText}

var formatFiles = map[string]struct {
	name   string
	render func(io.Writer, *Report) error
}{
	FormatMarkdown: {"report.md", WriteMarkdown},
	FormatJSON:     {"summary.json", WriteSummary},
	FormatText:     {"report.txt", WriteText},
}

// ParseFormats normalizes format names ("md" and "txt" are accepted) and
// drops duplicates. An empty list yields DefaultFormats.
func ParseFormats(names []string) ([]string, error) {
	var formats []string
	seen := make(map[string]bool)
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			f := strings.ToLower(strings.TrimSpace(part))
			switch f {
			case "":
				continue
			case "md":
				f = FormatMarkdown
			case "txt":
				f = FormatText
			}
			if _, ok := formatFiles[f]; !ok {
				return nil, fmt.Errorf("unknown report format %q (want markdown, json or text)", part)
			}
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}
	if len(formats) == 0 {
		return append([]string(nil), DefaultFormats...), nil
	}
	return formats, nil
}

// WriteAll renders r into dir in each format and returns the written paths
// in format order.
func WriteAll(dir string, r *Report, formats []string) ([]string, error) {
	formats, err := ParseFormats(formats)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		out := formatFiles[format]
		path := filepath.Join(dir, out.name)
		if err := writeFile(path, r, out.render); err != nil {
			return paths, fmt.Errorf("writing %s: %w", out.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, r *Report, render func(io.Writer, *Report) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return render(f, r)
}
