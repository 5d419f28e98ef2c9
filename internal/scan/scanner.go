package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/steveyegge/reposage/internal/types"
)

// DefaultIgnoreDirs are skipped at any depth, matched on directory name.
var DefaultIgnoreDirs = []string{
	".git",
	"node_modules",
	"dist",
	"build",
	"__pycache__",
	".venv",
	"venv",
}

// DefaultMaxFileBytes bounds how much of a single file is read.
const DefaultMaxFileBytes int64 = 2 << 20

var (
	// ErrFileTooLarge is returned by ReadFile for files above MaxFileBytes.
	ErrFileTooLarge = errors.New("file exceeds size limit")
	// ErrBinaryFile is returned by ReadFile for content that is not text.
	ErrBinaryFile = errors.New("binary file")
)

// Scanner walks a repository once and records what it finds.
type Scanner struct {
	// RootDir is the absolute repository root.
	RootDir string

	// IgnoreDirs are directory names pruned during the walk.
	IgnoreDirs []string

	// ExcludePaths are patterns ("vendor/", "*.min.js", "docs/generated") for individual paths.
	ExcludePaths []string

	// MaxFileBytes caps ReadFile and line counting; 0 disables the cap.
	MaxFileBytes int64
}

// Inventory is the output of a scan: the public ScanResult plus the file list
// detectors iterate over.
type Inventory struct {
	Result types.ScanResult
	Files  []string
}

// NewScanner validates rootDir and returns a Scanner with default settings.
func NewScanner(rootDir string) (*Scanner, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("invalid root path %q: %w", rootDir, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("repository path %q: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository path %q is not a directory", absRoot)
	}

	return &Scanner{
		RootDir:      absRoot,
		IgnoreDirs:   DefaultIgnoreDirs,
		MaxFileBytes: DefaultMaxFileBytes,
	}, nil
}

// Scan walks the tree and builds the Inventory. Entries that cannot be read
// are skipped; only a failure on the root itself aborts.
func (s *Scanner) Scan(ctx context.Context) (*Inventory, error) {
	ignore := make(map[string]bool, len(s.IgnoreDirs))
	for _, d := range s.IgnoreDirs {
		ignore[d] = true
	}

	var files []string
	summaries := make(map[string]string)

	err := filepath.WalkDir(s.RootDir, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == s.RootDir {
				return err
			}
			slog.Debug("skipping unreadable entry", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.RootDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && ignore[d.Name()] {
				return filepath.SkipDir
			}
			if rel != "." && s.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || s.excluded(rel, false) {
			return nil
		}

		files = append(files, rel)
		if lang := LanguageFor(rel); lang != "" {
			if lines, err := s.countLines(p); err == nil {
				summaries[rel] = fmt.Sprintf("%s source, %d lines", lang, lines)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", s.RootDir, err)
	}

	classes := Classify(files)
	return &Inventory{
		Result: types.ScanResult{
			RepoPath:          s.RootDir,
			TotalFilesScanned: len(files),
			MainDirectories:   mainDirectories(files),
			DetectedLanguages: DetectLanguages(files),
			EntryPoints:       sortedUnique(classes.EntryPoints),
			ConfigFiles:       sortedUnique(classes.ConfigFiles),
			DependencyFiles:   sortedUnique(classes.DependencyFiles),
			FileSummaries:     summaries,
		},
		Files: files,
	}, nil
}

// ReadFile returns the text content of a file relative to RootDir.
func (s *Scanner) ReadFile(rel string) (string, error) {
	full := filepath.Join(s.RootDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return "", err
	}
	if s.MaxFileBytes > 0 && info.Size() > s.MaxFileBytes {
		return "", fmt.Errorf("%s (%d bytes): %w", rel, info.Size(), ErrFileTooLarge)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	if looksBinary(rel, data) {
		return "", fmt.Errorf("%s: %w", rel, ErrBinaryFile)
	}
	return string(data), nil
}

func (s *Scanner) excluded(rel string, isDir bool) bool {
	for _, pattern := range s.ExcludePaths {
		if matchesPattern(rel, pattern, isDir) {
			return true
		}
	}
	return false
}

func (s *Scanner) countLines(full string) (int, error) {
	info, err := os.Stat(full)
	if err != nil {
		return 0, err
	}
	if s.MaxFileBytes > 0 && info.Size() > s.MaxFileBytes {
		return 0, ErrFileTooLarge
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return 0, err
	}
	return countLines(data), nil
}

// matchesPattern supports directory prefixes ("vendor/"), globs on the base
// name ("*.min.js") and exact relative paths.
func matchesPattern(rel, pattern string, isDir bool) bool {
	if strings.HasSuffix(pattern, "/") {
		dir := strings.TrimSuffix(pattern, "/")
		if isDir && (rel == dir || strings.HasSuffix(rel, "/"+dir)) {
			return true
		}
		return strings.HasPrefix(rel, pattern) || strings.Contains(rel, "/"+pattern)
	}

	if strings.Contains(pattern, "*") {
		matched, _ := path.Match(pattern, path.Base(rel))
		return matched
	}

	return rel == pattern || strings.HasPrefix(rel, pattern+"/")
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	lines := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		lines++
	}
	return lines
}

var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".ico": true, ".bmp": true,
	".mp4": true, ".mov": true, ".mp3": true, ".wav": true,
	".pdf": true, ".zip": true, ".jar": true, ".gz": true, ".tgz": true, ".7z": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".woff": true, ".woff2": true,
}

// looksBinary checks the extension first, then sniffs for NUL bytes.
func looksBinary(rel string, data []byte) bool {
	if binaryExtensions[strings.ToLower(path.Ext(rel))] {
		return true
	}
	sniff := data
	if len(sniff) > 8000 {
		sniff = sniff[:8000]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}

// mainDirectories returns the distinct top-level directories holding files.
func mainDirectories(files []string) []string {
	var dirs []string
	for _, f := range files {
		if i := strings.IndexByte(f, '/'); i > 0 {
			dirs = append(dirs, f[:i])
		}
	}
	return sortedUnique(dirs)
}

func sortedUnique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
