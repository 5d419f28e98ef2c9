package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func TestNewScanner_InvalidRoot(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = NewScanner(file)
	assert.Error(t, err)
}

func TestScan_BuildsScanResult(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", "print('hi')\nprint('bye')\n")
	write(t, root, "requirements.txt", "flask\n")
	write(t, root, "config/settings.yaml", "debug: true\n")
	write(t, root, "api/routes.js", "const x = 1")
	write(t, root, "api/util.ts", "export {}\n")
	write(t, root, ".env", "SECRET=1\n")
	write(t, root, "node_modules/lib/index.js", "module.exports = {}")
	write(t, root, "build/out.js", "x")
	write(t, root, "pkg/__pycache__/m.pyc", "x")

	s, err := NewScanner(root)
	require.NoError(t, err)

	inv, err := s.Scan(context.Background())
	require.NoError(t, err)

	res := inv.Result
	assert.Equal(t, s.RootDir, res.RepoPath)
	assert.Equal(t, 6, res.TotalFilesScanned)
	assert.ElementsMatch(t, []string{".env", "api/routes.js", "api/util.ts", "config/settings.yaml", "main.py", "requirements.txt"}, inv.Files)
	assert.Equal(t, []string{"api", "config"}, res.MainDirectories)
	assert.Equal(t, []string{"JavaScript", "Python", "TypeScript"}, res.DetectedLanguages)
	assert.Equal(t, []string{"main.py"}, res.EntryPoints)
	assert.Equal(t, []string{".env", "config/settings.yaml"}, res.ConfigFiles)
	assert.Equal(t, []string{"requirements.txt"}, res.DependencyFiles)
	assert.Equal(t, "Python source, 2 lines", res.FileSummaries["main.py"])
	assert.Equal(t, "JavaScript source, 1 lines", res.FileSummaries["api/routes.js"])
	assert.NotContains(t, res.FileSummaries, "requirements.txt")
}

func TestScan_ExcludePaths(t *testing.T) {
	root := t.TempDir()
	write(t, root, "vendor/a.go", "package a")
	write(t, root, "src/app.min.js", "x")
	write(t, root, "src/app.js", "x")
	write(t, root, "docs/generated/x.py", "x")

	s, err := NewScanner(root)
	require.NoError(t, err)
	s.ExcludePaths = []string{"vendor/", "*.min.js", "docs/generated"}

	inv, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.js"}, inv.Files)
}

func TestScan_EmptyRepo(t *testing.T) {
	s, err := NewScanner(t.TempDir())
	require.NoError(t, err)

	inv, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Result.TotalFilesScanned)
	assert.Empty(t, inv.Result.DetectedLanguages)
	assert.NotNil(t, inv.Result.EntryPoints)
	assert.NotNil(t, inv.Result.FileSummaries)
}

func TestScan_CanceledContext(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.py", "x")
	s, err := NewScanner(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	write(t, root, "ok.py", "password = 'x'")
	write(t, root, "big.py", "0123456789")
	write(t, root, "blob.dat", "ab\x00cd")
	write(t, root, "logo.png", "not really a png")

	s, err := NewScanner(root)
	require.NoError(t, err)
	s.MaxFileBytes = 5

	_, err = s.ReadFile("big.py")
	assert.True(t, errors.Is(err, ErrFileTooLarge))

	s.MaxFileBytes = 0
	content, err := s.ReadFile("ok.py")
	require.NoError(t, err)
	assert.Equal(t, "password = 'x'", content)

	_, err = s.ReadFile("blob.dat")
	assert.ErrorIs(t, err, ErrBinaryFile)
	_, err = s.ReadFile("logo.png")
	assert.ErrorIs(t, err, ErrBinaryFile)

	_, err = s.ReadFile("missing.py")
	assert.Error(t, err)
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name    string
		rel     string
		pattern string
		isDir   bool
		want    bool
	}{
		{"dir prefix", "vendor/a.go", "vendor/", false, true},
		{"dir itself", "vendor", "vendor/", true, true},
		{"nested dir", "src/vendor", "vendor/", true, true},
		{"no partial dir", "vendorized/a.go", "vendor/", false, false},
		{"glob", "src/app.min.js", "*.min.js", false, true},
		{"glob miss", "src/app.js", "*.min.js", false, false},
		{"exact", "docs/generated", "docs/generated", true, true},
		{"exact child", "docs/generated/x.py", "docs/generated", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPattern(tt.rel, tt.pattern, tt.isDir))
		})
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(nil))
	assert.Equal(t, 1, countLines([]byte("a")))
	assert.Equal(t, 1, countLines([]byte("a\n")))
	assert.Equal(t, 2, countLines([]byte("a\nb")))
}
