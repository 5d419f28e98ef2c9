package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	paths := []string{
		"src/app.py",
		"package.json",
		"config/prod.env",
		".env",
		"settings.yml",
		"server/Application.java",
		"lib/util.go",
		"pom.xml",
		"main.py",
		"tools/setup.ini",
	}

	c := Classify(paths)

	assert.Equal(t, []string{"src/app.py", "server/Application.java", "main.py"}, c.EntryPoints)
	assert.Equal(t, []string{"package.json", "config/prod.env", ".env", "settings.yml", "tools/setup.ini"}, c.ConfigFiles)
	assert.Equal(t, []string{"package.json", "pom.xml"}, c.DependencyFiles)
}

func TestClassify_OrderPreservingAndIdempotent(t *testing.T) {
	paths := []string{"z/main.js", "a/index.js", "m/app.js", "b.toml", "a.json"}

	first := Classify(paths)
	second := Classify(paths)

	require.Equal(t, first, second)
	assert.Equal(t, []string{"z/main.js", "a/index.js", "m/app.js"}, first.EntryPoints)
	assert.Equal(t, []string{"b.toml", "a.json"}, first.ConfigFiles)
}

func TestClassify_NoMatches(t *testing.T) {
	c := Classify([]string{"README.md", "src/lib.rs"})
	assert.Empty(t, c.EntryPoints)
	assert.Empty(t, c.ConfigFiles)
	assert.Empty(t, c.DependencyFiles)
	assert.NotNil(t, c.EntryPoints)

	empty := Classify(nil)
	assert.Empty(t, empty.EntryPoints)
}

func TestClassify_CaseSensitiveNames(t *testing.T) {
	c := Classify([]string{"MAIN.PY", "application.java", "Package.json"})
	assert.Empty(t, c.EntryPoints)
	assert.Empty(t, c.DependencyFiles)
}

func TestDetectLanguages(t *testing.T) {
	paths := []string{"a.py", "b.py", "c.PY", "d.go", "e.rb", "f.php", "g.java", "h.ts", "i.js", "j.rs", "README"}
	assert.Equal(t,
		[]string{"Go", "Java", "JavaScript", "PHP", "Python", "Ruby", "TypeScript"},
		DetectLanguages(paths))

	assert.Empty(t, DetectLanguages([]string{"Makefile", "x.rs"}))
	assert.Equal(t, "", LanguageFor("noext"))
}

func TestLanguageFor_CaseSensitive(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"app.py", "Python"},
		{"cmd/main.go", "Go"},
		{"APP.PY", ""},
		{"Main.Go", ""},
		{"index.JS", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageFor(tt.path))
		})
	}
	assert.Empty(t, DetectLanguages([]string{"APP.PY", "Main.Go"}))
}
