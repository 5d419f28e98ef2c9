package scan

import (
	"path"
	"strings"
)

var entryPointNames = map[string]bool{
	"main.py":          true,
	"app.py":           true,
	"server.py":        true,
	"index.js":         true,
	"main.js":          true,
	"app.js":           true,
	"Application.java": true,
}

var configExtensions = []string{".env", ".yaml", ".yml", ".json", ".toml", ".ini"}

var dependencyFileNames = map[string]bool{
	"requirements.txt": true,
	"pyproject.toml":   true,
	"package.json":     true,
	"pom.xml":          true,
	"build.gradle":     true,
}

// Classification partitions a file list by purpose. A file may land in more
// than one list (package.json is both config and dependency manifest).
type Classification struct {
	EntryPoints     []string
	ConfigFiles     []string
	DependencyFiles []string
}

// Classify sorts slash-separated relative paths into entry points, config files
// and dependency manifests. Output lists keep the input order.
func Classify(paths []string) Classification {
	c := Classification{
		EntryPoints:     []string{},
		ConfigFiles:     []string{},
		DependencyFiles: []string{},
	}

	for _, p := range paths {
		base := path.Base(p)
		if IsEntryPoint(base) {
			c.EntryPoints = append(c.EntryPoints, p)
		}
		if IsConfigFile(base) {
			c.ConfigFiles = append(c.ConfigFiles, p)
		}
		if IsDependencyFile(base) {
			c.DependencyFiles = append(c.DependencyFiles, p)
		}
	}
	return c
}

// IsEntryPoint reports whether base is a canonical process entry file name.
func IsEntryPoint(base string) bool {
	return entryPointNames[base]
}

// IsConfigFile reports whether base ends with a config extension.
// ".env" matches both "prod.env" and a bare ".env".
func IsConfigFile(base string) bool {
	for _, ext := range configExtensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// IsDependencyFile reports whether base is a known dependency manifest.
func IsDependencyFile(base string) bool {
	return dependencyFileNames[base]
}
