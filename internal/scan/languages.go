package scan

import (
	"path/filepath"
	"sort"
)

// languageMap is the fixed extension table. Extensions not listed are ignored.
var languageMap = map[string]string{
	".py":   "Python",
	".js":   "JavaScript",
	".ts":   "TypeScript",
	".java": "Java",
	".go":   "Go",
	".rb":   "Ruby",
	".php":  "PHP",
}

// LanguageFor returns the language mapped to the file's extension, or "".
// Extensions match case-sensitively, so "APP.PY" has no language.
func LanguageFor(path string) string {
	return languageMap[filepath.Ext(path)]
}

// DetectLanguages returns the sorted set of languages present in paths.
// Per-language counts are discarded once a language is seen.
func DetectLanguages(paths []string) []string {
	seen := make(map[string]bool)
	for _, p := range paths {
		if lang := LanguageFor(p); lang != "" {
			seen[lang] = true
		}
	}

	languages := make([]string, 0, len(seen))
	for lang := range seen {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}
