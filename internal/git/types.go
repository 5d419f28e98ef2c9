package git

import (
	"errors"
	"strings"
)

// ErrCloneTimeout is returned when a clone does not finish within its timeout.
var ErrCloneTimeout = errors.New("git clone timed out")

// CloneResult describes where a repository ended up.
type CloneResult struct {
	Path    string // local checkout directory
	Name    string // directory name derived from the URL
	Skipped bool   // target already existed, nothing was fetched
}

// RepoNameFromURL derives the checkout directory name from a clone URL: the
// last path segment with any trailing "/" and ".git" removed. Both
// "https://host/org/app.git" and "git@host:org/app" yield "app".
func RepoNameFromURL(url string) string {
	name := strings.TrimRight(strings.TrimSpace(url), "/")
	name = strings.TrimSuffix(name, ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
