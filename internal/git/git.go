// Package git acquires repositories for analysis using the git CLI.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// cloneWaitDelay bounds how long Clone waits for git's output pipes to close
// after the process has been killed.
const cloneWaitDelay = 2 * time.Second

// Git runs git commands through the git executable found on PATH.
type Git struct {
	gitPath string
}

// NewGit creates a new Git instance.
// It verifies that git is available on the system.
func NewGit(ctx context.Context) (*Git, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, gitPath, "version")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git command failed: %w", err)
	}

	return &Git{gitPath: gitPath}, nil
}

// Clone fetches url into cloneDir/<name>, where name comes from
// RepoNameFromURL. An existing target is reused without touching the network.
// The clone gets exactly one attempt bounded by timeout (zero means no
// limit); running out of time returns ErrCloneTimeout and a non-zero exit
// returns an error carrying git's stderr.
func (g *Git) Clone(ctx context.Context, url, cloneDir string, timeout time.Duration) (*CloneResult, error) {
	url = strings.TrimSpace(url)
	name := RepoNameFromURL(url)
	if name == "" || name == "." || name == ".." {
		return nil, fmt.Errorf("cannot derive repository name from %q", url)
	}

	target := filepath.Join(cloneDir, name)
	result := &CloneResult{Path: target, Name: name}

	if _, err := os.Stat(target); err == nil {
		slog.Info("repository already cloned, skipping", "path", target)
		result.Skipped = true
		return result, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", target, err)
	}

	if err := os.MkdirAll(cloneDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create clone directory %s: %w", cloneDir, err)
	}

	cctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(cctx, g.gitPath, "clone", "--", url, target)
	cmd.Stderr = &stderr
	// Transport helpers inherit stderr and outlive a killed git, so the
	// whole process group goes down and Wait stops draining after a delay.
	killProcessGroup(cmd)
	cmd.WaitDelay = cloneWaitDelay

	slog.Debug("cloning repository", "url", url, "target", target, "timeout", timeout)
	err := cmd.Run()
	if err == nil {
		return result, nil
	}

	// A killed clone leaves a partial checkout that would otherwise be
	// mistaken for a finished one on the next run.
	if rmErr := os.RemoveAll(target); rmErr != nil {
		slog.Warn("failed to remove partial clone", "path", target, "error", rmErr)
	}

	if errors.Is(cctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w after %s: %s", ErrCloneTimeout, timeout, url)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return nil, fmt.Errorf("git clone %s failed: %w", url, err)
	}
	return nil, fmt.Errorf("git clone %s failed: %w\n%s", url, err, msg)
}

// HeadCommit returns the commit hash checked out in repoPath.
// SECURITY: repoPath must be a validated, trusted path.
func (g *Git) HeadCommit(ctx context.Context, repoPath string) (string, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get commit hash in %s: %w", repoPath, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// IsRepository reports whether path is inside a git work tree.
func (g *Git) IsRepository(ctx context.Context, path string) bool {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", path, "rev-parse", "--is-inside-work-tree")
	output, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(output)) == "true"
}
