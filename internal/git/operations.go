// Package git commits generated test files back to version control.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Operations defines the interface for git operations.
// This allows mocking git commands in tests.
type Operations interface {
	// IsRepository reports whether dir sits inside a git worktree.
	IsRepository(dir string) bool

	// Add stages a path relative to dir.
	Add(dir, path string) error

	// Commit records staged changes with the given message.
	Commit(dir, message string) error

	// Push pushes the current branch to its upstream.
	Push(dir string) error

	// CurrentBranch returns the checked-out branch name, or
	// "detached-{short-hash}" for a detached HEAD.
	CurrentBranch(dir string) string
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) IsRepository(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	output, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(output)) == "true"
}

func (g *gitOps) Add(dir, path string) error {
	cmd := exec.Command("git", "add", path)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git add %s: %w: %s", path, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (g *gitOps) Commit(dir, message string) error {
	cmd := exec.Command("git", "commit", "-m", message)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git commit: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (g *gitOps) Push(dir string) error {
	cmd := exec.Command("git", "push")
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git push: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (g *gitOps) CurrentBranch(dir string) string {
	cmd := exec.Command("git", "branch", "--show-current")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil || len(strings.TrimSpace(string(output))) == 0 {
		// Might be detached HEAD
		cmd = exec.Command("git", "rev-parse", "--short", "HEAD")
		cmd.Dir = dir
		output, err = cmd.Output()
		if err != nil {
			return "unknown"
		}
		return "detached-" + strings.TrimSpace(string(output))
	}
	return strings.TrimSpace(string(output))
}

// TrackGeneratedTests stages, commits, and optionally pushes the generated
// test directory. A missing directory or a non-repository dir is skipped
// silently: committing artifacts is a convenience, not a contract.
func TrackGeneratedTests(ops Operations, repoDir, testDir, message string, push bool) error {
	if _, err := os.Stat(testDir); err != nil {
		return nil
	}
	if !ops.IsRepository(repoDir) {
		return nil
	}

	if err := ops.Add(repoDir, testDir); err != nil {
		return err
	}
	if err := ops.Commit(repoDir, message); err != nil {
		return err
	}
	if push {
		return ops.Push(repoDir)
	}
	return nil
}
