package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/devorch/devorch/internal/logging"
)

// GitRunner runs git commands. Abstracted for testability: tool tests
// inject a fake instead of shelling out.
type GitRunner interface {
	// Run executes a git command in the given directory and returns
	// stdout+stderr combined.
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecGitRunner implements GitRunner with the system git binary.
type ExecGitRunner struct {
	log *logging.Logger
}

// NewExecGitRunner creates a GitRunner backed by os/exec.
func NewExecGitRunner(log *logging.Logger) *ExecGitRunner {
	return &ExecGitRunner{log: log}
}

// Run executes a git command via exec.CommandContext.
func (g *ExecGitRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}

	g.log.Printf("git: cd %s && git %s", dir, strings.Join(args, " "))

	output, err := cmd.CombinedOutput()
	if err != nil {
		g.log.Printf("git: failed: %v: %s", err, output)
		return output, fmt.Errorf("git %s failed in %s: %w\noutput: %s",
			strings.Join(args, " "), dir, err, string(output))
	}
	return output, nil
}

// WorktreeManager creates and removes git worktrees for started journeys.
type WorktreeManager struct {
	git GitRunner
	log *logging.Logger
}

// NewWorktreeManager creates a WorktreeManager with the given runner.
func NewWorktreeManager(git GitRunner, log *logging.Logger) *WorktreeManager {
	return &WorktreeManager{git: git, log: log}
}

// CreateWorktree adds a worktree for a new branch rooted at the
// repository's current HEAD. The worktree path must not already exist.
func (w *WorktreeManager) CreateWorktree(ctx context.Context, repoRoot, branch, path string) Result {
	if repoRoot == "" || branch == "" || path == "" {
		return Errf("repo root, branch and worktree path are all required")
	}
	if _, err := os.Stat(path); err == nil {
		return Errf("worktree path %s already exists", path)
	}

	if _, err := w.git.Run(ctx, repoRoot, "worktree", "add", "-b", branch, path); err != nil {
		return Errf("creating worktree: %v", err)
	}
	return Ok()
}

// RemoveWorktree removes a worktree and prunes stale registrations.
// A failure here is reported but callers treat it as best-effort —
// deleting a journey proceeds even when its worktree cannot be removed.
func (w *WorktreeManager) RemoveWorktree(ctx context.Context, repoRoot, path string) Result {
	if repoRoot == "" || path == "" {
		return Errf("repo root and worktree path are required")
	}

	if _, err := w.git.Run(ctx, repoRoot, "worktree", "remove", "--force", path); err != nil {
		w.log.Printf("shell: worktree remove failed (continuing): %v", err)
		return Errf("removing worktree: %v", err)
	}
	if _, err := w.git.Run(ctx, repoRoot, "worktree", "prune"); err != nil {
		w.log.Printf("shell: worktree prune failed (continuing): %v", err)
	}
	return Ok()
}
