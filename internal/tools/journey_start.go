package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/shell"
	"github.com/devorch/devorch/internal/store"
)

// JourneyStartTool creates a git worktree for a journey and records
// the branch and path on the journey row.
type JourneyStartTool struct {
	store     *store.Store
	worktrees *shell.WorktreeManager
	recorder  *metrics.Recorder
}

// NewJourneyStartTool creates a JourneyStartTool.
func NewJourneyStartTool(s *store.Store, wm *shell.WorktreeManager, rec *metrics.Recorder) *JourneyStartTool {
	return &JourneyStartTool{store: s, worktrees: wm, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyStartTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_start",
		mcp.WithDescription(
			"Start working on a journey: create a git branch and worktree in the "+
				"project's repository, then record them on the journey. Branch and "+
				"worktree names default to a slug of the journey name.",
		),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
		mcp.WithString("branch_name", mcp.Description("Branch to create; defaults to devorch/<slug>")),
		mcp.WithString("worktree_path", mcp.Description("Worktree directory; defaults to <root>/.worktrees/<slug>")),
	)
}

// Handle processes the journey_start tool call.
func (t *JourneyStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("journey_id", "")
	if id == "" {
		return mcp.NewToolResultError("'journey_id' is required"), nil
	}

	j, err := t.store.GetJourney(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("journey %q not found", id)), nil
		}
		return nil, fmt.Errorf("fetching journey: %w", err)
	}
	if j.WorktreePath != "" {
		return mcp.NewToolResultError(fmt.Sprintf(
			"journey %q already has a worktree at %s", j.Name, j.WorktreePath)), nil
	}

	p, err := t.store.GetProject(j.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("fetching project: %w", err)
	}
	if p.RootPath == "" {
		return mcp.NewToolResultError(fmt.Sprintf(
			"project %q has no root_path configured; set it with project_update first", p.Name)), nil
	}

	slug := Slugify(j.Name)
	branch := req.GetString("branch_name", "")
	if branch == "" {
		branch = "devorch/" + slug
	}
	worktree := req.GetString("worktree_path", "")
	if worktree == "" {
		worktree = filepath.Join(p.RootPath, ".worktrees", slug)
	}

	if res := t.worktrees.CreateWorktree(ctx, p.RootPath, branch, worktree); !res.Success {
		return mcp.NewToolResultError(fmt.Sprintf("worktree creation failed: %s", res.Error)), nil
	}

	updated, err := t.store.StartJourney(id, branch, worktree)
	if err != nil {
		return nil, fmt.Errorf("recording worktree on journey: %w", err)
	}
	t.recorder.IncStoreMutation("journey", "start")

	return jsonResult(updated)
}

// Slugify lowercases a name and replaces runs of non-alphanumerics
// with single hyphens, suitable for branch and directory names.
func Slugify(name string) string {
	var sb strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
