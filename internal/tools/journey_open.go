package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/shell"
	"github.com/devorch/devorch/internal/store"
)

// JourneyOpenTool opens a journey's worktree in the configured editor
// or terminal.
type JourneyOpenTool struct {
	store    *store.Store
	launcher *shell.Launcher
}

// NewJourneyOpenTool creates a JourneyOpenTool.
func NewJourneyOpenTool(s *store.Store, l *shell.Launcher) *JourneyOpenTool {
	return &JourneyOpenTool{store: s, launcher: l}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyOpenTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_open",
		mcp.WithDescription(
			"Open a journey's git worktree in the configured editor or a terminal. "+
				"The journey must have been started first (journey_start).",
		),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
		mcp.WithString("target",
			mcp.Description("'editor' (default) or 'terminal'"),
			mcp.Enum("editor", "terminal"),
		),
		mcp.WithString("command", mcp.Description("Command to run inside the terminal, e.g. a dev server start command")),
	)
}

// Handle processes the journey_open tool call.
func (t *JourneyOpenTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
	if j.WorktreePath == "" {
		return mcp.NewToolResultError(fmt.Sprintf(
			"journey %q has no worktree yet; run journey_start first", j.Name)), nil
	}

	target := req.GetString("target", "editor")
	var res shell.Result
	switch target {
	case "editor":
		res = t.launcher.OpenEditor(ctx, j.WorktreePath)
	case "terminal":
		res = t.launcher.OpenTerminal(ctx, j.WorktreePath, req.GetString("command", ""))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid target %q: must be 'editor' or 'terminal'", target)), nil
	}
	if !res.Success {
		return mcp.NewToolResultError(res.Error), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Opened %s at %s.", target, j.WorktreePath)), nil
}
