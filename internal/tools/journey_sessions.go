package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/store"
)

// JourneySessionTool records work sessions against a journey.
type JourneySessionTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewJourneySessionTool creates a JourneySessionTool.
func NewJourneySessionTool(s *store.Store, rec *metrics.Recorder) *JourneySessionTool {
	return &JourneySessionTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneySessionTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_session",
		mcp.WithDescription(
			"Track work sessions on a journey. Actions: start (record that a tool "+
				"such as an editor or coding agent began work), end (close a session "+
				"with an optional summary), list (all sessions for a journey).",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Session operation"),
			mcp.Enum("start", "end", "list"),
		),
		mcp.WithString("journey_id", mcp.Description("Journey ID; required for start and list")),
		mcp.WithString("tool", mcp.Description("Name of the tool doing the work; required for start")),
		mcp.WithNumber("session_id", mcp.Description("Session ID; required for end")),
		mcp.WithString("summary", mcp.Description("What happened during the session; end only")),
	)
}

// Handle processes the journey_session tool call.
func (t *JourneySessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch action := req.GetString("action", ""); action {
	case "start":
		journeyID := req.GetString("journey_id", "")
		tool := req.GetString("tool", "")
		if journeyID == "" || tool == "" {
			return mcp.NewToolResultError("'journey_id' and 'tool' are required for start"), nil
		}
		sess, err := t.store.StartSession(journeyID, tool)
		if err != nil {
			return nil, fmt.Errorf("starting session: %w", err)
		}
		t.recorder.IncStoreMutation("session", "start")
		return jsonResult(sess)

	case "end":
		sessionID := intArg(req, "session_id", 0)
		if sessionID == 0 {
			return mcp.NewToolResultError("'session_id' is required for end"), nil
		}
		if err := t.store.EndSession(int64(sessionID), req.GetString("summary", "")); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("session %d not found", sessionID)), nil
			}
			return nil, fmt.Errorf("ending session: %w", err)
		}
		t.recorder.IncStoreMutation("session", "end")
		return mcp.NewToolResultText(fmt.Sprintf("Session %d ended.", sessionID)), nil

	case "list":
		journeyID := req.GetString("journey_id", "")
		if journeyID == "" {
			return mcp.NewToolResultError("'journey_id' is required for list"), nil
		}
		sessions, err := t.store.SessionsFor(journeyID)
		if err != nil {
			return nil, fmt.Errorf("listing sessions: %w", err)
		}
		return jsonResult(sessions)

	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q", action)), nil
	}
}
