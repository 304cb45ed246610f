package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/store"
)

// JourneyLinkTool manages directed typed links between journeys.
type JourneyLinkTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewJourneyLinkTool creates a JourneyLinkTool.
func NewJourneyLinkTool(s *store.Store, rec *metrics.Recorder) *JourneyLinkTool {
	return &JourneyLinkTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyLinkTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_link",
		mcp.WithDescription(
			"Manage links between journeys. Actions: add (create a directed typed "+
				"link such as blocks, relates_to, duplicates), list (links touching a "+
				"journey in either direction), delete.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Link operation"),
			mcp.Enum("add", "list", "delete"),
		),
		mcp.WithString("from_id", mcp.Description("Source journey; required for add")),
		mcp.WithString("to_id", mcp.Description("Target journey; required for add")),
		mcp.WithString("type", mcp.Description("Link type, default relates_to")),
		mcp.WithString("note", mcp.Description("Free-form note on the link")),
		mcp.WithString("journey_id", mcp.Description("Journey whose links to list; required for list")),
		mcp.WithNumber("link_id", mcp.Description("Link ID; required for delete")),
	)
}

// Handle processes the journey_link tool call.
func (t *JourneyLinkTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch action := req.GetString("action", ""); action {
	case "add":
		fromID := req.GetString("from_id", "")
		toID := req.GetString("to_id", "")
		if fromID == "" || toID == "" {
			return mcp.NewToolResultError("'from_id' and 'to_id' are required for add"), nil
		}
		if fromID == toID {
			return mcp.NewToolResultError("a journey cannot link to itself"), nil
		}
		link, err := t.store.AddLink(fromID, toID, req.GetString("type", ""), req.GetString("note", ""))
		if err != nil {
			return nil, fmt.Errorf("adding link: %w", err)
		}
		t.recorder.IncStoreMutation("link", "add")
		return jsonResult(link)

	case "list":
		journeyID := req.GetString("journey_id", "")
		if journeyID == "" {
			return mcp.NewToolResultError("'journey_id' is required for list"), nil
		}
		links, err := t.store.LinksFor(journeyID)
		if err != nil {
			return nil, fmt.Errorf("listing links: %w", err)
		}
		return jsonResult(links)

	case "delete":
		linkID := intArg(req, "link_id", 0)
		if linkID == 0 {
			return mcp.NewToolResultError("'link_id' is required for delete"), nil
		}
		if err := t.store.DeleteLink(int64(linkID)); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("link %d not found", linkID)), nil
			}
			return nil, fmt.Errorf("deleting link: %w", err)
		}
		t.recorder.IncStoreMutation("link", "delete")
		return mcp.NewToolResultText(fmt.Sprintf("Link %d deleted.", linkID)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q", action)), nil
	}
}
