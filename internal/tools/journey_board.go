package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/journey"
	"github.com/devorch/devorch/internal/store"
)

// JourneyBoardTool renders a project's journeys as a grouped board:
// parent journeys with their children nested, standalone journeys
// alongside, each annotated with flow progress.
type JourneyBoardTool struct {
	store *store.Store
}

// NewJourneyBoardTool creates a JourneyBoardTool.
func NewJourneyBoardTool(s *store.Store) *JourneyBoardTool {
	return &JourneyBoardTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyBoardTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_board",
		mcp.WithDescription(
			"Project board view: journeys grouped under their parents, "+
				"optionally filtered by status category (pending, active, done). "+
				"A parent outside the filter leaves its matching children standalone.",
		),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("category",
			mcp.Description("Filter by status category"),
			mcp.Enum("pending", "active", "done"),
		),
	)
}

// boardEntry is one journey on the board with derived display fields.
type boardEntry struct {
	journey.Journey
	Category journey.Category `json:"category"`
	Progress float64          `json:"progress"`
	Children []boardEntry     `json:"children,omitempty"`
}

type boardPayload struct {
	Groups     []boardEntry `json:"groups"`
	Standalone []boardEntry `json:"standalone"`
}

// Handle processes the journey_board tool call.
func (t *JourneyBoardTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	all, err := t.store.ListJourneys(projectID)
	if err != nil {
		return nil, fmt.Errorf("listing journeys: %w", err)
	}

	filtered := all
	if category := req.GetString("category", ""); category != "" {
		filtered = nil
		for _, j := range all {
			if string(journey.CategoryFor(j.Type, j.Stage)) == category {
				filtered = append(filtered, j)
			}
		}
	}

	board := journey.GroupByParent(filtered, all)

	payload := boardPayload{
		Groups:     make([]boardEntry, 0, len(board.Groups)),
		Standalone: make([]boardEntry, 0, len(board.Standalone)),
	}
	for _, g := range board.Groups {
		entry := toBoardEntry(g.Parent)
		for _, child := range g.Children {
			entry.Children = append(entry.Children, toBoardEntry(child))
		}
		payload.Groups = append(payload.Groups, entry)
	}
	for _, j := range board.Standalone {
		payload.Standalone = append(payload.Standalone, toBoardEntry(j))
	}

	return jsonResult(payload)
}

func toBoardEntry(j journey.Journey) boardEntry {
	return boardEntry{
		Journey:  j,
		Category: journey.CategoryFor(j.Type, j.Stage),
		Progress: journey.Progress(j.Type, j.Stage),
	}
}
