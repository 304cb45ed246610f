package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/store"
)

// JourneySearchTool runs a full-text search over journey names and
// descriptions.
type JourneySearchTool struct {
	store *store.Store
}

// NewJourneySearchTool creates a JourneySearchTool.
func NewJourneySearchTool(s *store.Store) *JourneySearchTool {
	return &JourneySearchTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneySearchTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_search",
		mcp.WithDescription(
			"Full-text search across journey names and descriptions, "+
				"best matches first. Plain words only; query syntax is not interpreted.",
		),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search terms")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, default 20")),
	)
}

// Handle processes the journey_search tool call.
func (t *JourneySearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	limit := intArg(req, "limit", 20)
	if limit <= 0 {
		limit = 20
	}

	results, err := t.store.SearchJourneys(query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching journeys: %w", err)
	}
	return jsonResult(results)
}
