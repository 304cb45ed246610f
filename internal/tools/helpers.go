// Package tools implements the MCP tool handlers for devorch.
//
// Each tool is a struct receiving its dependencies at construction and
// exposing Definition/Handle for registration. Validation failures are
// reported as tool errors (the model can correct and retry); unexpected
// store failures propagate as Go errors.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/proposal"
	"github.com/devorch/devorch/internal/store"
)

// jsonResult marshals v and returns it as the tool's text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// optString returns a pointer to the argument's value, or nil when the
// argument was not supplied. Distinguishes "not sent" from "sent empty"
// for partial updates.
func optString(req mcp.CallToolRequest, key string) *string {
	args := req.GetArguments()
	raw, ok := args[key]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	return &s
}

// intArg extracts an integer argument, returning defaultVal if the key
// is missing or not a number (JSON numbers arrive as float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// splitList parses a comma-separated argument into trimmed items.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Proposal scopes: proposals hang off either a project (top-level
// planning) or a journey (proposed child journeys).
const (
	scopeProject = "project"
	scopeJourney = "journey"
)

// managerFor loads the owner's proposal list and returns a Manager
// whose saves write the whole list back to the owning record.
func managerFor(s *store.Store, scope, ownerID string) (*proposal.Manager, error) {
	switch scope {
	case scopeProject:
		items, err := s.ProjectProposals(ownerID)
		if err != nil {
			return nil, err
		}
		return proposal.NewManager(items, func(ctx context.Context, next []proposal.Proposal) error {
			return s.SaveProjectProposals(ownerID, next)
		}), nil
	case scopeJourney:
		items, err := s.JourneyProposals(ownerID)
		if err != nil {
			return nil, err
		}
		return proposal.NewManager(items, func(ctx context.Context, next []proposal.Proposal) error {
			return s.SaveJourneyProposals(ownerID, next)
		}), nil
	default:
		return nil, fmt.Errorf("unknown scope %q: must be %q or %q", scope, scopeProject, scopeJourney)
	}
}

// withScopeArgs adds the shared scope/owner_id parameters to a proposal
// tool definition.
func withScopeArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("scope",
			mcp.Required(),
			mcp.Description("Where the proposal list lives: 'project' (top-level planning) or 'journey' (proposed child journeys)"),
			mcp.Enum(scopeProject, scopeJourney),
		),
		mcp.WithString("owner_id",
			mcp.Required(),
			mcp.Description("ID of the project or journey that owns the proposal list"),
		),
	}
}
