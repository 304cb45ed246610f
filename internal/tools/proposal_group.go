package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/store"
)

// ProposalGroupTool manages proposal grouping: marking a proposal as a
// group head, parenting proposals under one another, and listing valid
// parents.
type ProposalGroupTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProposalGroupTool creates a ProposalGroupTool.
func NewProposalGroupTool(s *store.Store, rec *metrics.Recorder) *ProposalGroupTool {
	return &ProposalGroupTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalGroupTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Group proposals. Actions: set_group / unset_group (mark or unmark a "+
				"proposal as a group head), set_parent (nest a proposal under a parent; "+
				"empty parent_id detaches; cycles are rejected), available_parents "+
				"(proposals that can legally parent the given one), ungroup_children "+
				"(detach a parent's direct children).",
		),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Grouping operation"),
			mcp.Enum("set_group", "unset_group", "set_parent", "available_parents", "ungroup_children"),
		),
		mcp.WithString("proposal_id", mcp.Required(), mcp.Description("Proposal to operate on")),
		mcp.WithString("parent_id", mcp.Description("Parent proposal for set_parent; empty detaches")),
	)
	return mcp.NewTool("proposal_group", opts...)
}

// Handle processes the proposal_group tool call.
func (t *ProposalGroupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proposalID := req.GetString("proposal_id", "")
	if proposalID == "" {
		return mcp.NewToolResultError("'proposal_id' is required"), nil
	}

	mgr, err := managerFor(t.store, req.GetString("scope", ""), req.GetString("owner_id", ""))
	if err != nil {
		return toolErrOrFail(err)
	}

	switch action := req.GetString("action", ""); action {
	case "set_group", "unset_group":
		p, err := mgr.SetGroup(ctx, proposalID, action == "set_group")
		if err != nil {
			return toolErrOrFail(err)
		}
		t.recorder.IncStoreMutation("proposal", "group")
		return jsonResult(p)

	case "set_parent":
		p, err := mgr.SetParent(ctx, proposalID, req.GetString("parent_id", ""))
		if err != nil {
			if strings.Contains(err.Error(), "cycle") {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return toolErrOrFail(err)
		}
		t.recorder.IncStoreMutation("proposal", "group")
		return jsonResult(p)

	case "available_parents":
		return jsonResult(mgr.AvailableParents(proposalID))

	case "ungroup_children":
		count, err := mgr.UngroupChildren(ctx, proposalID)
		if err != nil {
			return nil, fmt.Errorf("ungrouping children: %w", err)
		}
		if count > 0 {
			t.recorder.IncStoreMutation("proposal", "group")
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d child proposal(s) detached.", count)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q", action)), nil
	}
}
