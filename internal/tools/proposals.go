package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/proposal"
	"github.com/devorch/devorch/internal/store"
)

// ProposalAddTool appends one proposal to an owner's list.
type ProposalAddTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProposalAddTool creates a ProposalAddTool.
func NewProposalAddTool(s *store.Store, rec *metrics.Recorder) *ProposalAddTool {
	return &ProposalAddTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalAddTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Add a proposal (a draft unit of work) to a project's planning list or "+
				"a journey's proposed-children list. New proposals start in draft status "+
				"at the end of the list.",
		),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("name", mcp.Required(), mcp.Description("Short proposal title")),
		mcp.WithString("description", mcp.Description("What the work covers")),
		mcp.WithString("early_plan", mcp.Description("Rough implementation sketch")),
	)
	return mcp.NewTool("proposal_add", opts...)
}

// Handle processes the proposal_add tool call.
func (t *ProposalAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	mgr, err := managerFor(t.store, req.GetString("scope", ""), req.GetString("owner_id", ""))
	if err != nil {
		return toolErrOrFail(err)
	}

	p, err := mgr.Add(ctx, proposal.Fields{
		Name:        name,
		Description: req.GetString("description", ""),
		EarlyPlan:   req.GetString("early_plan", ""),
	})
	if err != nil {
		return nil, fmt.Errorf("adding proposal: %w", err)
	}
	t.recorder.IncStoreMutation("proposal", "add")

	return jsonResult(p)
}

// ProposalListTool lists an owner's proposals, optionally by status.
type ProposalListTool struct {
	store *store.Store
}

// NewProposalListTool creates a ProposalListTool.
func NewProposalListTool(s *store.Store) *ProposalListTool {
	return &ProposalListTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalListTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("List an owner's proposals in board order, optionally filtered by status."),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("status",
			mcp.Description("Filter by status, or 'all' (default)"),
			mcp.Enum("all", "draft", "generated", "already_completed", "punted", "rejected", "cancelled"),
		),
	)
	return mcp.NewTool("proposal_list", opts...)
}

// Handle processes the proposal_list tool call.
func (t *ProposalListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mgr, err := managerFor(t.store, req.GetString("scope", ""), req.GetString("owner_id", ""))
	if err != nil {
		return toolErrOrFail(err)
	}
	return jsonResult(mgr.ByStatus(req.GetString("status", "all")))
}

// ProposalUpdateTool applies a partial update to one proposal.
type ProposalUpdateTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProposalUpdateTool creates a ProposalUpdateTool.
func NewProposalUpdateTool(s *store.Store, rec *metrics.Recorder) *ProposalUpdateTool {
	return &ProposalUpdateTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalUpdateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Update proposal fields. Only supplied fields change. " +
			"Updating an unknown proposal ID is a silent no-op."),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("proposal_id", mcp.Required(), mcp.Description("Proposal ID")),
		mcp.WithString("name", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("early_plan", mcp.Description("New implementation sketch")),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum("draft", "generated", "already_completed", "punted", "rejected", "cancelled"),
		),
	)
	return mcp.NewTool("proposal_update", opts...)
}

// Handle processes the proposal_update tool call.
func (t *ProposalUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proposalID := req.GetString("proposal_id", "")
	if proposalID == "" {
		return mcp.NewToolResultError("'proposal_id' is required"), nil
	}

	mgr, err := managerFor(t.store, req.GetString("scope", ""), req.GetString("owner_id", ""))
	if err != nil {
		return toolErrOrFail(err)
	}

	u := proposal.Update{
		Name:        optString(req, "name"),
		Description: optString(req, "description"),
		EarlyPlan:   optString(req, "early_plan"),
	}
	if raw := optString(req, "status"); raw != nil {
		status := proposal.Status(*raw)
		u.Status = &status
	}

	p, err := mgr.UpdateProposal(ctx, proposalID, u)
	if err != nil {
		if strings.Contains(err.Error(), "invalid proposal status") {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("updating proposal: %w", err)
	}
	if p == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Proposal %s not found; nothing changed.", proposalID)), nil
	}
	t.recorder.IncStoreMutation("proposal", "update")

	return jsonResult(p)
}

// ProposalDeleteTool removes a proposal from its owner's list.
type ProposalDeleteTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProposalDeleteTool creates a ProposalDeleteTool.
func NewProposalDeleteTool(s *store.Store, rec *metrics.Recorder) *ProposalDeleteTool {
	return &ProposalDeleteTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalDeleteTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Delete a proposal from its owner's list."),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("proposal_id", mcp.Required(), mcp.Description("Proposal ID")),
	)
	return mcp.NewTool("proposal_delete", opts...)
}

// Handle processes the proposal_delete tool call.
func (t *ProposalDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proposalID := req.GetString("proposal_id", "")
	if proposalID == "" {
		return mcp.NewToolResultError("'proposal_id' is required"), nil
	}

	mgr, err := managerFor(t.store, req.GetString("scope", ""), req.GetString("owner_id", ""))
	if err != nil {
		return toolErrOrFail(err)
	}
	if err := mgr.Delete(ctx, proposalID); err != nil {
		return nil, fmt.Errorf("deleting proposal: %w", err)
	}
	t.recorder.IncStoreMutation("proposal", "delete")

	return mcp.NewToolResultText(fmt.Sprintf("Proposal %s deleted.", proposalID)), nil
}

// toolErrOrFail classifies managerFor errors: bad scope or a missing
// owner come back to the model as tool errors, everything else fails
// the request.
func toolErrOrFail(err error) (*mcp.CallToolResult, error) {
	msg := err.Error()
	if strings.Contains(msg, "unknown scope") || strings.Contains(msg, "not found") {
		return mcp.NewToolResultError(msg), nil
	}
	return nil, err
}
