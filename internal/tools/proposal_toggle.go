package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/store"
)

// ProposalToggleTool flips a proposal between draft and one of the
// parked statuses. Toggling is an involution: applying the same action
// twice restores draft.
type ProposalToggleTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProposalToggleTool creates a ProposalToggleTool.
func NewProposalToggleTool(s *store.Store, rec *metrics.Recorder) *ProposalToggleTool {
	return &ProposalToggleTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalToggleTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Toggle a proposal between draft and a parked status: reject (won't do), "+
				"punt (later), completed (already done elsewhere). Applying the same "+
				"toggle again returns the proposal to draft.",
		),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("proposal_id", mcp.Required(), mcp.Description("Proposal ID")),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Which status to toggle"),
			mcp.Enum("reject", "punt", "completed"),
		),
	)
	return mcp.NewTool("proposal_toggle", opts...)
}

// Handle processes the proposal_toggle tool call.
func (t *ProposalToggleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proposalID := req.GetString("proposal_id", "")
	if proposalID == "" {
		return mcp.NewToolResultError("'proposal_id' is required"), nil
	}

	mgr, err := managerFor(t.store, req.GetString("scope", ""), req.GetString("owner_id", ""))
	if err != nil {
		return toolErrOrFail(err)
	}

	action := req.GetString("action", "")
	var toggled any
	switch action {
	case "reject":
		toggled, err = mgr.ToggleReject(ctx, proposalID)
	case "punt":
		toggled, err = mgr.TogglePunt(ctx, proposalID)
	case "completed":
		toggled, err = mgr.ToggleCompleted(ctx, proposalID)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be reject, punt or completed", action)), nil
	}
	if err != nil {
		return toolErrOrFail(err)
	}
	t.recorder.IncStoreMutation("proposal", "toggle")

	return jsonResult(toggled)
}

// ProposalResetTool returns a proposal to draft, clearing any
// cancellation stamp.
type ProposalResetTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProposalResetTool creates a ProposalResetTool.
func NewProposalResetTool(s *store.Store, rec *metrics.Recorder) *ProposalResetTool {
	return &ProposalResetTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalResetTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Reset a proposal to draft from any status, clearing its cancellation timestamp."),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("proposal_id", mcp.Required(), mcp.Description("Proposal ID")),
	)
	return mcp.NewTool("proposal_reset", opts...)
}

// Handle processes the proposal_reset tool call.
func (t *ProposalResetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proposalID := req.GetString("proposal_id", "")
	if proposalID == "" {
		return mcp.NewToolResultError("'proposal_id' is required"), nil
	}

	mgr, err := managerFor(t.store, req.GetString("scope", ""), req.GetString("owner_id", ""))
	if err != nil {
		return toolErrOrFail(err)
	}
	p, err := mgr.ResetToDraft(ctx, proposalID)
	if err != nil {
		return toolErrOrFail(err)
	}
	t.recorder.IncStoreMutation("proposal", "reset")

	return jsonResult(p)
}

// ProposalReorderTool resequences proposals to match the given order.
type ProposalReorderTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProposalReorderTool creates a ProposalReorderTool.
func NewProposalReorderTool(s *store.Store, rec *metrics.Recorder) *ProposalReorderTool {
	return &ProposalReorderTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalReorderTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Reorder proposals to match the given ID sequence. IDs in the list get "+
				"sort positions 0, 1, 2, ...; proposals missing from the list keep "+
				"their current sort_order.",
		),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("ordered_ids", mcp.Required(), mcp.Description("Comma-separated proposal IDs in the desired order")),
	)
	return mcp.NewTool("proposal_reorder", opts...)
}

// Handle processes the proposal_reorder tool call.
func (t *ProposalReorderTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orderedIDs := splitList(req.GetString("ordered_ids", ""))
	if len(orderedIDs) == 0 {
		return mcp.NewToolResultError("'ordered_ids' is required"), nil
	}

	mgr, err := managerFor(t.store, req.GetString("scope", ""), req.GetString("owner_id", ""))
	if err != nil {
		return toolErrOrFail(err)
	}
	if err := mgr.Reorder(ctx, orderedIDs); err != nil {
		return nil, fmt.Errorf("reordering proposals: %w", err)
	}
	t.recorder.IncStoreMutation("proposal", "reorder")

	return jsonResult(mgr.Items())
}

// ProposalCleanupTool cancels proposals whose generated journeys no
// longer exist.
type ProposalCleanupTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProposalCleanupTool creates a ProposalCleanupTool.
func NewProposalCleanupTool(s *store.Store, rec *metrics.Recorder) *ProposalCleanupTool {
	return &ProposalCleanupTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalCleanupTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Cancel proposals whose generated journey was deleted: status becomes "+
				"cancelled, the dangling journey reference is cleared and the "+
				"cancellation time recorded. Nothing is written when no proposal "+
				"is affected.",
		),
	}
	opts = append(opts, withScopeArgs()...)
	return mcp.NewTool("proposal_cleanup", opts...)
}

// Handle processes the proposal_cleanup tool call.
func (t *ProposalCleanupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mgr, err := managerFor(t.store, req.GetString("scope", ""), req.GetString("owner_id", ""))
	if err != nil {
		return toolErrOrFail(err)
	}

	liveIDs, err := t.store.LiveJourneyIDs()
	if err != nil {
		return nil, fmt.Errorf("loading journey ids: %w", err)
	}

	count, err := mgr.CleanupOrphanedReferences(ctx, liveIDs)
	if err != nil {
		return nil, fmt.Errorf("cleaning up proposals: %w", err)
	}
	if count > 0 {
		t.recorder.IncStoreMutation("proposal", "cleanup")
	}

	return mcp.NewToolResultText(fmt.Sprintf("%d proposal(s) cancelled due to missing journeys.", count)), nil
}
