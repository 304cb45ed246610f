package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/journey"
	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/proposal"
	"github.com/devorch/devorch/internal/store"
)

// ProposalPromoteTool turns a draft proposal into a real journey and
// marks the proposal as generated, recording the new journey's ID so
// later cleanup can detect deletion.
type ProposalPromoteTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProposalPromoteTool creates a ProposalPromoteTool.
func NewProposalPromoteTool(s *store.Store, rec *metrics.Recorder) *ProposalPromoteTool {
	return &ProposalPromoteTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalPromoteTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Promote a proposal into a journey. The journey takes the proposal's "+
				"name, description and, as its first plan version, the early plan. "+
				"The proposal becomes 'generated' and keeps a reference to the journey.",
		),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("proposal_id", mcp.Required(), mcp.Description("Proposal ID")),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project the new journey belongs to")),
		mcp.WithString("type",
			mcp.Description("Journey type for the new journey, default feature_planning"),
			mcp.Enum("feature_planning", "feature", "bug", "investigation"),
		),
	)
	return mcp.NewTool("proposal_promote", opts...)
}

// Handle processes the proposal_promote tool call.
func (t *ProposalPromoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proposalID := req.GetString("proposal_id", "")
	projectID := req.GetString("project_id", "")
	if proposalID == "" || projectID == "" {
		return mcp.NewToolResultError("'proposal_id' and 'project_id' are required"), nil
	}

	scope := req.GetString("scope", "")
	ownerID := req.GetString("owner_id", "")
	mgr, err := managerFor(t.store, scope, ownerID)
	if err != nil {
		return toolErrOrFail(err)
	}

	var target *proposal.Proposal
	for _, p := range mgr.Items() {
		if p.ID == proposalID {
			copied := p
			target = &copied
			break
		}
	}
	if target == nil {
		return mcp.NewToolResultError(fmt.Sprintf("proposal %q not found", proposalID)), nil
	}
	if target.Status == proposal.StatusGenerated {
		return mcp.NewToolResultError(fmt.Sprintf(
			"proposal %q was already promoted to journey %s", target.Name, target.GeneratedJourneyID)), nil
	}

	jType := journey.Type(req.GetString("type", string(journey.TypeFeaturePlanning)))
	if err := journey.ValidateType(jType); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := store.CreateJourneyParams{
		ProjectID:   projectID,
		Name:        target.Name,
		Description: target.Description,
		Type:        jType,
	}
	if scope == scopeJourney {
		params.ParentJourneyID = ownerID
	}

	j, err := t.store.CreateJourney(params)
	if err != nil {
		return nil, fmt.Errorf("creating journey from proposal: %w", err)
	}
	if target.EarlyPlan != "" {
		if _, err := t.store.AddPlan(j.ID, target.EarlyPlan); err != nil {
			return nil, fmt.Errorf("seeding journey plan: %w", err)
		}
	}

	status := proposal.StatusGenerated
	if _, err := mgr.UpdateProposal(ctx, proposalID, proposal.Update{
		Status:             &status,
		GeneratedJourneyID: &j.ID,
	}); err != nil {
		return nil, fmt.Errorf("marking proposal generated: %w", err)
	}
	t.recorder.IncStoreMutation("proposal", "promote")

	return jsonResult(j)
}
