package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/ai"
	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/proposal"
	"github.com/devorch/devorch/internal/store"
	"github.com/devorch/devorch/internal/templates"
)

// ProposalGenerateTool asks the AI gateway to break an intake into
// proposals and merges the batch into the owner's list.
type ProposalGenerateTool struct {
	store    *store.Store
	gateway  ai.Gateway
	renderer *templates.Renderer
	recorder *metrics.Recorder
}

// NewProposalGenerateTool creates a ProposalGenerateTool.
func NewProposalGenerateTool(s *store.Store, g ai.Gateway, r *templates.Renderer, rec *metrics.Recorder) *ProposalGenerateTool {
	return &ProposalGenerateTool{store: s, gateway: g, renderer: r, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalGenerateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Generate proposals from the owner's intake using the AI model. "+
				"When the owner already has proposals the generated batch is appended "+
				"after them; an empty list is replaced outright. Existing proposal "+
				"names are passed to the model to avoid duplicates. No retry on model "+
				"failure: call again to regenerate.",
		),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("intake", mcp.Description("Override intake text; defaults to the owner's stored intake")),
	)
	return mcp.NewTool("proposal_generate", opts...)
}

// Handle processes the proposal_generate tool call.
func (t *ProposalGenerateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := req.GetString("scope", "")
	ownerID := req.GetString("owner_id", "")

	ownerName, intake, err := t.ownerContext(scope, ownerID)
	if err != nil {
		return toolErrOrFail(err)
	}
	if override := req.GetString("intake", ""); override != "" {
		intake = override
	}
	if intake == "" {
		return mcp.NewToolResultError(
			"the owner has no intake text to generate from; supply 'intake' or record one first"), nil
	}

	mgr, err := managerFor(t.store, scope, ownerID)
	if err != nil {
		return toolErrOrFail(err)
	}

	existing := mgr.Items()
	names := make([]string, 0, len(existing))
	for _, p := range existing {
		names = append(names, p.Name)
	}

	prompt, err := t.renderer.ProposalsGenerate(templates.ProposalsGenerateData{
		ProjectName: ownerName,
		Intake:      intake,
		Existing:    names,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	var fields []proposal.Fields
	if err := ai.QueryJSON(ctx, t.gateway, prompt, &fields); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("proposal generation failed: %v", err)), nil
	}
	if len(fields) == 0 {
		return mcp.NewToolResultError("the model returned no proposals; try refining the intake"), nil
	}

	var generated []proposal.Proposal
	if len(existing) == 0 {
		generated, err = mgr.ReplaceAll(ctx, fields)
	} else {
		generated, err = mgr.AddBatch(ctx, fields)
	}
	if err != nil {
		return nil, fmt.Errorf("saving generated proposals: %w", err)
	}
	t.recorder.IncStoreMutation("proposal", "generate")

	return jsonResult(generated)
}

// ownerContext resolves the owner's display name and intake text.
func (t *ProposalGenerateTool) ownerContext(scope, ownerID string) (name, intake string, err error) {
	switch scope {
	case scopeProject:
		p, err := t.store.GetProject(ownerID)
		if err != nil {
			return "", "", err
		}
		intake := p.RefinedIntake
		if intake == "" {
			intake = p.RawIntake
		}
		return p.Name, intake, nil
	case scopeJourney:
		j, err := t.store.GetJourney(ownerID)
		if err != nil {
			return "", "", err
		}
		intake := j.Description
		if latest, ierr := t.store.LatestIntake(ownerID); ierr == nil {
			if latest.Refined != "" {
				intake = latest.Refined
			} else if latest.Raw != "" {
				intake = latest.Raw
			}
		} else if !errors.Is(ierr, store.ErrNotFound) {
			return "", "", ierr
		}
		return j.Name, intake, nil
	default:
		return "", "", fmt.Errorf("unknown scope %q: must be %q or %q", scope, scopeProject, scopeJourney)
	}
}
