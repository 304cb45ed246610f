package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/ai"
	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/store"
	"github.com/devorch/devorch/internal/templates"
)

// IntakeRefineTool rewrites a raw intake into a structured brief using
// the AI model and stores the result.
type IntakeRefineTool struct {
	store    *store.Store
	gateway  ai.Gateway
	renderer *templates.Renderer
	recorder *metrics.Recorder
}

// NewIntakeRefineTool creates an IntakeRefineTool.
func NewIntakeRefineTool(s *store.Store, g ai.Gateway, r *templates.Renderer, rec *metrics.Recorder) *IntakeRefineTool {
	return &IntakeRefineTool{store: s, gateway: g, renderer: r, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *IntakeRefineTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Refine a raw intake into a structured brief with the AI model and "+
				"store it: on a project the refined_intake field is updated, on a "+
				"journey a new intake version is appended.",
		),
	}
	opts = append(opts, withScopeArgs()...)
	opts = append(opts,
		mcp.WithString("raw", mcp.Description("Override raw text; defaults to the owner's stored raw intake")),
	)
	return mcp.NewTool("intake_refine", opts...)
}

// Handle processes the intake_refine tool call.
func (t *IntakeRefineTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := req.GetString("scope", "")
	ownerID := req.GetString("owner_id", "")
	raw := strings.TrimSpace(req.GetString("raw", ""))

	switch scope {
	case scopeProject:
		p, err := t.store.GetProject(ownerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("project %q not found", ownerID)), nil
			}
			return nil, fmt.Errorf("fetching project: %w", err)
		}
		if raw == "" {
			raw = p.RawIntake
		}
	case scopeJourney:
		j, err := t.store.GetJourney(ownerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("journey %q not found", ownerID)), nil
			}
			return nil, fmt.Errorf("fetching journey: %w", err)
		}
		if raw == "" {
			if latest, ierr := t.store.LatestIntake(ownerID); ierr == nil {
				raw = latest.Raw
			} else if !errors.Is(ierr, store.ErrNotFound) {
				return nil, fmt.Errorf("fetching intake: %w", ierr)
			} else {
				raw = j.Description
			}
		}
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown scope %q: must be %q or %q", scope, scopeProject, scopeJourney)), nil
	}

	if raw == "" {
		return mcp.NewToolResultError("no raw intake to refine; supply 'raw' or record one first"), nil
	}

	prompt, err := t.renderer.IntakeRefine(templates.IntakeRefineData{Raw: raw})
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}
	refined, err := t.gateway.Query(ctx, prompt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("intake refinement failed: %v", err)), nil
	}
	refined = strings.TrimSpace(refined)

	switch scope {
	case scopeProject:
		if _, err := t.store.UpdateProject(ownerID, store.UpdateProjectParams{RefinedIntake: &refined}); err != nil {
			return nil, fmt.Errorf("saving refined intake: %w", err)
		}
	case scopeJourney:
		if _, err := t.store.AddIntake(ownerID, raw, refined); err != nil {
			return nil, fmt.Errorf("saving refined intake: %w", err)
		}
	}
	t.recorder.IncStoreMutation("intake", "refine")

	return mcp.NewToolResultText(refined), nil
}
