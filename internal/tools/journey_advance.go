package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/journey"
	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/store"
)

// JourneyAdvanceTool moves a journey one stage forward or backward in
// its type's flow. There is no wrap-around: advancing past the final
// stage (or retreating before the first) is reported as a tool error.
type JourneyAdvanceTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewJourneyAdvanceTool creates a JourneyAdvanceTool.
func NewJourneyAdvanceTool(s *store.Store, rec *metrics.Recorder) *JourneyAdvanceTool {
	return &JourneyAdvanceTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyAdvanceTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_advance",
		mcp.WithDescription(
			"Move a journey to the next or previous stage of its flow. "+
				"The board status is rederived from the new stage. "+
				"Fails at the ends of the flow rather than wrapping around.",
		),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
		mcp.WithString("direction",
			mcp.Description("'next' (default) or 'prev'"),
			mcp.Enum("next", "prev"),
		),
	)
}

// Handle processes the journey_advance tool call.
func (t *JourneyAdvanceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("journey_id", "")
	if id == "" {
		return mcp.NewToolResultError("'journey_id' is required"), nil
	}
	direction := req.GetString("direction", "next")
	if direction != "next" && direction != "prev" {
		return mcp.NewToolResultError(fmt.Sprintf("invalid direction %q: must be 'next' or 'prev'", direction)), nil
	}

	j, err := t.store.GetJourney(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("journey %q not found", id)), nil
		}
		return nil, fmt.Errorf("fetching journey: %w", err)
	}

	var target journey.Stage
	var ok bool
	if direction == "next" {
		target, ok = journey.NextStage(j.Type, j.Stage)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf(
				"journey %q is already at the final stage %q of its %s flow", j.Name, j.Stage, j.Type)), nil
		}
	} else {
		target, ok = journey.PrevStage(j.Type, j.Stage)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf(
				"journey %q is already at the first stage %q of its %s flow", j.Name, j.Stage, j.Type)), nil
		}
	}

	updated, err := t.store.UpdateJourney(id, store.UpdateJourneyParams{Stage: &target})
	if err != nil {
		return nil, fmt.Errorf("advancing journey: %w", err)
	}
	t.recorder.IncStoreMutation("journey", "advance")

	return jsonResult(updated)
}
