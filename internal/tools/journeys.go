package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/journey"
	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/shell"
	"github.com/devorch/devorch/internal/store"
)

// JourneyCreateTool creates a new journey within a project.
type JourneyCreateTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewJourneyCreateTool creates a JourneyCreateTool.
func NewJourneyCreateTool(s *store.Store, rec *metrics.Recorder) *JourneyCreateTool {
	return &JourneyCreateTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_create",
		mcp.WithDescription(
			"Create a journey (a unit of work) in a project. The journey type "+
				"determines its stage flow: feature_planning moves from intake to an "+
				"approved plan; feature moves a planned change through implementation "+
				"to deployment; investigation and bug have short flows of their own. "+
				"The journey starts at the first stage of its flow unless 'stage' names "+
				"a later one.",
		),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Owning project ID")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Short journey title")),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Journey type"),
			mcp.Enum("feature_planning", "feature", "bug", "investigation"),
		),
		mcp.WithString("description", mcp.Description("What this journey covers")),
		mcp.WithString("stage", mcp.Description("Starting stage; must belong to the type's flow")),
		mcp.WithString("parent_journey_id", mcp.Description("Parent journey for grouped work")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("source_url", mcp.Description("Link to the originating issue or document")),
	)
}

// Handle processes the journey_create tool call.
func (t *JourneyCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	name := strings.TrimSpace(req.GetString("name", ""))
	jType := journey.Type(req.GetString("type", ""))

	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	if err := journey.ValidateType(jType); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := t.store.GetProject(projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("project %q not found", projectID)), nil
		}
		return nil, fmt.Errorf("checking project: %w", err)
	}
	if stageArg := req.GetString("stage", ""); stageArg != "" {
		if err := journey.ValidateStage(jType, journey.Stage(stageArg)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	j, err := t.store.CreateJourney(store.CreateJourneyParams{
		ProjectID:       projectID,
		Name:            name,
		Description:     req.GetString("description", ""),
		Type:            jType,
		Stage:           journey.Stage(req.GetString("stage", "")),
		ParentJourneyID: req.GetString("parent_journey_id", ""),
		Tags:            splitList(req.GetString("tags", "")),
		SourceURL:       req.GetString("source_url", ""),
	})
	if err != nil {
		return nil, fmt.Errorf("creating journey: %w", err)
	}
	t.recorder.IncStoreMutation("journey", "create")

	return jsonResult(j)
}

// JourneyListTool lists a project's journeys.
type JourneyListTool struct {
	store *store.Store
}

// NewJourneyListTool creates a JourneyListTool.
func NewJourneyListTool(s *store.Store) *JourneyListTool {
	return &JourneyListTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyListTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_list",
		mcp.WithDescription("List journeys ordered by sort order, newest first within ties. "+
			"Omit project_id to list across all projects."),
		mcp.WithString("project_id", mcp.Description("Restrict to one project")),
	)
}

// Handle processes the journey_list tool call.
func (t *JourneyListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	journeys, err := t.store.ListJourneys(req.GetString("project_id", ""))
	if err != nil {
		return nil, fmt.Errorf("listing journeys: %w", err)
	}
	return jsonResult(journeys)
}

// journeyDetail is the journey_get payload: the journey plus its
// position within its flow.
type journeyDetail struct {
	journey.Journey
	StageIndex int              `json:"stage_index"`
	StageCount int              `json:"stage_count"`
	Progress   float64          `json:"progress"`
	Category   journey.Category `json:"category"`
}

// JourneyGetTool fetches a journey with flow progress details.
type JourneyGetTool struct {
	store *store.Store
}

// NewJourneyGetTool creates a JourneyGetTool.
func NewJourneyGetTool(s *store.Store) *JourneyGetTool {
	return &JourneyGetTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyGetTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_get",
		mcp.WithDescription("Fetch a journey by ID with its flow position and progress."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
	)
}

// Handle processes the journey_get tool call.
func (t *JourneyGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("journey_id", "")
	if id == "" {
		return mcp.NewToolResultError("'journey_id' is required"), nil
	}
	j, err := t.store.GetJourney(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("journey %q not found", id)), nil
		}
		return nil, fmt.Errorf("fetching journey: %w", err)
	}

	flow, err := journey.StageFlow(j.Type)
	if err != nil {
		return nil, fmt.Errorf("resolving flow: %w", err)
	}
	return jsonResult(journeyDetail{
		Journey:    *j,
		StageIndex: journey.StageIndex(j.Type, j.Stage),
		StageCount: len(flow),
		Progress:   journey.Progress(j.Type, j.Stage),
		Category:   journey.CategoryFor(j.Type, j.Stage),
	})
}

// JourneyUpdateTool applies a partial update to a journey.
type JourneyUpdateTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewJourneyUpdateTool creates a JourneyUpdateTool.
func NewJourneyUpdateTool(s *store.Store, rec *metrics.Recorder) *JourneyUpdateTool {
	return &JourneyUpdateTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_update",
		mcp.WithDescription("Update journey fields. Only supplied fields change. "+
			"A stage change must name a stage in the journey type's flow; the board "+
			"status is rederived from it."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
		mcp.WithString("name", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("stage", mcp.Description("New stage within the type's flow")),
		mcp.WithString("branch_name", mcp.Description("Git branch for this journey")),
		mcp.WithString("worktree_path", mcp.Description("Git worktree path for this journey")),
		mcp.WithString("parent_journey_id", mcp.Description("New parent journey; empty string detaches")),
		mcp.WithString("tags", mcp.Description("Replacement comma-separated tags")),
		mcp.WithString("source_url", mcp.Description("New source link")),
		mcp.WithNumber("sort_order", mcp.Description("New board position")),
	)
}

// Handle processes the journey_update tool call.
func (t *JourneyUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("journey_id", "")
	if id == "" {
		return mcp.NewToolResultError("'journey_id' is required"), nil
	}

	params := store.UpdateJourneyParams{
		Name:            optString(req, "name"),
		Description:     optString(req, "description"),
		BranchName:      optString(req, "branch_name"),
		WorktreePath:    optString(req, "worktree_path"),
		ParentJourneyID: optString(req, "parent_journey_id"),
		SourceURL:       optString(req, "source_url"),
	}
	if raw := optString(req, "stage"); raw != nil {
		stage := journey.Stage(*raw)
		params.Stage = &stage
	}
	if raw := optString(req, "tags"); raw != nil {
		tags := splitList(*raw)
		params.Tags = &tags
	}
	if _, ok := req.GetArguments()["sort_order"]; ok {
		order := intArg(req, "sort_order", 0)
		params.SortOrder = &order
	}

	j, err := t.store.UpdateJourney(id, params)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("journey %q not found", id)), nil
		}
		if strings.Contains(err.Error(), "not valid for journey type") {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("updating journey: %w", err)
	}
	t.recorder.IncStoreMutation("journey", "update")

	return jsonResult(j)
}

// JourneyDeleteTool removes a journey. Its worktree, when present, is
// removed best-effort.
type JourneyDeleteTool struct {
	store     *store.Store
	worktrees *shell.WorktreeManager
	recorder  *metrics.Recorder
}

// NewJourneyDeleteTool creates a JourneyDeleteTool. worktrees may be
// nil when git integration is disabled.
func NewJourneyDeleteTool(s *store.Store, wm *shell.WorktreeManager, rec *metrics.Recorder) *JourneyDeleteTool {
	return &JourneyDeleteTool{store: s, worktrees: wm, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_delete",
		mcp.WithDescription("Delete a journey. Child journeys are detached, not deleted. "+
			"An associated git worktree is removed best-effort."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
	)
}

// Handle processes the journey_delete tool call.
func (t *JourneyDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("journey_id", "")
	if id == "" {
		return mcp.NewToolResultError("'journey_id' is required"), nil
	}

	j, err := t.store.GetJourney(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("journey %q not found", id)), nil
		}
		return nil, fmt.Errorf("fetching journey: %w", err)
	}

	var worktreeNote string
	if t.worktrees != nil && j.WorktreePath != "" {
		repoRoot := ""
		if p, perr := t.store.GetProject(j.ProjectID); perr == nil {
			repoRoot = p.RootPath
		}
		if res := t.worktrees.RemoveWorktree(ctx, repoRoot, j.WorktreePath); !res.Success {
			worktreeNote = fmt.Sprintf(" Worktree removal failed: %s", res.Error)
		}
	}

	if err := t.store.DeleteJourney(id); err != nil {
		return nil, fmt.Errorf("deleting journey: %w", err)
	}
	t.recorder.IncStoreMutation("journey", "delete")

	return mcp.NewToolResultText(fmt.Sprintf("Journey %q deleted.%s", j.Name, worktreeNote)), nil
}
