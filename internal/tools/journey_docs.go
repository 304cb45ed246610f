package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/store"
)

// Document kinds stored per journey. Each kind is append-only and
// versioned; reads return the latest version.
const (
	docIntake = "intake"
	docSpec   = "spec"
	docPlan   = "plan"
)

// JourneyDocAddTool appends a new version of a journey document.
type JourneyDocAddTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewJourneyDocAddTool creates a JourneyDocAddTool.
func NewJourneyDocAddTool(s *store.Store, rec *metrics.Recorder) *JourneyDocAddTool {
	return &JourneyDocAddTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyDocAddTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_doc_add",
		mcp.WithDescription(
			"Append a new version of a journey document. Kinds: intake (raw user "+
				"input, optionally with a refined rewrite), spec (markdown "+
				"specification), plan (structured implementation plan). "+
				"Previous versions are kept.",
		),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Document kind"),
			mcp.Enum(docIntake, docSpec, docPlan),
		),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document body (raw text for intake)")),
		mcp.WithString("refined", mcp.Description("Refined intake text; intake kind only")),
	)
}

// Handle processes the journey_doc_add tool call.
func (t *JourneyDocAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	journeyID := req.GetString("journey_id", "")
	kind := req.GetString("kind", "")
	content := req.GetString("content", "")
	if journeyID == "" {
		return mcp.NewToolResultError("'journey_id' is required"), nil
	}
	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	var payload any
	var err error
	switch kind {
	case docIntake:
		payload, err = t.store.AddIntake(journeyID, content, req.GetString("refined", ""))
	case docSpec:
		payload, err = t.store.AddSpec(journeyID, content)
	case docPlan:
		payload, err = t.store.AddPlan(journeyID, content)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid kind %q: must be intake, spec or plan", kind)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("adding %s: %w", kind, err)
	}
	t.recorder.IncStoreMutation(kind, "add")

	return jsonResult(payload)
}

// JourneyDocGetTool fetches the latest version of a journey document.
type JourneyDocGetTool struct {
	store *store.Store
}

// NewJourneyDocGetTool creates a JourneyDocGetTool.
func NewJourneyDocGetTool(s *store.Store) *JourneyDocGetTool {
	return &JourneyDocGetTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyDocGetTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_doc_get",
		mcp.WithDescription("Fetch the latest version of a journey's intake, spec or plan."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Document kind"),
			mcp.Enum(docIntake, docSpec, docPlan),
		),
	)
}

// Handle processes the journey_doc_get tool call.
func (t *JourneyDocGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	journeyID := req.GetString("journey_id", "")
	kind := req.GetString("kind", "")
	if journeyID == "" {
		return mcp.NewToolResultError("'journey_id' is required"), nil
	}

	var payload any
	var err error
	switch kind {
	case docIntake:
		payload, err = t.store.LatestIntake(journeyID)
	case docSpec:
		payload, err = t.store.LatestSpec(journeyID)
	case docPlan:
		payload, err = t.store.LatestPlan(journeyID)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid kind %q: must be intake, spec or plan", kind)), nil
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("journey %q has no %s yet", journeyID, kind)), nil
		}
		return nil, fmt.Errorf("fetching %s: %w", kind, err)
	}

	return jsonResult(payload)
}

// JourneyChecklistTool manages checklists attached to a journey.
type JourneyChecklistTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewJourneyChecklistTool creates a JourneyChecklistTool.
func NewJourneyChecklistTool(s *store.Store, rec *metrics.Recorder) *JourneyChecklistTool {
	return &JourneyChecklistTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *JourneyChecklistTool) Definition() mcp.Tool {
	return mcp.NewTool("journey_checklist",
		mcp.WithDescription(
			"Manage a journey's checklists. Actions: create (new named checklist), "+
				"add_item (append an item to a checklist), set_done (mark an item done "+
				"or not done), list (all checklists with items).",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Checklist operation"),
			mcp.Enum("create", "add_item", "set_done", "list"),
		),
		mcp.WithString("journey_id", mcp.Description("Journey ID; required for create and list")),
		mcp.WithString("name", mcp.Description("Checklist name; required for create")),
		mcp.WithNumber("checklist_id", mcp.Description("Checklist ID; required for add_item")),
		mcp.WithString("kind", mcp.Description("Item kind, e.g. task, verification; add_item only")),
		mcp.WithString("text", mcp.Description("Item text; required for add_item")),
		mcp.WithNumber("item_id", mcp.Description("Item ID; required for set_done")),
		mcp.WithBoolean("done", mcp.Description("Done flag for set_done, default true")),
	)
}

// Handle processes the journey_checklist tool call.
func (t *JourneyChecklistTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch action := req.GetString("action", ""); action {
	case "create":
		journeyID := req.GetString("journey_id", "")
		name := strings.TrimSpace(req.GetString("name", ""))
		if journeyID == "" || name == "" {
			return mcp.NewToolResultError("'journey_id' and 'name' are required for create"), nil
		}
		cl, err := t.store.CreateChecklist(journeyID, name)
		if err != nil {
			return nil, fmt.Errorf("creating checklist: %w", err)
		}
		t.recorder.IncStoreMutation("checklist", "create")
		return jsonResult(cl)

	case "add_item":
		checklistID := intArg(req, "checklist_id", 0)
		text := strings.TrimSpace(req.GetString("text", ""))
		if checklistID == 0 || text == "" {
			return mcp.NewToolResultError("'checklist_id' and 'text' are required for add_item"), nil
		}
		item, err := t.store.AddChecklistItem(int64(checklistID), req.GetString("kind", "task"), text)
		if err != nil {
			return nil, fmt.Errorf("adding checklist item: %w", err)
		}
		t.recorder.IncStoreMutation("checklist", "add_item")
		return jsonResult(item)

	case "set_done":
		itemID := intArg(req, "item_id", 0)
		if itemID == 0 {
			return mcp.NewToolResultError("'item_id' is required for set_done"), nil
		}
		if err := t.store.SetChecklistItemDone(int64(itemID), boolArg(req, "done", true)); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("checklist item %d not found", itemID)), nil
			}
			return nil, fmt.Errorf("updating checklist item: %w", err)
		}
		t.recorder.IncStoreMutation("checklist", "set_done")
		return mcp.NewToolResultText(fmt.Sprintf("Checklist item %d updated.", itemID)), nil

	case "list":
		journeyID := req.GetString("journey_id", "")
		if journeyID == "" {
			return mcp.NewToolResultError("'journey_id' is required for list"), nil
		}
		lists, err := t.store.Checklists(journeyID)
		if err != nil {
			return nil, fmt.Errorf("listing checklists: %w", err)
		}
		return jsonResult(lists)

	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q", action)), nil
	}
}
