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

// ProjectCreateTool registers a new project.
type ProjectCreateTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProjectCreateTool creates a ProjectCreateTool.
func NewProjectCreateTool(s *store.Store, rec *metrics.Recorder) *ProjectCreateTool {
	return &ProjectCreateTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("project_create",
		mcp.WithDescription(
			"Register a project with devorch. The root path should point at the "+
				"project's git repository; frontend/backend paths and start commands "+
				"are optional and used when launching dev servers.",
		),
		mcp.WithString("name", mcp.Required(), mcp.Description("Human-readable project name")),
		mcp.WithString("root_path", mcp.Description("Absolute path to the project's git repository")),
		mcp.WithString("frontend_path", mcp.Description("Path to the frontend, relative to root")),
		mcp.WithString("backend_path", mcp.Description("Path to the backend, relative to root")),
		mcp.WithString("frontend_start_cmd", mcp.Description("Command that starts the frontend dev server")),
		mcp.WithString("backend_start_cmd", mcp.Description("Command that starts the backend dev server")),
		mcp.WithString("raw_intake", mcp.Description("Initial free-form description of what the project needs")),
	)
}

// Handle processes the project_create tool call.
func (t *ProjectCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	p, err := t.store.CreateProject(store.CreateProjectParams{
		Name:             name,
		RootPath:         req.GetString("root_path", ""),
		FrontendPath:     req.GetString("frontend_path", ""),
		BackendPath:      req.GetString("backend_path", ""),
		FrontendStartCmd: req.GetString("frontend_start_cmd", ""),
		BackendStartCmd:  req.GetString("backend_start_cmd", ""),
		RawIntake:        req.GetString("raw_intake", ""),
	})
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	t.recorder.IncStoreMutation("project", "create")

	return jsonResult(p)
}

// ProjectListTool lists all registered projects.
type ProjectListTool struct {
	store *store.Store
}

// NewProjectListTool creates a ProjectListTool.
func NewProjectListTool(s *store.Store) *ProjectListTool {
	return &ProjectListTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectListTool) Definition() mcp.Tool {
	return mcp.NewTool("project_list",
		mcp.WithDescription("List all registered projects."),
	)
}

// Handle processes the project_list tool call.
func (t *ProjectListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.store.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return jsonResult(projects)
}

// ProjectGetTool fetches a single project.
type ProjectGetTool struct {
	store *store.Store
}

// NewProjectGetTool creates a ProjectGetTool.
func NewProjectGetTool(s *store.Store) *ProjectGetTool {
	return &ProjectGetTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectGetTool) Definition() mcp.Tool {
	return mcp.NewTool("project_get",
		mcp.WithDescription("Fetch a project by ID, including its raw and refined intake."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
	)
}

// Handle processes the project_get tool call.
func (t *ProjectGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("project_id", "")
	if id == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	p, err := t.store.GetProject(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("project %q not found", id)), nil
		}
		return nil, fmt.Errorf("fetching project: %w", err)
	}
	return jsonResult(p)
}

// ProjectUpdateTool applies a partial update to a project.
type ProjectUpdateTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProjectUpdateTool creates a ProjectUpdateTool.
func NewProjectUpdateTool(s *store.Store, rec *metrics.Recorder) *ProjectUpdateTool {
	return &ProjectUpdateTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("project_update",
		mcp.WithDescription("Update project fields. Only supplied fields change."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("name", mcp.Description("New project name")),
		mcp.WithString("root_path", mcp.Description("New repository root path")),
		mcp.WithString("frontend_path", mcp.Description("New frontend path")),
		mcp.WithString("backend_path", mcp.Description("New backend path")),
		mcp.WithString("frontend_start_cmd", mcp.Description("New frontend start command")),
		mcp.WithString("backend_start_cmd", mcp.Description("New backend start command")),
		mcp.WithString("raw_intake", mcp.Description("Replacement raw intake text")),
		mcp.WithString("refined_intake", mcp.Description("Replacement refined intake text")),
	)
}

// Handle processes the project_update tool call.
func (t *ProjectUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("project_id", "")
	if id == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	p, err := t.store.UpdateProject(id, store.UpdateProjectParams{
		Name:             optString(req, "name"),
		RootPath:         optString(req, "root_path"),
		FrontendPath:     optString(req, "frontend_path"),
		BackendPath:      optString(req, "backend_path"),
		FrontendStartCmd: optString(req, "frontend_start_cmd"),
		BackendStartCmd:  optString(req, "backend_start_cmd"),
		RawIntake:        optString(req, "raw_intake"),
		RefinedIntake:    optString(req, "refined_intake"),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("project %q not found", id)), nil
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}
	t.recorder.IncStoreMutation("project", "update")

	return jsonResult(p)
}

// ProjectDeleteTool removes a project and its journeys.
type ProjectDeleteTool struct {
	store    *store.Store
	recorder *metrics.Recorder
}

// NewProjectDeleteTool creates a ProjectDeleteTool.
func NewProjectDeleteTool(s *store.Store, rec *metrics.Recorder) *ProjectDeleteTool {
	return &ProjectDeleteTool{store: s, recorder: rec}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("project_delete",
		mcp.WithDescription("Delete a project and all of its journeys. This cannot be undone."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
	)
}

// Handle processes the project_delete tool call.
func (t *ProjectDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("project_id", "")
	if id == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	if err := t.store.DeleteProject(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("project %q not found", id)), nil
		}
		return nil, fmt.Errorf("deleting project: %w", err)
	}
	t.recorder.IncStoreMutation("project", "delete")

	return mcp.NewToolResultText(fmt.Sprintf("Project %s deleted.", id)), nil
}
