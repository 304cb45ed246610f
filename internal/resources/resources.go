// Package resources implements the MCP resource handlers.
//
// Resources provide read-only data the host can pull in for context,
// addressed by devorch:// URIs.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devorch/devorch/internal/journey"
	"github.com/devorch/devorch/internal/store"
)

// Handler manages devorch resource endpoints.
type Handler struct {
	store *store.Store
}

// NewHandler creates a resource Handler.
func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// ProjectsResource returns the MCP resource definition for the project
// overview.
func (h *Handler) ProjectsResource() mcp.Resource {
	return mcp.NewResource(
		"devorch://projects",
		"Projects",
		mcp.WithResourceDescription("All registered projects with their intake state"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProjects returns all projects as JSON.
func (h *Handler) HandleProjects(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := h.store.ListProjects()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, projects)
}

// BoardResource returns the MCP resource definition for the cross-
// project board.
func (h *Handler) BoardResource() mcp.Resource {
	return mcp.NewResource(
		"devorch://board",
		"Journey Board",
		mcp.WithResourceDescription("All journeys grouped by parent with derived status and progress"),
		mcp.WithMIMEType("application/json"),
	)
}

// boardJourney is a journey annotated with derived display fields.
type boardJourney struct {
	journey.Journey
	Category journey.Category `json:"category"`
	Progress float64          `json:"progress"`
}

type boardGroup struct {
	Parent   boardJourney   `json:"parent"`
	Children []boardJourney `json:"children"`
}

type boardDoc struct {
	Groups     []boardGroup   `json:"groups"`
	Standalone []boardJourney `json:"standalone"`
}

// HandleBoard returns the grouped board across all projects as JSON.
func (h *Handler) HandleBoard(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	all, err := h.store.ListJourneys("")
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	board := journey.GroupByParent(all, all)
	doc := boardDoc{
		Groups:     make([]boardGroup, 0, len(board.Groups)),
		Standalone: make([]boardJourney, 0, len(board.Standalone)),
	}
	for _, g := range board.Groups {
		group := boardGroup{Parent: annotate(g.Parent), Children: make([]boardJourney, 0, len(g.Children))}
		for _, c := range g.Children {
			group.Children = append(group.Children, annotate(c))
		}
		doc.Groups = append(doc.Groups, group)
	}
	for _, j := range board.Standalone {
		doc.Standalone = append(doc.Standalone, annotate(j))
	}

	return jsonResource(req.Params.URI, doc)
}

func annotate(j journey.Journey) boardJourney {
	return boardJourney{
		Journey:  j,
		Category: journey.CategoryFor(j.Type, j.Stage),
		Progress: journey.Progress(j.Type, j.Stage),
	}
}

// jsonResource marshals v as a single JSON resource content.
func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
