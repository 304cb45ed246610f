// Package journey models the unit of tracked work: a journey belongs to a
// project and moves through an ordered, type-specific pipeline of stages.
//
// The stage flow for a journey is fixed by its type at creation time —
// a bug walks a different pipeline than a planning activity. Status is
// never stored independently; it is derived from the position of the
// current stage within the flow (see status.go).
//
// This package follows the same design principles as the rest of devorch:
// - SRP: types, flows, status derivation, and grouping in separate files
// - OCP: new journey types can be added without modifying existing flows
package journey

import "fmt"

// --- Journey type enum ---

// Type categorizes what kind of work a journey represents.
type Type string

const (
	TypeFeaturePlanning Type = "feature_planning"
	TypeFeature         Type = "feature"
	TypeBug             Type = "bug"
	TypeInvestigation   Type = "investigation"
)

// validTypes is the set of allowed journey types.
var validTypes = map[Type]bool{
	TypeFeaturePlanning: true,
	TypeFeature:         true,
	TypeBug:             true,
	TypeInvestigation:   true,
}

// ValidateType returns an error if the type is not recognized.
func ValidateType(t Type) error {
	if !validTypes[t] {
		return fmt.Errorf("invalid journey type %q: must be one of: feature_planning, feature, bug, investigation", t)
	}
	return nil
}

// --- Stage enum ---

// Stage represents a discrete phase in a journey's pipeline.
// Which stages apply — and in what order — depends on the journey type.
type Stage string

const (
	// feature_planning flow
	StageIntake     Stage = "intake"
	StageSpeccing   Stage = "speccing"
	StageUIPlanning Stage = "ui_planning"
	StagePlanning   Stage = "planning"
	StageReview     Stage = "review"
	StageApproved   Stage = "approved"

	// feature flow
	StageReviewAndEditPlan Stage = "review_and_edit_plan"
	StageImplementing      Stage = "implementing"
	StageTesting           Stage = "testing"
	StagePreProdReview     Stage = "pre_prod_review"
	StageMergeApproved     Stage = "merge_approved"
	StageStagingQA         Stage = "staging_qa"
	StageDeployed          Stage = "deployed"

	// investigation flow
	StageInProgress Stage = "in_progress"
	StageComplete   Stage = "complete"

	// bug flow
	StageReported      Stage = "reported"
	StageInvestigating Stage = "investigating"
	StageFixing        Stage = "fixing"
)

// --- Core data structures ---

// Journey is a unit of tracked work within a project.
// BranchName and WorktreePath stay empty until the journey is started.
type Journey struct {
	ID              string      `json:"id"`
	ProjectID       string      `json:"project_id"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	Type            Type        `json:"type"`
	Stage           Stage       `json:"stage"`
	Status          BoardStatus `json:"status"`
	BranchName      string      `json:"branch_name,omitempty"`
	WorktreePath    string      `json:"worktree_path,omitempty"`
	ParentJourneyID string      `json:"parent_journey_id,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	SourceURL       string      `json:"source_url,omitempty"`
	SortOrder       int         `json:"sort_order"`
	CreatedAt       string      `json:"created_at"`
	UpdatedAt       string      `json:"updated_at"`
}

// Project is a tracked codebase that owns journeys and a list of
// proposed journeys embedded on the record itself.
type Project struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	RootPath         string `json:"root_path"`
	FrontendPath     string `json:"frontend_path,omitempty"`
	BackendPath      string `json:"backend_path,omitempty"`
	FrontendStartCmd string `json:"frontend_start_cmd,omitempty"`
	BackendStartCmd  string `json:"backend_start_cmd,omitempty"`
	RawIntake        string `json:"raw_intake,omitempty"`
	RefinedIntake    string `json:"refined_intake,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}
