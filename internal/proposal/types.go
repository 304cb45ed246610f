// Package proposal manages the lifecycle of proposed journeys: drafts
// that have not yet been materialized as real journeys.
//
// Proposals do not get their own table. The entire ordered list lives as
// a JSON array embedded on the parent record (a project or a journey),
// and every mutation rewrites the whole array back through a single save
// call. Concurrent writers of the same parent record race last-write-wins;
// the manager never mutates its in-memory snapshot until the save succeeds.
package proposal

import "fmt"

// Status tracks where a proposal sits in its lifecycle. Most transitions
// are reversible toggles rather than one-way moves.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusGenerated        Status = "generated"
	StatusAlreadyCompleted Status = "already_completed"
	StatusPunted           Status = "punted"
	StatusRejected         Status = "rejected"
	StatusCancelled        Status = "cancelled"
)

// validStatuses is the set of allowed proposal statuses.
var validStatuses = map[Status]bool{
	StatusDraft:            true,
	StatusGenerated:        true,
	StatusAlreadyCompleted: true,
	StatusPunted:           true,
	StatusRejected:         true,
	StatusCancelled:        true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(s Status) error {
	if !validStatuses[s] {
		return fmt.Errorf("invalid proposal status %q: must be one of: draft, generated, already_completed, punted, rejected, cancelled", s)
	}
	return nil
}

// Proposal is a draft journey embedded in its parent's proposal list.
//
// GeneratedJourneyID is set when the proposal is promoted to a real
// journey. ProposedParentID and IsGroup only apply to the child-journey
// variant, where proposals can be grouped under one another.
type Proposal struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	EarlyPlan          string `json:"early_plan,omitempty"`
	Status             Status `json:"status"`
	GeneratedJourneyID string `json:"generated_journey_id,omitempty"`
	ProposedParentID   string `json:"proposed_parent_id,omitempty"`
	IsGroup            bool   `json:"is_group,omitempty"`
	SortOrder          int    `json:"sort_order"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
	CancelledAt        string `json:"cancelled_at,omitempty"`
}

// Fields holds caller-supplied values for a new proposal.
// Status defaults to draft when empty.
type Fields struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	EarlyPlan   string `json:"early_plan,omitempty"`
	Status      Status `json:"status,omitempty"`
}

// Update holds partial update fields for a proposal. Nil pointers
// leave the corresponding field untouched.
type Update struct {
	Name               *string `json:"name,omitempty"`
	Description        *string `json:"description,omitempty"`
	EarlyPlan          *string `json:"early_plan,omitempty"`
	Status             *Status `json:"status,omitempty"`
	GeneratedJourneyID *string `json:"generated_journey_id,omitempty"`
}
