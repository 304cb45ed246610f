package journey

// --- Derived status ---
//
// A journey's status is a projection of its stage position, not an
// independently stored field. Two derivations exist: a coarse
// pending/active/done category used for filtering, and a four-column
// board status used for kanban-style display. Both read from the same
// stage index so they can never disagree.

// Category classifies a journey by stage position.
type Category string

const (
	CategoryPending Category = "pending"
	CategoryActive  Category = "active"
	CategoryDone    Category = "done"
)

// BoardStatus is the kanban column derived from stage position.
type BoardStatus string

const (
	StatusPlanning   BoardStatus = "planning"
	StatusInProgress BoardStatus = "in_progress"
	StatusReady      BoardStatus = "ready"
	StatusDeployed   BoardStatus = "deployed"
)

// CategoryFor derives the pending/active/done category:
// initial stage means pending, final stage means done, anything
// in between means active. Unknown stages classify as pending.
func CategoryFor(t Type, s Stage) Category {
	flow, err := StageFlow(t)
	if err != nil {
		return CategoryPending
	}
	idx := StageIndex(t, s)
	switch {
	case idx <= 0:
		return CategoryPending
	case idx == len(flow)-1:
		return CategoryDone
	default:
		return CategoryActive
	}
}

// StatusFor derives the board column from the stage index: the initial
// stage maps to planning, the final stage to deployed, the stage just
// before final to ready (for flows long enough to have a review tail),
// and everything else to in_progress.
func StatusFor(t Type, s Stage) BoardStatus {
	flow, err := StageFlow(t)
	if err != nil {
		return StatusPlanning
	}
	idx := StageIndex(t, s)
	last := len(flow) - 1
	switch {
	case idx <= 0:
		return StatusPlanning
	case idx == last:
		return StatusDeployed
	case idx == last-1 && len(flow) >= 4:
		return StatusReady
	default:
		return StatusInProgress
	}
}
