package proposal

import (
	"context"
	"fmt"
	"time"
)

// --- Child-journey grouping ---
//
// Child-variant proposals can be grouped under one another through
// ProposedParentID. A proposal marked is_group is eligible to act as a
// parent. The candidate-parent set for a proposal excludes itself and
// all of its transitive descendants, so parent assignment can never
// create a cycle.

// SetGroup toggles the is_group marker on a proposal.
func (m *Manager) SetGroup(ctx context.Context, id string, isGroup bool) (*Proposal, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("proposal %q not found", id)
	}

	next := m.snapshot()
	next[idx].IsGroup = isGroup
	next[idx].UpdatedAt = timeNow().UTC().Format(time.RFC3339)

	if err := m.commit(ctx, next); err != nil {
		return nil, err
	}
	result := next[idx]
	return &result, nil
}

// SetParent assigns (or clears, with an empty parentID) the proposed
// parent of a proposal. The assignment is rejected when it would create
// a cycle: the parent must be in the candidate set for the child.
func (m *Manager) SetParent(ctx context.Context, id, parentID string) (*Proposal, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("proposal %q not found", id)
	}

	if parentID != "" {
		if m.indexOf(parentID) < 0 {
			return nil, fmt.Errorf("parent proposal %q not found", parentID)
		}
		allowed := false
		for _, candidate := range m.AvailableParents(id) {
			if candidate.ID == parentID {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("proposal %q cannot be the parent of %q: would create a cycle", parentID, id)
		}
	}

	next := m.snapshot()
	next[idx].ProposedParentID = parentID
	next[idx].UpdatedAt = timeNow().UTC().Format(time.RFC3339)

	if err := m.commit(ctx, next); err != nil {
		return nil, err
	}
	result := next[idx]
	return &result, nil
}

// AvailableParents lists the proposals that may become the parent of
// excludeID: every proposal except excludeID itself and its transitive
// descendants (walked along proposed_parent_id edges).
func (m *Manager) AvailableParents(excludeID string) []Proposal {
	excluded := map[string]bool{excludeID: true}

	// Walk descendants breadth-first until the frontier is empty.
	frontier := []string{excludeID}
	for len(frontier) > 0 {
		var nextFrontier []string
		for _, p := range m.items {
			if p.ProposedParentID != "" && !excluded[p.ID] {
				for _, parent := range frontier {
					if p.ProposedParentID == parent {
						excluded[p.ID] = true
						nextFrontier = append(nextFrontier, p.ID)
						break
					}
				}
			}
		}
		frontier = nextFrontier
	}

	var out []Proposal
	for _, p := range m.items {
		if !excluded[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// UngroupChildren clears proposed_parent_id on every direct child of
// the given parent. Returns the number of children detached.
func (m *Manager) UngroupChildren(ctx context.Context, parentID string) (int, error) {
	next := m.snapshot()
	now := timeNow().UTC().Format(time.RFC3339)

	detached := 0
	for i := range next {
		if next[i].ProposedParentID == parentID {
			next[i].ProposedParentID = ""
			next[i].UpdatedAt = now
			detached++
		}
	}

	if detached == 0 {
		return 0, nil
	}
	if err := m.commit(ctx, next); err != nil {
		return 0, err
	}
	return detached, nil
}
