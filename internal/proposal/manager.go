package proposal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveFunc persists the complete proposal list back to the parent record.
// There is no per-proposal persistence: the array is always written whole.
type SaveFunc func(ctx context.Context, items []Proposal) error

// Manager operates on the ordered proposal list of one parent record.
//
// Every mutation builds a new slice, pushes it through save, and only
// adopts it as the current snapshot when the save succeeds. On save
// failure the in-memory state is unchanged and the error propagates to
// the caller — no retry, no partial write.
type Manager struct {
	items []Proposal
	save  SaveFunc
}

// NewManager wraps an existing proposal list (typically read off the
// parent record) with a save function that writes it back.
func NewManager(existing []Proposal, save SaveFunc) *Manager {
	items := make([]Proposal, len(existing))
	copy(items, existing)
	return &Manager{items: items, save: save}
}

// Items returns a copy of the current proposal list.
func (m *Manager) Items() []Proposal {
	out := make([]Proposal, len(m.items))
	copy(out, m.items)
	return out
}

// commit saves the candidate list and adopts it on success.
func (m *Manager) commit(ctx context.Context, next []Proposal) error {
	if err := m.save(ctx, next); err != nil {
		return err
	}
	m.items = next
	return nil
}

// snapshot returns a fresh copy of the current list for mutation.
func (m *Manager) snapshot() []Proposal {
	next := make([]Proposal, len(m.items))
	copy(next, m.items)
	return next
}

func (m *Manager) indexOf(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func newProposal(f Fields, sortOrder int, now string) Proposal {
	status := f.Status
	if status == "" {
		status = StatusDraft
	}
	return Proposal{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Description: f.Description,
		EarlyPlan:   f.EarlyPlan,
		Status:      status,
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Add appends a single proposal with sort_order equal to the current
// list length.
func (m *Manager) Add(ctx context.Context, f Fields) (Proposal, error) {
	if f.Status != "" {
		if err := ValidateStatus(f.Status); err != nil {
			return Proposal{}, err
		}
	}

	now := timeNow().UTC().Format(time.RFC3339)
	p := newProposal(f, len(m.items), now)

	next := append(m.snapshot(), p)
	if err := m.commit(ctx, next); err != nil {
		return Proposal{}, err
	}
	return p, nil
}

// AddBatch appends multiple proposals preserving input order; sort_order
// continues from the current list length.
func (m *Manager) AddBatch(ctx context.Context, fields []Fields) ([]Proposal, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	now := timeNow().UTC().Format(time.RFC3339)
	next := m.snapshot()
	added := make([]Proposal, 0, len(fields))
	for _, f := range fields {
		if f.Status != "" {
			if err := ValidateStatus(f.Status); err != nil {
				return nil, err
			}
		}
		p := newProposal(f, len(next), now)
		next = append(next, p)
		added = append(added, p)
	}

	if err := m.commit(ctx, next); err != nil {
		return nil, err
	}
	return added, nil
}

// ReplaceAll discards the existing list and installs the given proposals
// with sort_order set to positional index. Used for first-time generation
// when no proposals exist yet.
func (m *Manager) ReplaceAll(ctx context.Context, fields []Fields) ([]Proposal, error) {
	now := timeNow().UTC().Format(time.RFC3339)
	next := make([]Proposal, 0, len(fields))
	for i, f := range fields {
		if f.Status != "" {
			if err := ValidateStatus(f.Status); err != nil {
				return nil, err
			}
		}
		next = append(next, newProposal(f, i, now))
	}

	if err := m.commit(ctx, next); err != nil {
		return nil, err
	}
	return m.Items(), nil
}

// UpdateProposal merges the non-nil fields of u into the proposal with
// the given id. Returns nil (no error) when the id is absent — an
// update against a missing proposal is a no-op, not a failure.
func (m *Manager) UpdateProposal(ctx context.Context, id string, u Update) (*Proposal, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, nil
	}
	if u.Status != nil {
		if err := ValidateStatus(*u.Status); err != nil {
			return nil, err
		}
	}

	next := m.snapshot()
	p := &next[idx]
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.EarlyPlan != nil {
		p.EarlyPlan = *u.EarlyPlan
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.GeneratedJourneyID != nil {
		p.GeneratedJourneyID = *u.GeneratedJourneyID
	}
	p.UpdatedAt = timeNow().UTC().Format(time.RFC3339)

	if err := m.commit(ctx, next); err != nil {
		return nil, err
	}
	result := next[idx]
	return &result, nil
}

// Delete removes the proposal with the given id from the list.
// Deleting a missing id is a no-op that still persists the (unchanged) list.
func (m *Manager) Delete(ctx context.Context, id string) error {
	next := make([]Proposal, 0, len(m.items))
	for _, p := range m.items {
		if p.ID != id {
			next = append(next, p)
		}
	}
	return m.commit(ctx, next)
}

// toggle flips the proposal's status between draft and the given status.
// Calling it twice returns the proposal to draft — an involution, not a
// one-way transition.
func (m *Manager) toggle(ctx context.Context, id string, status Status) (*Proposal, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("proposal %q not found", id)
	}

	next := m.snapshot()
	p := &next[idx]
	if p.Status == status {
		p.Status = StatusDraft
	} else {
		p.Status = status
	}
	p.UpdatedAt = timeNow().UTC().Format(time.RFC3339)

	if err := m.commit(ctx, next); err != nil {
		return nil, err
	}
	result := next[idx]
	return &result, nil
}

// ToggleReject flips between draft and rejected.
func (m *Manager) ToggleReject(ctx context.Context, id string) (*Proposal, error) {
	return m.toggle(ctx, id, StatusRejected)
}

// TogglePunt flips between draft and punted.
func (m *Manager) TogglePunt(ctx context.Context, id string) (*Proposal, error) {
	return m.toggle(ctx, id, StatusPunted)
}

// ToggleCompleted flips between draft and already_completed.
func (m *Manager) ToggleCompleted(ctx context.Context, id string) (*Proposal, error) {
	return m.toggle(ctx, id, StatusAlreadyCompleted)
}

// ResetToDraft forces the proposal's status back to draft and clears
// cancelled_at, regardless of current status.
func (m *Manager) ResetToDraft(ctx context.Context, id string) (*Proposal, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("proposal %q not found", id)
	}

	next := m.snapshot()
	p := &next[idx]
	p.Status = StatusDraft
	p.CancelledAt = ""
	p.UpdatedAt = timeNow().UTC().Format(time.RFC3339)

	if err := m.commit(ctx, next); err != nil {
		return nil, err
	}
	result := next[idx]
	return &result, nil
}

// CleanupOrphanedReferences demotes every generated proposal whose
// generated_journey_id is missing from the live journey id set: status
// becomes cancelled, the reference is cleared, and cancelled_at is
// stamped. Returns the number of proposals changed. When nothing is
// orphaned no write happens at all.
//
// Intended to run on every load so a manually deleted journey does not
// leave a proposal pointing at a stale id.
func (m *Manager) CleanupOrphanedReferences(ctx context.Context, liveIDs map[string]bool) (int, error) {
	next := m.snapshot()
	now := timeNow().UTC().Format(time.RFC3339)

	changed := 0
	for i := range next {
		p := &next[i]
		if p.Status != StatusGenerated || p.GeneratedJourneyID == "" {
			continue
		}
		if liveIDs[p.GeneratedJourneyID] {
			continue
		}
		p.Status = StatusCancelled
		p.GeneratedJourneyID = ""
		p.CancelledAt = now
		p.UpdatedAt = now
		changed++
	}

	if changed == 0 {
		return 0, nil
	}
	if err := m.commit(ctx, next); err != nil {
		return 0, err
	}
	return changed, nil
}

// Reorder rewrites sort_order to match each id's position in orderedIDs.
// Ids not present in orderedIDs keep their stored sort_order and are
// silently skipped — partial reorders are allowed.
func (m *Manager) Reorder(ctx context.Context, orderedIDs []string) error {
	position := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		position[id] = i
	}

	next := m.snapshot()
	for i := range next {
		if pos, ok := position[next[i].ID]; ok {
			next[i].SortOrder = pos
		}
	}
	return m.commit(ctx, next)
}

// ByStatus returns the proposals with the given status, or all of them
// when status is "all". Pure filter — no mutation, no save.
func (m *Manager) ByStatus(status string) []Proposal {
	if status == "all" {
		return m.Items()
	}
	var out []Proposal
	for _, p := range m.items {
		if p.Status == Status(status) {
			out = append(out, p)
		}
	}
	return out
}
