package proposal

import (
	"context"
	"testing"
)

// chain builds p → q → r (q's parent is p, r's parent is q) plus one
// unrelated proposal, returning the manager and the four proposals.
func chain(t *testing.T) (m *Manager, p, q, r, other Proposal) {
	t.Helper()
	save := &memorySave{}
	m = NewManager(nil, save.fn())
	ctx := context.Background()

	p = mustAdd(t, m, "p")
	q = mustAdd(t, m, "q")
	r = mustAdd(t, m, "r")
	other = mustAdd(t, m, "other")

	if _, err := m.SetGroup(ctx, p.ID, true); err != nil {
		t.Fatalf("SetGroup error = %v", err)
	}
	if _, err := m.SetParent(ctx, q.ID, p.ID); err != nil {
		t.Fatalf("SetParent(q, p) error = %v", err)
	}
	if _, err := m.SetParent(ctx, r.ID, q.ID); err != nil {
		t.Fatalf("SetParent(r, q) error = %v", err)
	}
	return m, p, q, r, other
}

func TestAvailableParentsExcludesSelfAndDescendants(t *testing.T) {
	m, p, q, r, other := chain(t)

	candidates := m.AvailableParents(p.ID)
	ids := make(map[string]bool)
	for _, c := range candidates {
		ids[c.ID] = true
	}

	for _, forbidden := range []Proposal{p, q, r} {
		if ids[forbidden.ID] {
			t.Errorf("candidate set for %q contains %q", p.Name, forbidden.Name)
		}
	}
	if !ids[other.ID] {
		t.Errorf("candidate set for %q missing unrelated proposal", p.Name)
	}
}

func TestSetParentRejectsCycles(t *testing.T) {
	m, p, _, r, _ := chain(t)
	ctx := context.Background()

	// p → q → r already holds; making r the parent of p would close a loop.
	if _, err := m.SetParent(ctx, p.ID, r.ID); err == nil {
		t.Error("SetParent(p, r) expected cycle error, got nil")
	}
}

func TestSetParentClearAndUnknowns(t *testing.T) {
	m, _, q, _, _ := chain(t)
	ctx := context.Background()

	got, err := m.SetParent(ctx, q.ID, "")
	if err != nil {
		t.Fatalf("SetParent(clear) error = %v", err)
	}
	if got.ProposedParentID != "" {
		t.Errorf("parent = %q, want cleared", got.ProposedParentID)
	}

	if _, err := m.SetParent(ctx, q.ID, "missing"); err == nil {
		t.Error("SetParent with unknown parent expected error")
	}
	if _, err := m.SetParent(ctx, "missing", q.ID); err == nil {
		t.Error("SetParent with unknown child expected error")
	}
}

func TestUngroupChildren(t *testing.T) {
	m, p, q, r, _ := chain(t)
	ctx := context.Background()

	detached, err := m.UngroupChildren(ctx, p.ID)
	if err != nil {
		t.Fatalf("UngroupChildren error = %v", err)
	}
	if detached != 1 {
		t.Errorf("detached = %d, want 1 (only direct children)", detached)
	}

	byID := make(map[string]Proposal)
	for _, item := range m.Items() {
		byID[item.ID] = item
	}
	if byID[q.ID].ProposedParentID != "" {
		t.Errorf("q still parented to %q", byID[q.ID].ProposedParentID)
	}
	if byID[r.ID].ProposedParentID != q.ID {
		t.Errorf("r's parent changed to %q, want %q (grandchildren untouched)", byID[r.ID].ProposedParentID, q.ID)
	}

	t.Run("no children means no write", func(t *testing.T) {
		detached, err := m.UngroupChildren(ctx, p.ID)
		if err != nil {
			t.Fatalf("UngroupChildren error = %v", err)
		}
		if detached != 0 {
			t.Errorf("detached = %d, want 0", detached)
		}
	})
}
