package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/devorch/devorch/internal/journey"
	"github.com/devorch/devorch/internal/proposal"
	"github.com/devorch/devorch/internal/store"
	"github.com/devorch/devorch/internal/templates"
)

type fakeAI struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeAI) Query(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func mustRenderer(t *testing.T) *templates.Renderer {
	t.Helper()
	r, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("setup: renderer: %v", err)
	}
	return r
}

func addProposal(t *testing.T, s *store.Store, ownerID, name string) proposal.Proposal {
	t.Helper()
	tool := NewProposalAddTool(s, nil)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":    "project",
		"owner_id": ownerID,
		"name":     name,
	}))
	if err != nil {
		t.Fatalf("setup: add proposal: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("setup: add proposal: %s", getResultText(result))
	}
	var p proposal.Proposal
	decodeResult(t, result, &p)
	return p
}

func TestProposalAddAndList(t *testing.T) {
	s := newTestStore(t)
	p := mustProject(t, s, "Acme")

	first := addProposal(t, s, p.ID, "Set up CI")
	second := addProposal(t, s, p.ID, "Add login")

	if first.Status != proposal.StatusDraft || first.SortOrder != 0 {
		t.Errorf("first = %+v", first)
	}
	if second.SortOrder != 1 {
		t.Errorf("second sort_order = %d", second.SortOrder)
	}

	list := NewProposalListTool(s)
	result, err := list.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":    "project",
		"owner_id": p.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var items []proposal.Proposal
	decodeResult(t, result, &items)
	if len(items) != 2 || items[0].Name != "Set up CI" {
		t.Errorf("items = %+v", items)
	}
}

func TestProposalListTool_BadScope(t *testing.T) {
	tool := NewProposalListTool(newTestStore(t))
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":    "galaxy",
		"owner_id": "x",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected tool error for unknown scope")
	}
}

func TestProposalUpdateTool_UnknownIDIsNoOp(t *testing.T) {
	s := newTestStore(t)
	p := mustProject(t, s, "Acme")
	addProposal(t, s, p.ID, "Keep me")

	tool := NewProposalUpdateTool(s, nil)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":       "project",
		"owner_id":    p.ID,
		"proposal_id": "ghost",
		"name":        "renamed",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unknown id should be a no-op, got error: %s", getResultText(result))
	}

	items, _ := s.ProjectProposals(p.ID)
	if len(items) != 1 || items[0].Name != "Keep me" {
		t.Errorf("items changed: %+v", items)
	}
}

func TestProposalToggleTool_Involution(t *testing.T) {
	s := newTestStore(t)
	proj := mustProject(t, s, "Acme")
	prop := addProposal(t, s, proj.ID, "Maybe later")

	tool := NewProposalToggleTool(s, nil)
	args := map[string]interface{}{
		"scope":       "project",
		"owner_id":    proj.ID,
		"proposal_id": prop.ID,
		"action":      "punt",
	}

	result, err := tool.Handle(context.Background(), callReq(args))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var toggled proposal.Proposal
	decodeResult(t, result, &toggled)
	if toggled.Status != proposal.StatusPunted {
		t.Errorf("status = %q, want punted", toggled.Status)
	}

	result, err = tool.Handle(context.Background(), callReq(args))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	decodeResult(t, result, &toggled)
	if toggled.Status != proposal.StatusDraft {
		t.Errorf("second toggle should restore draft, got %q", toggled.Status)
	}
}

func TestProposalToggleTool_UnknownID(t *testing.T) {
	s := newTestStore(t)
	proj := mustProject(t, s, "Acme")

	tool := NewProposalToggleTool(s, nil)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":       "project",
		"owner_id":    proj.ID,
		"proposal_id": "ghost",
		"action":      "reject",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected tool error for unknown proposal")
	}
}

func TestProposalReorderTool_PartialOrder(t *testing.T) {
	s := newTestStore(t)
	proj := mustProject(t, s, "Acme")
	a := addProposal(t, s, proj.ID, "a")
	b := addProposal(t, s, proj.ID, "b")
	c := addProposal(t, s, proj.ID, "c")

	tool := NewProposalReorderTool(s, nil)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":       "project",
		"owner_id":    proj.ID,
		"ordered_ids": c.ID + "," + a.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("reorder failed: %s", getResultText(result))
	}

	items, _ := s.ProjectProposals(proj.ID)
	byID := map[string]int{}
	for _, p := range items {
		byID[p.ID] = p.SortOrder
	}
	if byID[c.ID] != 0 || byID[a.ID] != 1 {
		t.Errorf("sort orders = %v", byID)
	}
	// b was absent from the input and keeps its old position.
	if byID[b.ID] != b.SortOrder {
		t.Errorf("b sort_order = %d, want %d", byID[b.ID], b.SortOrder)
	}
}

func TestProposalGroupTool_CycleRejected(t *testing.T) {
	s := newTestStore(t)
	proj := mustProject(t, s, "Acme")
	parent := addProposal(t, s, proj.ID, "parent")
	child := addProposal(t, s, proj.ID, "child")

	tool := NewProposalGroupTool(s, nil)

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":       "project",
		"owner_id":    proj.ID,
		"action":      "set_parent",
		"proposal_id": child.ID,
		"parent_id":   parent.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("set_parent failed: %s", getResultText(result))
	}

	// Parenting parent under child would form a cycle.
	result, err = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":       "project",
		"owner_id":    proj.ID,
		"action":      "set_parent",
		"proposal_id": parent.ID,
		"parent_id":   child.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected tool error for cycle")
	}

	// available_parents for parent must exclude its descendant.
	result, err = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":       "project",
		"owner_id":    proj.ID,
		"action":      "available_parents",
		"proposal_id": parent.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var candidates []proposal.Proposal
	decodeResult(t, result, &candidates)
	for _, cand := range candidates {
		if cand.ID == child.ID || cand.ID == parent.ID {
			t.Errorf("invalid parent candidate %q", cand.Name)
		}
	}
}

func TestProposalGenerateTool_ReplaceVsAppend(t *testing.T) {
	s := newTestStore(t)
	proj := mustProject(t, s, "Acme")

	gw := &fakeAI{response: `[{"name":"Gen A","description":"first"},{"name":"Gen B","description":"second"}]`}
	tool := NewProposalGenerateTool(s, gw, mustRenderer(t), nil)

	// Empty list: generation replaces.
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":    "project",
		"owner_id": proj.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("generate failed: %s", getResultText(result))
	}
	items, _ := s.ProjectProposals(proj.ID)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	// Non-empty list: generation appends after existing entries.
	gw.response = `[{"name":"Gen C"}]`
	result, err = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":    "project",
		"owner_id": proj.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("generate failed: %s", getResultText(result))
	}
	items, _ = s.ProjectProposals(proj.ID)
	if len(items) != 3 || items[2].Name != "Gen C" || items[2].SortOrder != 2 {
		t.Errorf("items = %+v", items)
	}

	// Existing names are passed to the model to avoid duplicates.
	lastPrompt := gw.prompts[len(gw.prompts)-1]
	if !contains(lastPrompt, "Gen A") || !contains(lastPrompt, "Gen B") {
		t.Errorf("prompt missing existing names:\n%s", lastPrompt)
	}
}

func TestProposalGenerateTool_ModelFailure(t *testing.T) {
	s := newTestStore(t)
	proj := mustProject(t, s, "Acme")

	gw := &fakeAI{err: errors.New("model unavailable")}
	tool := NewProposalGenerateTool(s, gw, mustRenderer(t), nil)

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":    "project",
		"owner_id": proj.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected tool error when the model fails")
	}
	if items, _ := s.ProjectProposals(proj.ID); len(items) != 0 {
		t.Errorf("failed generation wrote proposals: %+v", items)
	}
}

func TestProposalPromoteAndCleanup(t *testing.T) {
	s := newTestStore(t)
	proj := mustProject(t, s, "Acme")
	prop := addProposal(t, s, proj.ID, "Ship search")

	promote := NewProposalPromoteTool(s, nil)
	result, err := promote.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":       "project",
		"owner_id":    proj.ID,
		"proposal_id": prop.ID,
		"project_id":  proj.ID,
		"type":        "feature",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("promote failed: %s", getResultText(result))
	}
	var j journey.Journey
	decodeResult(t, result, &j)
	if j.Name != "Ship search" || j.Type != journey.TypeFeature {
		t.Errorf("journey = %+v", j)
	}

	items, _ := s.ProjectProposals(proj.ID)
	if items[0].Status != proposal.StatusGenerated || items[0].GeneratedJourneyID != j.ID {
		t.Fatalf("proposal after promote = %+v", items[0])
	}

	// Promoting twice is rejected.
	result, err = promote.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":       "project",
		"owner_id":    proj.ID,
		"proposal_id": prop.ID,
		"project_id":  proj.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected tool error for double promotion")
	}

	// Delete the journey, then cleanup cancels the proposal.
	if err := s.DeleteJourney(j.ID); err != nil {
		t.Fatal(err)
	}
	cleanup := NewProposalCleanupTool(s, nil)
	result, err = cleanup.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":    "project",
		"owner_id": proj.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !contains(getResultText(result), "1 proposal(s)") {
		t.Errorf("cleanup result = %s", getResultText(result))
	}

	items, _ = s.ProjectProposals(proj.ID)
	if items[0].Status != proposal.StatusCancelled || items[0].GeneratedJourneyID != "" || items[0].CancelledAt == "" {
		t.Errorf("proposal after cleanup = %+v", items[0])
	}

	// Reset brings it back to draft.
	reset := NewProposalResetTool(s, nil)
	result, err = reset.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":       "project",
		"owner_id":    proj.ID,
		"proposal_id": prop.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var back proposal.Proposal
	decodeResult(t, result, &back)
	if back.Status != proposal.StatusDraft || back.CancelledAt != "" {
		t.Errorf("proposal after reset = %+v", back)
	}
}

func TestIntakeRefineTool_Project(t *testing.T) {
	s := newTestStore(t)
	proj := mustProject(t, s, "Acme")

	gw := &fakeAI{response: "## Brief\n- build things"}
	tool := NewIntakeRefineTool(s, gw, mustRenderer(t), nil)

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"scope":    "project",
		"owner_id": proj.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("refine failed: %s", getResultText(result))
	}

	got, err := s.GetProject(proj.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RefinedIntake != "## Brief\n- build things" {
		t.Errorf("refined_intake = %q", got.RefinedIntake)
	}
	if len(gw.prompts) != 1 || !contains(gw.prompts[0], "build things") {
		t.Errorf("prompt = %v", gw.prompts)
	}
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }
