package store

import (
	"errors"
	"testing"

	"github.com/devorch/devorch/internal/journey"
)

func TestIntakeVersioning(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	j := mustCreateJourney(t, s, p.ID, journey.TypeFeaturePlanning, "Add login")

	first, err := s.AddIntake(j.ID, "rough idea", "")
	if err != nil {
		t.Fatalf("AddIntake: %v", err)
	}
	if first.Version != 1 {
		t.Errorf("first version = %d, want 1", first.Version)
	}

	second, err := s.AddIntake(j.ID, "rough idea", "Refined: users sign in with email.")
	if err != nil {
		t.Fatalf("AddIntake: %v", err)
	}
	if second.Version != 2 {
		t.Errorf("second version = %d, want 2", second.Version)
	}

	latest, err := s.LatestIntake(j.ID)
	if err != nil {
		t.Fatalf("LatestIntake: %v", err)
	}
	if latest.Version != 2 || latest.Refined == "" {
		t.Errorf("LatestIntake = %+v, want version 2 with refined text", latest)
	}

	if _, err := s.LatestIntake("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestIntake(missing) = %v, want ErrNotFound", err)
	}
}

func TestSpecAndPlanVersioning(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	j := mustCreateJourney(t, s, p.ID, journey.TypeFeature, "Widget")

	if _, err := s.AddSpec(j.ID, "# Spec v1"); err != nil {
		t.Fatalf("AddSpec: %v", err)
	}
	doc, err := s.AddSpec(j.ID, "# Spec v2")
	if err != nil {
		t.Fatalf("AddSpec: %v", err)
	}
	if doc.Version != 2 {
		t.Errorf("spec version = %d, want 2", doc.Version)
	}

	latest, err := s.LatestSpec(j.ID)
	if err != nil {
		t.Fatalf("LatestSpec: %v", err)
	}
	if latest.Content != "# Spec v2" {
		t.Errorf("LatestSpec content = %q", latest.Content)
	}

	plan, err := s.AddPlan(j.ID, `{"steps":["a","b"]}`)
	if err != nil {
		t.Fatalf("AddPlan: %v", err)
	}
	if plan.Version != 1 {
		t.Errorf("plan version = %d, want 1 (independent of specs)", plan.Version)
	}
}

func TestChecklists(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	j := mustCreateJourney(t, s, p.ID, journey.TypeFeature, "Widget")

	cl, err := s.CreateChecklist(j.ID, "launch")
	if err != nil {
		t.Fatalf("CreateChecklist: %v", err)
	}

	item1, err := s.AddChecklistItem(cl.ID, "task", "write tests")
	if err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
	item2, err := s.AddChecklistItem(cl.ID, "verify", "run staging QA")
	if err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
	if item1.SortOrder != 0 || item2.SortOrder != 1 {
		t.Errorf("sort orders = %d, %d, want 0, 1", item1.SortOrder, item2.SortOrder)
	}

	if err := s.SetChecklistItemDone(item1.ID, true); err != nil {
		t.Fatalf("SetChecklistItemDone: %v", err)
	}

	lists, err := s.Checklists(j.ID)
	if err != nil {
		t.Fatalf("Checklists: %v", err)
	}
	if len(lists) != 1 || len(lists[0].Items) != 2 {
		t.Fatalf("Checklists = %+v, want one list with two items", lists)
	}
	if !lists[0].Items[0].Done || lists[0].Items[1].Done {
		t.Errorf("done flags = %v, %v", lists[0].Items[0].Done, lists[0].Items[1].Done)
	}
	if lists[0].Items[1].Kind != "verify" {
		t.Errorf("item kind = %q, want verify", lists[0].Items[1].Kind)
	}
}

func TestLinks(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	a := mustCreateJourney(t, s, p.ID, journey.TypeFeature, "a")
	b := mustCreateJourney(t, s, p.ID, journey.TypeBug, "b")

	l, err := s.AddLink(a.ID, b.ID, "blocks", "fix before shipping")
	if err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	if _, err := s.AddLink(a.ID, a.ID, "blocks", ""); err == nil {
		t.Error("self link expected error")
	}
	if _, err := s.AddLink(a.ID, b.ID, "blocks", "dup"); err == nil {
		t.Error("duplicate (from,to,type) expected unique constraint error")
	}

	forA, err := s.LinksFor(a.ID)
	if err != nil {
		t.Fatalf("LinksFor: %v", err)
	}
	forB, err := s.LinksFor(b.ID)
	if err != nil {
		t.Fatalf("LinksFor: %v", err)
	}
	if len(forA) != 1 || len(forB) != 1 {
		t.Fatalf("links = %d/%d, want visible from both directions", len(forA), len(forB))
	}

	if err := s.DeleteLink(l.ID); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if err := s.DeleteLink(l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteLink = %v, want ErrNotFound", err)
	}
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	j := mustCreateJourney(t, s, p.ID, journey.TypeInvestigation, "why is prod slow")

	sess, err := s.StartSession(j.ID, "claude-code")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if sess.EndedAt != nil {
		t.Errorf("new session already ended: %+v", sess)
	}

	if err := s.EndSession(sess.ID, "found the N+1 query"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	sessions, err := s.SessionsFor(j.ID)
	if err != nil {
		t.Fatalf("SessionsFor: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	got := sessions[0]
	if got.EndedAt == nil || got.Summary == nil || *got.Summary != "found the N+1 query" {
		t.Errorf("session = %+v, want ended with summary", got)
	}
}

func TestSearchJourneys(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	mustCreateJourney(t, s, p.ID, journey.TypeFeature, "Add login page")
	mustCreateJourney(t, s, p.ID, journey.TypeBug, "Fix logout crash")

	results, err := s.SearchJourneys("login", 10)
	if err != nil {
		t.Fatalf("SearchJourneys: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Add login page" {
		t.Errorf("results = %+v, want the login journey", results)
	}

	t.Run("empty query errors", func(t *testing.T) {
		if _, err := s.SearchJourneys("   ", 10); err == nil {
			t.Error("empty query expected error")
		}
	})

	t.Run("punctuation-only query errors instead of crashing", func(t *testing.T) {
		if _, err := s.SearchJourneys(`"""`, 10); err == nil {
			t.Error("punctuation-only query expected error")
		}
	})

	t.Run("deleted journeys leave the index", func(t *testing.T) {
		results, err := s.SearchJourneys("logout", 10)
		if err != nil {
			t.Fatalf("SearchJourneys: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("results = %d, want 1", len(results))
		}
		if err := s.DeleteJourney(results[0].ID); err != nil {
			t.Fatalf("DeleteJourney: %v", err)
		}
		results, err = s.SearchJourneys("logout", 10)
		if err != nil {
			t.Fatalf("SearchJourneys: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("results = %+v, want none after delete", results)
		}
	})
}
