package store

import (
	"errors"
	"testing"

	"github.com/devorch/devorch/internal/journey"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreateProject(t *testing.T, s *Store, name string) *journey.Project {
	t.Helper()
	p, err := s.CreateProject(CreateProjectParams{Name: name, RootPath: "/tmp/" + name})
	if err != nil {
		t.Fatalf("CreateProject(%q): %v", name, err)
	}
	return p
}

func mustCreateJourney(t *testing.T, s *Store, projectID string, jType journey.Type, name string) *journey.Journey {
	t.Helper()
	j, err := s.CreateJourney(CreateJourneyParams{ProjectID: projectID, Name: name, Type: jType})
	if err != nil {
		t.Fatalf("CreateJourney(%q): %v", name, err)
	}
	return j
}

func TestProjectCRUD(t *testing.T) {
	s := newTestStore(t)

	p := mustCreateProject(t, s, "Demo")
	if p.ID == "" || p.CreatedAt == "" {
		t.Fatalf("project missing identity/timestamps: %+v", p)
	}

	got, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Name != "Demo" || got.RootPath != "/tmp/Demo" {
		t.Errorf("GetProject = %+v", got)
	}

	intake := "needs a login page"
	updated, err := s.UpdateProject(p.ID, UpdateProjectParams{RawIntake: &intake})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.RawIntake != intake {
		t.Errorf("raw_intake = %q, want %q", updated.RawIntake, intake)
	}
	if updated.Name != "Demo" {
		t.Errorf("untouched field changed: name = %q", updated.Name)
	}

	list, err := s.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListProjects = %d entries, want 1", len(list))
	}

	if err := s.DeleteProject(p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := s.GetProject(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProject after delete = %v, want ErrNotFound", err)
	}

	t.Run("missing required fields", func(t *testing.T) {
		if _, err := s.CreateProject(CreateProjectParams{RootPath: "/x"}); err == nil {
			t.Error("CreateProject without name expected error")
		}
		if _, err := s.CreateProject(CreateProjectParams{Name: "x"}); err == nil {
			t.Error("CreateProject without root_path expected error")
		}
	})
}

func TestCreateJourneyDefaultsStage(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")

	tests := []struct {
		jType     journey.Type
		wantStage journey.Stage
	}{
		{journey.TypeFeaturePlanning, journey.StageIntake},
		{journey.TypeFeature, journey.StageReviewAndEditPlan},
		{journey.TypeBug, journey.StageReported},
		{journey.TypeInvestigation, journey.StageInProgress},
	}

	for _, tt := range tests {
		t.Run(string(tt.jType), func(t *testing.T) {
			j := mustCreateJourney(t, s, p.ID, tt.jType, "j-"+string(tt.jType))

			got, err := s.GetJourney(j.ID)
			if err != nil {
				t.Fatalf("GetJourney: %v", err)
			}
			if got.Stage != tt.wantStage {
				t.Errorf("stage = %q, want initial %q", got.Stage, tt.wantStage)
			}
			if got.Status != journey.StatusPlanning {
				t.Errorf("status = %q, want derived planning", got.Status)
			}
			if journey.CategoryFor(got.Type, got.Stage) != journey.CategoryPending {
				t.Errorf("category = %q, want pending", journey.CategoryFor(got.Type, got.Stage))
			}
		})
	}
}

func TestCreateJourneyValidation(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")

	_, err := s.CreateJourney(CreateJourneyParams{
		ProjectID: p.ID, Name: "bad", Type: journey.TypeBug, Stage: journey.StageIntake,
	})
	if err == nil {
		t.Error("CreateJourney with foreign stage expected error")
	}

	_, err = s.CreateJourney(CreateJourneyParams{ProjectID: p.ID, Name: "bad", Type: journey.Type("epic")})
	if err == nil {
		t.Error("CreateJourney with unknown type expected error")
	}

	_, err = s.CreateJourney(CreateJourneyParams{ProjectID: p.ID, Type: journey.TypeBug})
	if err == nil {
		t.Error("CreateJourney without name expected error")
	}
}

func TestUpdateJourneyStageRewritesStatus(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	j := mustCreateJourney(t, s, p.ID, journey.TypeFeaturePlanning, "Add login")

	stage := journey.StageApproved
	got, err := s.UpdateJourney(j.ID, UpdateJourneyParams{Stage: &stage})
	if err != nil {
		t.Fatalf("UpdateJourney: %v", err)
	}
	if got.Stage != journey.StageApproved {
		t.Errorf("stage = %q, want approved", got.Stage)
	}
	if got.Status != journey.StatusDeployed {
		t.Errorf("status = %q, want deployed (derived from final stage)", got.Status)
	}
	if journey.CategoryFor(got.Type, got.Stage) != journey.CategoryDone {
		t.Errorf("category = %q, want done", journey.CategoryFor(got.Type, got.Stage))
	}

	t.Run("stage foreign to the journey's type is rejected", func(t *testing.T) {
		bad := journey.StageReported
		if _, err := s.UpdateJourney(j.ID, UpdateJourneyParams{Stage: &bad}); err == nil {
			t.Error("UpdateJourney with foreign stage expected error")
		}
	})
}

func TestUpdateJourneyFields(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	j := mustCreateJourney(t, s, p.ID, journey.TypeFeature, "Widget")

	desc := "make the widget wiggle"
	tags := []string{"ui", "fun"}
	src := "https://issues.example.com/42"
	got, err := s.UpdateJourney(j.ID, UpdateJourneyParams{
		Description: &desc,
		Tags:        &tags,
		SourceURL:   &src,
	})
	if err != nil {
		t.Fatalf("UpdateJourney: %v", err)
	}
	if got.Description != desc || got.SourceURL != src {
		t.Errorf("fields not applied: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "ui" {
		t.Errorf("tags = %v, want %v", got.Tags, tags)
	}
	if got.Name != "Widget" {
		t.Errorf("untouched name changed: %q", got.Name)
	}

	if _, err := s.UpdateJourney("missing", UpdateJourneyParams{Description: &desc}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateJourney(missing) = %v, want ErrNotFound", err)
	}
}

func TestStartJourney(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	j := mustCreateJourney(t, s, p.ID, journey.TypeFeature, "Widget")

	if j.BranchName != "" || j.WorktreePath != "" {
		t.Fatalf("branch/worktree must be empty until started: %+v", j)
	}

	got, err := s.StartJourney(j.ID, "feature/widget", "/work/widget")
	if err != nil {
		t.Fatalf("StartJourney: %v", err)
	}
	if got.BranchName != "feature/widget" || got.WorktreePath != "/work/widget" {
		t.Errorf("StartJourney did not set both fields: %+v", got)
	}
}

func TestListJourneysOrderAndScope(t *testing.T) {
	s := newTestStore(t)
	p1 := mustCreateProject(t, s, "One")
	p2 := mustCreateProject(t, s, "Two")

	a := mustCreateJourney(t, s, p1.ID, journey.TypeBug, "a")
	b := mustCreateJourney(t, s, p1.ID, journey.TypeBug, "b")
	mustCreateJourney(t, s, p2.ID, journey.TypeBug, "other project")

	// Give b an earlier explicit sort position.
	order := 0
	if _, err := s.UpdateJourney(b.ID, UpdateJourneyParams{SortOrder: &order}); err != nil {
		t.Fatalf("UpdateJourney: %v", err)
	}
	order = 1
	if _, err := s.UpdateJourney(a.ID, UpdateJourneyParams{SortOrder: &order}); err != nil {
		t.Fatalf("UpdateJourney: %v", err)
	}

	scoped, err := s.ListJourneys(p1.ID)
	if err != nil {
		t.Fatalf("ListJourneys: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("scoped list = %d entries, want 2", len(scoped))
	}
	if scoped[0].ID != b.ID || scoped[1].ID != a.ID {
		t.Errorf("order = [%s %s], want explicit sort order first", scoped[0].Name, scoped[1].Name)
	}

	all, err := s.ListJourneys("")
	if err != nil {
		t.Fatalf("ListJourneys(all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unscoped list = %d entries, want 3", len(all))
	}
}

func TestDeleteJourneyClearsChildReferences(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	parent := mustCreateJourney(t, s, p.ID, journey.TypeFeature, "parent")

	child, err := s.CreateJourney(CreateJourneyParams{
		ProjectID: p.ID, Name: "child", Type: journey.TypeFeature, ParentJourneyID: parent.ID,
	})
	if err != nil {
		t.Fatalf("CreateJourney(child): %v", err)
	}

	if err := s.DeleteJourney(parent.ID); err != nil {
		t.Fatalf("DeleteJourney: %v", err)
	}

	got, err := s.GetJourney(child.ID)
	if err != nil {
		t.Fatalf("GetJourney(child): %v", err)
	}
	if got.ParentJourneyID != "" {
		t.Errorf("child still references deleted parent %q", got.ParentJourneyID)
	}

	if err := s.DeleteJourney(parent.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestLiveJourneyIDs(t *testing.T) {
	s := newTestStore(t)
	p := mustCreateProject(t, s, "Demo")
	j := mustCreateJourney(t, s, p.ID, journey.TypeBug, "a bug")

	ids, err := s.LiveJourneyIDs()
	if err != nil {
		t.Fatalf("LiveJourneyIDs: %v", err)
	}
	if !ids[j.ID] {
		t.Errorf("live set missing %q", j.ID)
	}

	if err := s.DeleteJourney(j.ID); err != nil {
		t.Fatalf("DeleteJourney: %v", err)
	}
	ids, err = s.LiveJourneyIDs()
	if err != nil {
		t.Fatalf("LiveJourneyIDs: %v", err)
	}
	if ids[j.ID] {
		t.Errorf("live set still contains deleted journey")
	}
}
