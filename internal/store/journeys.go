package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/devorch/devorch/internal/journey"
	"github.com/devorch/devorch/internal/proposal"
)

// CreateJourneyParams holds input for creating a new journey.
// Stage is optional: when empty the journey starts at the initial stage
// of its type's flow.
type CreateJourneyParams struct {
	ProjectID       string
	Name            string
	Description     string
	Type            journey.Type
	Stage           journey.Stage
	ParentJourneyID string
	Tags            []string
	SourceURL       string
	SortOrder       int
}

// UpdateJourneyParams holds partial update fields for a journey.
// Nil pointers leave the corresponding column untouched. A stage change
// is validated against the journey's type and rewrites the derived status.
type UpdateJourneyParams struct {
	Name            *string
	Description     *string
	Stage           *journey.Stage
	BranchName      *string
	WorktreePath    *string
	ParentJourneyID *string
	Tags            *[]string
	SourceURL       *string
	SortOrder       *int
}

// CreateJourney inserts a new journey. The stage defaults to the initial
// stage of the type's flow and must be a member of that flow when supplied.
func (s *Store) CreateJourney(p CreateJourneyParams) (*journey.Journey, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("store: journey name is required")
	}
	if err := journey.ValidateType(p.Type); err != nil {
		return nil, err
	}

	stage := p.Stage
	if stage == "" {
		initial, err := journey.InitialStage(p.Type)
		if err != nil {
			return nil, err
		}
		stage = initial
	} else if err := journey.ValidateStage(p.Type, stage); err != nil {
		return nil, err
	}

	tags, err := encodeTags(p.Tags)
	if err != nil {
		return nil, err
	}

	now := nowRFC3339()
	j := &journey.Journey{
		ID:              uuid.NewString(),
		ProjectID:       p.ProjectID,
		Name:            p.Name,
		Description:     p.Description,
		Type:            p.Type,
		Stage:           stage,
		Status:          journey.StatusFor(p.Type, stage),
		ParentJourneyID: p.ParentJourneyID,
		Tags:            p.Tags,
		SourceURL:       p.SourceURL,
		SortOrder:       p.SortOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err = s.db.Exec(
		`INSERT INTO journeys (
			id, project_id, name, description, type, stage, status,
			branch_name, worktree_path, parent_journey_id, tags, source_url,
			sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, '', '', ?, ?, ?, ?, ?, ?)`,
		j.ID, j.ProjectID, j.Name, j.Description, string(j.Type), string(j.Stage), string(j.Status),
		j.ParentJourneyID, tags, j.SourceURL, j.SortOrder, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert journey: %w", err)
	}
	return j, nil
}

const journeyColumns = `id, project_id, name, description, type, stage, status,
	branch_name, worktree_path, parent_journey_id, tags, source_url,
	sort_order, created_at, updated_at`

func scanJourney(row interface{ Scan(...any) error }) (*journey.Journey, error) {
	var j journey.Journey
	var rawTags string
	err := row.Scan(
		&j.ID, &j.ProjectID, &j.Name, &j.Description, &j.Type, &j.Stage, &j.Status,
		&j.BranchName, &j.WorktreePath, &j.ParentJourneyID, &rawTags, &j.SourceURL,
		&j.SortOrder, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rawTags != "" && rawTags != "[]" {
		if err := json.Unmarshal([]byte(rawTags), &j.Tags); err != nil {
			return nil, fmt.Errorf("store: parse tags for %q: %w", j.ID, err)
		}
	}
	return &j, nil
}

// GetJourney retrieves a journey by id.
func (s *Store) GetJourney(id string) (*journey.Journey, error) {
	row := s.db.QueryRow(`SELECT `+journeyColumns+` FROM journeys WHERE id = ?`, id)
	j, err := scanJourney(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: journey %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get journey: %w", err)
	}
	return j, nil
}

// ListJourneys returns journeys ordered by explicit sort order, then
// most recently created. An empty projectID lists across all projects.
func (s *Store) ListJourneys(projectID string) ([]journey.Journey, error) {
	query := `SELECT ` + journeyColumns + ` FROM journeys`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY sort_order, created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list journeys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []journey.Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan journey: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// UpdateJourney applies the non-nil fields of u and returns the updated
// journey. A stage change revalidates against the journey's type and
// rewrites the derived status in the same statement.
func (s *Store) UpdateJourney(id string, u UpdateJourneyParams) (*journey.Journey, error) {
	current, err := s.GetJourney(id)
	if err != nil {
		return nil, err
	}

	set := "updated_at = ?"
	args := []any{nowRFC3339()}

	applyStr := func(column string, v *string) {
		if v != nil {
			set += ", " + column + " = ?"
			args = append(args, *v)
		}
	}
	applyStr("name", u.Name)
	applyStr("description", u.Description)
	applyStr("branch_name", u.BranchName)
	applyStr("worktree_path", u.WorktreePath)
	applyStr("parent_journey_id", u.ParentJourneyID)
	applyStr("source_url", u.SourceURL)

	if u.Stage != nil {
		if err := journey.ValidateStage(current.Type, *u.Stage); err != nil {
			return nil, err
		}
		set += ", stage = ?, status = ?"
		args = append(args, string(*u.Stage), string(journey.StatusFor(current.Type, *u.Stage)))
	}
	if u.Tags != nil {
		tags, err := encodeTags(*u.Tags)
		if err != nil {
			return nil, err
		}
		set += ", tags = ?"
		args = append(args, tags)
	}
	if u.SortOrder != nil {
		set += ", sort_order = ?"
		args = append(args, *u.SortOrder)
	}

	args = append(args, id)
	if _, err := s.db.Exec(`UPDATE journeys SET `+set+` WHERE id = ?`, args...); err != nil {
		return nil, fmt.Errorf("store: update journey: %w", err)
	}
	return s.GetJourney(id)
}

// StartJourney attaches the branch and worktree identifiers in one
// update. It does not create the worktree — that is a shell collaborator
// call made before this.
func (s *Store) StartJourney(id, branchName, worktreePath string) (*journey.Journey, error) {
	return s.UpdateJourney(id, UpdateJourneyParams{
		BranchName:   &branchName,
		WorktreePath: &worktreePath,
	})
}

// DeleteJourney removes the journey row. Dependent documents, links and
// sessions go with it via foreign-key cascade; child journeys keep their
// rows but have their parent reference cleared by a separate best-effort
// statement.
func (s *Store) DeleteJourney(id string) error {
	res, err := s.db.Exec(`DELETE FROM journeys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete journey: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: journey %q: %w", id, ErrNotFound)
	}

	_, _ = s.db.Exec(`UPDATE journeys SET parent_journey_id = '' WHERE parent_journey_id = ?`, id) // best-effort

	return nil
}

// JourneyProposals reads the proposed-children list embedded on the journey.
func (s *Store) JourneyProposals(id string) ([]proposal.Proposal, error) {
	var raw string
	err := s.db.QueryRow(`SELECT proposed_children FROM journeys WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: journey %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: read journey proposals: %w", err)
	}
	return decodeProposals(raw)
}

// SaveJourneyProposals rewrites the whole proposed-children array.
func (s *Store) SaveJourneyProposals(id string, items []proposal.Proposal) error {
	raw, err := encodeProposals(items)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE journeys SET proposed_children = ?, updated_at = ? WHERE id = ?`,
		raw, nowRFC3339(), id,
	)
	if err != nil {
		return fmt.Errorf("store: save journey proposals: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: journey %q: %w", id, ErrNotFound)
	}
	return nil
}

// LiveJourneyIDs returns the set of existing journey ids, used for
// orphan cleanup of generated proposals.
func (s *Store) LiveJourneyIDs() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT id FROM journeys`)
	if err != nil {
		return nil, fmt.Errorf("store: list journey ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("store: marshal tags: %w", err)
	}
	return string(raw), nil
}
