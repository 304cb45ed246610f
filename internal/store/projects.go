package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/devorch/devorch/internal/journey"
	"github.com/devorch/devorch/internal/proposal"
)

// CreateProjectParams holds input for registering a new project.
type CreateProjectParams struct {
	Name             string
	RootPath         string
	FrontendPath     string
	BackendPath      string
	FrontendStartCmd string
	BackendStartCmd  string
	RawIntake        string
}

// UpdateProjectParams holds partial update fields for a project.
// Nil pointers leave the corresponding column untouched.
type UpdateProjectParams struct {
	Name             *string
	RootPath         *string
	FrontendPath     *string
	BackendPath      *string
	FrontendStartCmd *string
	BackendStartCmd  *string
	RawIntake        *string
	RefinedIntake    *string
}

// CreateProject inserts a new project and returns it.
func (s *Store) CreateProject(p CreateProjectParams) (*journey.Project, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("store: project name is required")
	}
	if p.RootPath == "" {
		return nil, fmt.Errorf("store: project root_path is required")
	}

	now := nowRFC3339()
	proj := &journey.Project{
		ID:               uuid.NewString(),
		Name:             p.Name,
		RootPath:         p.RootPath,
		FrontendPath:     p.FrontendPath,
		BackendPath:      p.BackendPath,
		FrontendStartCmd: p.FrontendStartCmd,
		BackendStartCmd:  p.BackendStartCmd,
		RawIntake:        p.RawIntake,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := s.db.Exec(
		`INSERT INTO projects (
			id, name, root_path, frontend_path, backend_path,
			frontend_start_cmd, backend_start_cmd, raw_intake, refined_intake,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
		proj.ID, proj.Name, proj.RootPath, proj.FrontendPath, proj.BackendPath,
		proj.FrontendStartCmd, proj.BackendStartCmd, proj.RawIntake,
		proj.CreatedAt, proj.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert project: %w", err)
	}
	return proj, nil
}

const projectColumns = `id, name, root_path, frontend_path, backend_path,
	frontend_start_cmd, backend_start_cmd, raw_intake, refined_intake,
	created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*journey.Project, error) {
	var p journey.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.RootPath, &p.FrontendPath, &p.BackendPath,
		&p.FrontendStartCmd, &p.BackendStartCmd, &p.RawIntake, &p.RefinedIntake,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProject retrieves a project by id.
func (s *Store) GetProject(id string) (*journey.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects, most recently created first.
func (s *Store) ListProjects() ([]journey.Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []journey.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan project: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateProject applies the non-nil fields of u to the project and
// returns the updated record.
func (s *Store) UpdateProject(id string, u UpdateProjectParams) (*journey.Project, error) {
	set := "updated_at = ?"
	args := []any{nowRFC3339()}

	apply := func(column string, v *string) {
		if v != nil {
			set += ", " + column + " = ?"
			args = append(args, *v)
		}
	}
	apply("name", u.Name)
	apply("root_path", u.RootPath)
	apply("frontend_path", u.FrontendPath)
	apply("backend_path", u.BackendPath)
	apply("frontend_start_cmd", u.FrontendStartCmd)
	apply("backend_start_cmd", u.BackendStartCmd)
	apply("raw_intake", u.RawIntake)
	apply("refined_intake", u.RefinedIntake)

	args = append(args, id)
	res, err := s.db.Exec(`UPDATE projects SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("store: project %q: %w", id, ErrNotFound)
	}
	return s.GetProject(id)
}

// DeleteProject removes the project row. Journeys belonging to the
// project are deleted by separate best-effort statements — there is no
// transaction spanning the cascade.
func (s *Store) DeleteProject(id string) error {
	_, _ = s.db.Exec(`DELETE FROM journeys WHERE project_id = ?`, id) // best-effort cascade

	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: project %q: %w", id, ErrNotFound)
	}
	return nil
}

// ProjectProposals reads the proposal list embedded on the project record.
func (s *Store) ProjectProposals(id string) ([]proposal.Proposal, error) {
	var raw string
	err := s.db.QueryRow(`SELECT proposed_journeys FROM projects WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: read project proposals: %w", err)
	}
	return decodeProposals(raw)
}

// SaveProjectProposals rewrites the whole proposal array on the project.
func (s *Store) SaveProjectProposals(id string, items []proposal.Proposal) error {
	raw, err := encodeProposals(items)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE projects SET proposed_journeys = ?, updated_at = ? WHERE id = ?`,
		raw, nowRFC3339(), id,
	)
	if err != nil {
		return fmt.Errorf("store: save project proposals: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: project %q: %w", id, ErrNotFound)
	}
	return nil
}

func decodeProposals(raw string) ([]proposal.Proposal, error) {
	if raw == "" {
		return nil, nil
	}
	var items []proposal.Proposal
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("store: parse proposal list: %w", err)
	}
	return items, nil
}

func encodeProposals(items []proposal.Proposal) (string, error) {
	if items == nil {
		items = []proposal.Proposal{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("store: marshal proposal list: %w", err)
	}
	return string(raw), nil
}
