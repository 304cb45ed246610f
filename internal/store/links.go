package store

import "fmt"

// Link is a typed directed edge between two journeys.
type Link struct {
	ID        int64  `json:"id"`
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	Type      string `json:"type"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AddLink creates a directed relationship between two journeys.
// Both endpoints must exist; the (from, to, type) triple is unique.
func (s *Store) AddLink(fromID, toID, linkType, note string) (*Link, error) {
	if fromID == toID {
		return nil, fmt.Errorf("store: a journey cannot link to itself")
	}
	if linkType == "" {
		linkType = "relates_to"
	}

	l := &Link{FromID: fromID, ToID: toID, Type: linkType, Note: note, CreatedAt: nowRFC3339()}
	res, err := s.db.Exec(
		`INSERT INTO journey_links (from_id, to_id, type, note, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		l.FromID, l.ToID, l.Type, l.Note, l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert link: %w", err)
	}
	l.ID, _ = res.LastInsertId()
	return l, nil
}

// LinksFor returns every link touching the journey, in either direction.
func (s *Store) LinksFor(journeyID string) ([]Link, error) {
	rows, err := s.db.Query(
		`SELECT id, from_id, to_id, type, note, created_at
		 FROM journey_links WHERE from_id = ? OR to_id = ?
		 ORDER BY created_at`, journeyID, journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.FromID, &l.ToID, &l.Type, &l.Note, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteLink removes a link by id.
func (s *Store) DeleteLink(id int64) error {
	res, err := s.db.Exec(`DELETE FROM journey_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: link %d: %w", id, ErrNotFound)
	}
	return nil
}
