package store

import (
	"database/sql"
	"fmt"
)

// --- Auxiliary per-journey documents ---
//
// Intakes, specs and plans are versioned append-only: a new row per
// revision, version numbers assigned by the store. Checklists are
// ordinary mutable rows. None of these enforce cross-entity consistency
// beyond their journey foreign key.

// Intake is one version of a journey's intake document: the raw text
// the user captured and an optional AI-refined rendition.
type Intake struct {
	ID        int64  `json:"id"`
	JourneyID string `json:"journey_id"`
	Version   int    `json:"version"`
	Raw       string `json:"raw"`
	Refined   string `json:"refined,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Doc is one version of a journey's spec or plan document.
type Doc struct {
	ID        int64  `json:"id"`
	JourneyID string `json:"journey_id"`
	Version   int    `json:"version"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// Checklist is a named list of typed items attached to a journey.
type Checklist struct {
	ID        int64           `json:"id"`
	JourneyID string          `json:"journey_id"`
	Name      string          `json:"name"`
	CreatedAt string          `json:"created_at"`
	Items     []ChecklistItem `json:"items,omitempty"`
}

// ChecklistItem is a single entry in a checklist.
type ChecklistItem struct {
	ID          int64  `json:"id"`
	ChecklistID int64  `json:"checklist_id"`
	Kind        string `json:"kind"`
	Text        string `json:"text"`
	Done        bool   `json:"done"`
	SortOrder   int    `json:"sort_order"`
}

// nextVersion returns 1 + the highest version in the given table for
// the journey.
func (s *Store) nextVersion(table, journeyID string) (int, error) {
	var v sql.NullInt64
	err := s.db.QueryRow(
		`SELECT MAX(version) FROM `+table+` WHERE journey_id = ?`, journeyID,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("store: next version for %s: %w", table, err)
	}
	return int(v.Int64) + 1, nil
}

// AddIntake appends a new intake version for the journey.
func (s *Store) AddIntake(journeyID, raw, refined string) (*Intake, error) {
	version, err := s.nextVersion("journey_intakes", journeyID)
	if err != nil {
		return nil, err
	}

	in := &Intake{
		JourneyID: journeyID,
		Version:   version,
		Raw:       raw,
		Refined:   refined,
		CreatedAt: nowRFC3339(),
	}
	res, err := s.db.Exec(
		`INSERT INTO journey_intakes (journey_id, version, raw, refined, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		in.JourneyID, in.Version, in.Raw, in.Refined, in.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert intake: %w", err)
	}
	in.ID, _ = res.LastInsertId()
	return in, nil
}

// LatestIntake returns the most recent intake version for the journey,
// or ErrNotFound when none exists.
func (s *Store) LatestIntake(journeyID string) (*Intake, error) {
	var in Intake
	err := s.db.QueryRow(
		`SELECT id, journey_id, version, raw, refined, created_at
		 FROM journey_intakes WHERE journey_id = ?
		 ORDER BY version DESC LIMIT 1`, journeyID,
	).Scan(&in.ID, &in.JourneyID, &in.Version, &in.Raw, &in.Refined, &in.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: intake for %q: %w", journeyID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest intake: %w", err)
	}
	return &in, nil
}

// addDoc appends a new versioned document row in the given table.
func (s *Store) addDoc(table, journeyID, content string) (*Doc, error) {
	version, err := s.nextVersion(table, journeyID)
	if err != nil {
		return nil, err
	}

	d := &Doc{
		JourneyID: journeyID,
		Version:   version,
		Content:   content,
		CreatedAt: nowRFC3339(),
	}
	res, err := s.db.Exec(
		`INSERT INTO `+table+` (journey_id, version, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		d.JourneyID, d.Version, d.Content, d.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert into %s: %w", table, err)
	}
	d.ID, _ = res.LastInsertId()
	return d, nil
}

func (s *Store) latestDoc(table, journeyID string) (*Doc, error) {
	var d Doc
	err := s.db.QueryRow(
		`SELECT id, journey_id, version, content, created_at
		 FROM `+table+` WHERE journey_id = ?
		 ORDER BY version DESC LIMIT 1`, journeyID,
	).Scan(&d.ID, &d.JourneyID, &d.Version, &d.Content, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: document for %q: %w", journeyID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest from %s: %w", table, err)
	}
	return &d, nil
}

// AddSpec appends a new markdown spec version for the journey.
func (s *Store) AddSpec(journeyID, content string) (*Doc, error) {
	return s.addDoc("journey_specs", journeyID, content)
}

// LatestSpec returns the most recent spec version.
func (s *Store) LatestSpec(journeyID string) (*Doc, error) {
	return s.latestDoc("journey_specs", journeyID)
}

// AddPlan appends a new structured plan version (JSON) for the journey.
func (s *Store) AddPlan(journeyID, content string) (*Doc, error) {
	return s.addDoc("journey_plans", journeyID, content)
}

// LatestPlan returns the most recent plan version.
func (s *Store) LatestPlan(journeyID string) (*Doc, error) {
	return s.latestDoc("journey_plans", journeyID)
}

// CreateChecklist adds a named checklist to the journey.
func (s *Store) CreateChecklist(journeyID, name string) (*Checklist, error) {
	c := &Checklist{JourneyID: journeyID, Name: name, CreatedAt: nowRFC3339()}
	res, err := s.db.Exec(
		`INSERT INTO journey_checklists (journey_id, name, created_at) VALUES (?, ?, ?)`,
		c.JourneyID, c.Name, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert checklist: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	return c, nil
}

// AddChecklistItem appends an item to a checklist; sort_order is the
// current item count.
func (s *Store) AddChecklistItem(checklistID int64, kind, text string) (*ChecklistItem, error) {
	var count int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM journey_checklist_items WHERE checklist_id = ?`, checklistID,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("store: count checklist items: %w", err)
	}

	item := &ChecklistItem{ChecklistID: checklistID, Kind: kind, Text: text, SortOrder: count}
	res, err := s.db.Exec(
		`INSERT INTO journey_checklist_items (checklist_id, kind, text, done, sort_order)
		 VALUES (?, ?, ?, 0, ?)`,
		item.ChecklistID, item.Kind, item.Text, item.SortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert checklist item: %w", err)
	}
	item.ID, _ = res.LastInsertId()
	return item, nil
}

// SetChecklistItemDone flips the done flag on an item.
func (s *Store) SetChecklistItemDone(itemID int64, done bool) error {
	d := 0
	if done {
		d = 1
	}
	res, err := s.db.Exec(`UPDATE journey_checklist_items SET done = ? WHERE id = ?`, d, itemID)
	if err != nil {
		return fmt.Errorf("store: update checklist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: checklist item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

// Checklists returns every checklist for the journey with items nested
// in sort order.
func (s *Store) Checklists(journeyID string) ([]Checklist, error) {
	rows, err := s.db.Query(
		`SELECT id, journey_id, name, created_at
		 FROM journey_checklists WHERE journey_id = ? ORDER BY created_at`, journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list checklists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lists []Checklist
	for rows.Next() {
		var c Checklist
		if err := rows.Scan(&c.ID, &c.JourneyID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		items, err := s.db.Query(
			`SELECT id, checklist_id, kind, text, done, sort_order
			 FROM journey_checklist_items WHERE checklist_id = ? ORDER BY sort_order`, lists[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("store: list checklist items: %w", err)
		}
		for items.Next() {
			var it ChecklistItem
			var done int
			if err := items.Scan(&it.ID, &it.ChecklistID, &it.Kind, &it.Text, &done, &it.SortOrder); err != nil {
				_ = items.Close()
				return nil, err
			}
			it.Done = done != 0
			lists[i].Items = append(lists[i].Items, it)
		}
		if err := items.Err(); err != nil {
			_ = items.Close()
			return nil, err
		}
		_ = items.Close()
	}
	return lists, nil
}
