package store

import (
	"database/sql"
	"fmt"
)

// Session records one editor or AI-tool working session on a journey.
type Session struct {
	ID        int64   `json:"id"`
	JourneyID string  `json:"journey_id"`
	Tool      string  `json:"tool"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

// StartSession records the start of a working session.
func (s *Store) StartSession(journeyID, tool string) (*Session, error) {
	sess := &Session{JourneyID: journeyID, Tool: tool, StartedAt: nowRFC3339()}
	res, err := s.db.Exec(
		`INSERT INTO journey_sessions (journey_id, tool, started_at) VALUES (?, ?, ?)`,
		sess.JourneyID, sess.Tool, sess.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert session: %w", err)
	}
	sess.ID, _ = res.LastInsertId()
	return sess, nil
}

// EndSession marks a session as finished with an optional summary.
func (s *Store) EndSession(id int64, summary string) error {
	res, err := s.db.Exec(
		`UPDATE journey_sessions SET ended_at = ?, summary = ? WHERE id = ?`,
		nowRFC3339(), nullableString(summary), id,
	)
	if err != nil {
		return fmt.Errorf("store: end session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: session %d: %w", id, ErrNotFound)
	}
	return nil
}

// SessionsFor returns the journey's sessions, most recent first.
func (s *Store) SessionsFor(journeyID string) ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, journey_id, tool, started_at, ended_at, summary
		 FROM journey_sessions WHERE journey_id = ?
		 ORDER BY started_at DESC, id DESC`, journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Session
	for rows.Next() {
		var sess Session
		var ended, summary sql.NullString
		if err := rows.Scan(&sess.ID, &sess.JourneyID, &sess.Tool, &sess.StartedAt, &ended, &summary); err != nil {
			return nil, err
		}
		if ended.Valid {
			sess.EndedAt = &ended.String
		}
		if summary.Valid {
			sess.Summary = &summary.String
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
