package store

import (
	"fmt"
	"strings"

	"github.com/devorch/devorch/internal/journey"
)

// SearchJourneys runs a full-text search over journey names and
// descriptions. The query is tokenized and each token quoted before it
// reaches FTS5, so user input cannot inject match syntax (and an
// all-punctuation query cannot crash the parser).
func (s *Store) SearchJourneys(query string, limit int) ([]journey.Journey, error) {
	match := sanitizeFTSQuery(query)
	if match == "" {
		return nil, fmt.Errorf("store: search query is empty")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+prefixedJourneyColumns("j")+`
		 FROM journeys_fts f
		 JOIN journeys j ON j.id = f.id
		 WHERE journeys_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, match, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: search journeys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []journey.Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan search result: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// sanitizeFTSQuery quotes each whitespace-separated token so FTS5 treats
// the input as plain terms. Embedded double quotes are stripped.
func sanitizeFTSQuery(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " ")
}

// prefixedJourneyColumns qualifies the journey column list with a table
// alias for joined queries.
func prefixedJourneyColumns(alias string) string {
	cols := strings.Split(journeyColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
