package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadRepo lê o catálogo de partidas da tabela odds_current
type ReadRepo struct {
	DB *sql.DB
}

func NewReadRepo(db *sql.DB) *ReadRepo { return &ReadRepo{DB: db} }

// ListMatches retorna as partidas com odds 1x2, ordenadas por event_id
func (r *ReadRepo) ListMatches(ctx context.Context) ([]Match, error) {
	const q = `
		SELECT event_id, home_team, away_team, home_odd, draw_odd, away_odd, version
		FROM odds_current
		WHERE market = $1
		ORDER BY event_id;
	`
	rows, err := r.DB.QueryContext(ctx, q, Market1x2)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.EventID, &m.HomeTeam, &m.AwayTeam, &m.HomeOdd, &m.DrawOdd, &m.AwayOdd, &m.Version); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
