package persistence

import (
	"fmt"
	"time"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/engine"
)

type eventRow struct {
	ID          string `db:"id"`
	Mode        string `db:"mode"`
	Turn        int    `db:"turn"`
	Player      string `db:"player"`
	Action      string `db:"action"`
	Description string `db:"description"`
	Category    string `db:"category"`
	CreatedAt   string `db:"created_at"`
}

// RecordEvent appends one accepted action to the log.
func (db *DB) RecordEvent(ev engine.Event) error {
	_, err := db.conn.NamedExec(`INSERT INTO events
		(id, mode, turn, player, action, description, category, created_at)
		VALUES (:id, :mode, :turn, :player, :action, :description, :category, :created_at)`,
		eventRow{
			ID:          ev.ID,
			Mode:        ev.Mode,
			Turn:        ev.Turn,
			Player:      string(ev.Player),
			Action:      string(ev.Action),
			Description: ev.Description,
			Category:    ev.Category,
			CreatedAt:   ev.Time.UTC().Format(time.RFC3339Nano),
		})
	if err != nil {
		return fmt.Errorf("insert event %s: %w", ev.ID, err)
	}
	return nil
}

// RecentEvents returns up to limit events for mode, newest first.
func (db *DB) RecentEvents(mode string, limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		`SELECT id, mode, turn, player, action, description, category, created_at
		 FROM events WHERE mode = ? ORDER BY seq DESC LIMIT ?`,
		mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select events for %s: %w", mode, err)
	}

	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		t, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("event %s timestamp: %w", r.ID, err)
		}
		events = append(events, engine.Event{
			ID:          r.ID,
			Mode:        r.Mode,
			Turn:        r.Turn,
			Player:      economy.PlayerID(r.Player),
			Action:      engine.Action(r.Action),
			Description: r.Description,
			Category:    r.Category,
			Time:        t,
		})
	}
	return events, nil
}

// CountEvents returns the number of logged events for mode.
func (db *DB) CountEvents(mode string) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM events WHERE mode = ?", mode)
	return n, err
}
