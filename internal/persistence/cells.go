package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CellRecord is free-form metadata attached to one cell.
type CellRecord struct {
	CellID    string          `json:"cell_id"`
	Props     json.RawMessage `json:"props"`
	UpdatedAt string          `json:"updated_at"`
}

// GetCell returns the metadata stored for cellID, or nil when it has none.
func (db *DB) GetCell(cellID string) (*CellRecord, error) {
	var row struct {
		CellID    string `db:"cell_id"`
		Props     string `db:"props"`
		UpdatedAt string `db:"updated_at"`
	}
	err := db.conn.Get(&row, "SELECT cell_id, props, updated_at FROM cells WHERE cell_id = ?", cellID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cell %s: %w", cellID, err)
	}
	return &CellRecord{
		CellID:    row.CellID,
		Props:     json.RawMessage(row.Props),
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// UpsertCell replaces the metadata of cellID. Last write wins.
func (db *DB) UpsertCell(cellID string, props json.RawMessage) (*CellRecord, error) {
	rec := &CellRecord{
		CellID:    cellID,
		Props:     props,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err := db.conn.Exec(
		`INSERT INTO cells (cell_id, props, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(cell_id) DO UPDATE SET props = excluded.props, updated_at = excluded.updated_at`,
		rec.CellID, string(rec.Props), rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert cell %s: %w", cellID, err)
	}
	return rec, nil
}
