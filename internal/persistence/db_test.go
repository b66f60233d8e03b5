package persistence

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/solgrid/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "solgrid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)

	blob, err := db.Load("mars-grid-trade-v1")
	require.NoError(t, err)
	assert.Nil(t, blob)

	state := []byte(`{"mode":"mars-grid-trade-v1","turn":12,"wallets":{"alice":940}}`)
	require.NoError(t, db.Save("mars-grid-trade-v1", state))
	got, err := db.Load("mars-grid-trade-v1")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	newer := []byte(`{"turn":13}`)
	require.NoError(t, db.Save("mars-grid-trade-v1", newer))
	got, err = db.Load("mars-grid-trade-v1")
	require.NoError(t, err)
	assert.Equal(t, newer, got)

	infos, err := db.Snapshots()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, int64(len(newer)), infos[0].RawSize)
	assert.Equal(t, digest(newer), infos[0].Digest)
}

func TestSnapshotCorruptionLoadsEmpty(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Save("k", []byte(`{"turn":3}`)))

	_, err := db.conn.Exec("UPDATE snapshots SET digest = 'deadbeef' WHERE key = 'k'")
	require.NoError(t, err)
	got, err := db.Load("k")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = db.conn.Exec("UPDATE snapshots SET blob = ? WHERE key = 'k'", []byte("not zstd"))
	require.NoError(t, err)
	got, err = db.Load("k")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.DeleteSnapshot("k"))
	infos, err := db.Snapshots()
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestPruneSnapshots(t *testing.T) {
	db := openTestDB(t)
	for _, key := range []string{"moon-demo-lite-v0", "moon-demo-lite-v1", "summit-v1"} {
		require.NoError(t, db.Save(key, []byte(`{}`)))
	}

	pruned, err := db.PruneSnapshots(map[string]bool{"moon-demo-lite-v1": true, "summit-v1": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"moon-demo-lite-v0"}, pruned)

	infos, err := db.Snapshots()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "moon-demo-lite-v1", infos[0].Key)

	pruned, err = db.PruneSnapshots(map[string]bool{"moon-demo-lite-v1": true, "summit-v1": true})
	require.NoError(t, err)
	assert.Empty(t, pruned)
}

func TestRecentEventsRejectsCorruptTimestamp(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.RecordEvent(engine.Event{
		ID:   "ev-1",
		Mode: "lite",
		Turn: 1,
		Time: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	}))
	_, err := db.conn.Exec("UPDATE events SET created_at = 'yesterday' WHERE id = 'ev-1'")
	require.NoError(t, err)

	_, err = db.RecentEvents("lite", 10)
	assert.ErrorContains(t, err, "ev-1")
}

func TestEvents(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, desc := range []string{"Alice explored 1,2.", "Alice claimed 1,2.", "Bob bought 1,2."} {
		require.NoError(t, db.RecordEvent(engine.Event{
			ID:          string(rune('a'+i)) + "-id",
			Mode:        "lite",
			Turn:        i + 2,
			Player:      "alice",
			Action:      engine.ActionExplore,
			Description: desc,
			Category:    "market",
			Time:        base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, db.RecordEvent(engine.Event{ID: "other", Mode: "summit", Description: "x", Time: base}))

	events, err := db.RecentEvents("lite", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Bob bought 1,2.", events[0].Description)
	assert.Equal(t, 4, events[0].Turn)
	assert.Equal(t, base.Add(2*time.Minute), events[0].Time)
	assert.Equal(t, "Alice claimed 1,2.", events[1].Description)

	n, err := db.CountEvents("lite")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Error(t, db.RecordEvent(engine.Event{ID: "other", Mode: "summit", Time: base}))
}

func TestCellMetadata(t *testing.T) {
	db := openTestDB(t)

	rec, err := db.GetCell("872a1070bffffff")
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = db.UpsertCell("872a1070bffffff", json.RawMessage(`{"name":"Ridge"}`))
	require.NoError(t, err)
	saved, err := db.UpsertCell("872a1070bffffff", json.RawMessage(`{"name":"Ridge","note":"ice"}`))
	require.NoError(t, err)

	rec, err = db.GetCell("872a1070bffffff")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "872a1070bffffff", rec.CellID)
	assert.JSONEq(t, `{"name":"Ridge","note":"ice"}`, string(rec.Props))
	assert.Equal(t, saved.UpdatedAt, rec.UpdatedAt)
}
