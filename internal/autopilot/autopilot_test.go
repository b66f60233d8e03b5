package autopilot

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/solgrid/internal/api"
	"github.com/talgya/solgrid/internal/config"
	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/entropy"
	"github.com/talgya/solgrid/internal/world"
)

func newEngine(t *testing.T, name string) *engine.Engine {
	t.Helper()
	modes, err := config.Builtin()
	require.NoError(t, err)
	mode, err := modes.Lookup(name)
	require.NoError(t, err)
	eng, err := engine.NewEngine(mode, world.NewAxialIndex(0), entropy.NewSeeded(3))
	require.NoError(t, err)
	eng.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return eng
}

// snapshotFor builds what the observer would collect from a server running eng.
func snapshotFor(eng *engine.Engine, st engine.State) *Snapshot {
	snap := &Snapshot{
		Status: Status{
			Mode:         st.Mode,
			Turn:         st.Turn,
			ActivePlayer: eng.ActivePlayer(st),
			Completed:    st.Completed(),
			Rules:        eng.Mode,
		},
		State: st,
	}
	for _, a := range engine.Actions {
		if eng.Available(a) {
			snap.Status.Actions = append(snap.Status.Actions, a)
		}
	}
	ring := map[world.CellID]bool{}
	for _, c := range eng.Zone.MonumentRing() {
		ring[c] = true
	}
	for _, c := range eng.Zone.Cells() {
		snap.Zone = append(snap.Zone, ZoneCell{
			ID:           c,
			Monument:     eng.Zone.IsMonument(c),
			MonumentRing: ring[c],
			Richness:     eng.Zone.Richness(c),
		})
	}
	return snap
}

func decide(eng *engine.Engine, st engine.State, p economy.PlayerID, mem *Memory) Decision {
	snap := snapshotFor(eng, st)
	return Decide(snap, Assess(snap, p), mem)
}

func TestDecideExploresThenClaims(t *testing.T) {
	eng := newEngine(t, "lite")
	st := eng.NewState()

	d := decide(eng, st, "alice", nil)
	require.Equal(t, engine.ActionExplore, d.Action)
	require.NotEmpty(t, d.Cell)

	res, err := eng.Apply(st, engine.Command{Action: d.Action, Player: "alice", Cell: d.Cell})
	require.NoError(t, err)

	next := decide(eng, res.State, "alice", nil)
	assert.Equal(t, engine.ActionClaim, next.Action)
	assert.Equal(t, d.Cell, next.Cell)
}

func TestAssessOrdersCandidates(t *testing.T) {
	eng := newEngine(t, "summit")
	st := eng.NewState()
	snap := snapshotFor(eng, st)
	pos := Assess(snap, "alice")

	require.NotEmpty(t, pos.Unexplored)
	ring := map[world.CellID]bool{}
	for _, c := range eng.Zone.MonumentRing() {
		ring[c] = true
	}
	for i := 0; i < 6; i++ {
		assert.True(t, ring[pos.Unexplored[i]], "monument ring cells come first")
	}
	for _, c := range pos.Unexplored {
		assert.False(t, eng.Zone.IsMonument(c))
	}
	assert.Equal(t, []world.CellID{st.Teams["alice"].LandingCell}, pos.Owned)
	assert.Equal(t, "BUILD", pos.Phase)
}

func TestDecideWaitsForTurn(t *testing.T) {
	eng := newEngine(t, "summit")
	st := eng.NewState()
	require.Equal(t, economy.PlayerID("alice"), eng.ActivePlayer(st))

	d := decide(eng, st, "bob", nil)
	assert.True(t, d.Wait())
	assert.Contains(t, d.Rationale, "alice")

	d = decide(eng, st, "mallory", nil)
	assert.True(t, d.Wait())
}

func TestDecideBuildsFirstBase(t *testing.T) {
	eng := newEngine(t, "expedition")
	st := eng.NewState()
	d := decide(eng, st, "alice", nil)
	assert.Equal(t, engine.ActionBuildBase, d.Action)
}

func TestDecideHarvestsWhenDrained(t *testing.T) {
	eng := newEngine(t, "expedition")
	st := eng.NewState()
	team := st.Teams["alice"]
	team.BaseLevel = 1
	team.Energy.Current = 5
	st.Teams["alice"] = team

	d := decide(eng, st, "alice", nil)
	assert.Equal(t, engine.ActionHarvest, d.Action)
}

func TestDecideTerraformsWhenReady(t *testing.T) {
	eng := newEngine(t, "expedition")
	st := eng.NewState()
	team := st.Teams["alice"]
	team.BaseLevel = 1
	team.Inventory = economy.Inventory{Ore: 25, Ice: 15, Artifact: 1}
	st.Teams["alice"] = team

	d := decide(eng, st, "alice", nil)
	assert.Equal(t, engine.ActionTerraform, d.Action)

	_, err := eng.Apply(st, engine.Command{Action: d.Action, Player: "alice"})
	assert.NoError(t, err)
}

func TestDecideBuysCheapOffer(t *testing.T) {
	eng := newEngine(t, "lite")
	st := eng.NewState()

	var cell world.CellID
	for _, c := range eng.Zone.Cells() {
		cell = c
		break
	}
	res, err := eng.Apply(st, engine.Command{Action: engine.ActionExplore, Player: "bob", Cell: cell})
	require.NoError(t, err)
	res, err = eng.Apply(res.State, engine.Command{Action: engine.ActionClaim, Player: "bob", Cell: cell})
	require.NoError(t, err)
	res, err = eng.Apply(res.State, engine.Command{Action: engine.ActionList, Player: "bob", Cell: cell, Price: 25})
	require.NoError(t, err)

	d := decide(eng, res.State, "alice", nil)
	assert.Equal(t, engine.ActionBuy, d.Action)
	assert.Equal(t, cell, d.Cell)
}

func TestDecideBuysRingCellToTakeMonument(t *testing.T) {
	eng := newEngine(t, "summit")
	st := eng.NewState()
	ring := eng.Zone.MonumentRing()

	team := st.Teams["alice"]
	team.BaseLevel = 1
	st.Teams["alice"] = team
	for _, c := range ring[:2] {
		st.Cells[c] = engine.OwnedCell{Owner: "alice"}
	}
	price := int64(150)
	st.Cells[ring[3]] = engine.OwnedCell{Owner: "bob", ListedPrice: &price}

	d := decide(eng, st, "alice", nil)
	assert.NotEqual(t, engine.ActionBuy, d.Action, "too dear with two ring cells")

	st.Cells[ring[2]] = engine.OwnedCell{Owner: "alice"}
	snap := snapshotFor(eng, st)
	pos := Assess(snap, "alice")
	assert.Equal(t, 3, pos.RingHeld)

	d = Decide(snap, pos, nil)
	assert.Equal(t, engine.ActionBuy, d.Action)
	assert.Equal(t, ring[3], d.Cell)

	res, err := eng.Apply(st, engine.Command{Action: d.Action, Player: "alice", Cell: d.Cell})
	require.NoError(t, err)
	assert.Equal(t, economy.PlayerID("alice"), res.State.MonumentController)
}

func TestDecideSkipsRejected(t *testing.T) {
	eng := newEngine(t, "lite")
	st := eng.NewState()

	first := decide(eng, st, "alice", nil)
	mem := LoadMemory("")
	mem.Record(CycleRecord{Action: first.Action, Cell: first.Cell, Rejection: "cell already explored"})

	second := decide(eng, st, "alice", mem)
	assert.Equal(t, engine.ActionExplore, second.Action)
	assert.NotEqual(t, first.Cell, second.Cell)

	mem.Record(CycleRecord{Action: engine.ActionClaim, Cell: "9,9"})
	assert.False(t, mem.Rejected(first.Action, first.Cell))
}

func TestMemoryPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	mem := LoadMemory(path)
	for i := 0; i < maxRecords+5; i++ {
		mem.Record(CycleRecord{Turn: i, Action: engine.ActionExplore})
	}
	require.NoError(t, mem.Save())

	loaded := LoadMemory(path)
	require.Len(t, loaded.Records, maxRecords)
	assert.Equal(t, 5, loaded.Records[0].Turn)
}

func TestPilotCycles(t *testing.T) {
	eng := newEngine(t, "lite")
	sess := engine.NewSession(eng, nil, nil)
	ts := httptest.NewServer(api.NewServer(sess, 0, "").Handler())
	defer ts.Close()

	ctx := context.Background()
	require.NoError(t, WaitForAPI(ctx, ts.URL))

	pilot := New(ts.URL, "bob", "")
	rec, err := pilot.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.ActionExplore, rec.Action)
	assert.Empty(t, rec.Rejection)
	assert.True(t, sess.Snapshot().Teams["bob"].HasExplored(rec.Cell))

	rec, err = pilot.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.ActionClaim, rec.Action)
	assert.Equal(t, economy.PlayerID("bob"), sess.Snapshot().Cells[rec.Cell].Owner)
	assert.Len(t, pilot.Memory.Records, 2)
}
