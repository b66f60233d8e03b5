package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/solgrid/internal/config"
	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/entropy"
	"github.com/talgya/solgrid/internal/persistence"
	"github.com/talgya/solgrid/internal/world"
)

const testAdminKey = "s3cret"

type fixture struct {
	srv  *Server
	http *httptest.Server
	eng  *engine.Engine
	db   *persistence.DB
}

func newFixture(t *testing.T, mode string) *fixture {
	t.Helper()
	modes, err := config.Builtin()
	require.NoError(t, err)
	m, err := modes.Lookup(mode)
	require.NoError(t, err)
	eng, err := engine.NewEngine(m, world.NewAxialIndex(0), entropy.NewSeeded(7))
	require.NoError(t, err)

	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := NewServer(engine.NewSession(eng, db, db), 0, testAdminKey)
	srv.History = db
	srv.Cells = db
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{srv: srv, http: ts, eng: eng, db: db}
}

func (f *fixture) do(t *testing.T, method, path, body string, header ...string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, f.http.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	_ = json.Unmarshal(buf.Bytes(), &out)
	return resp, out
}

func (f *fixture) freeCell() world.CellID {
	st := f.srv.Session.Snapshot()
	for _, c := range f.eng.Zone.Cells() {
		if _, owned := st.Cells[c]; !owned && !f.eng.Zone.IsMonument(c) && !st.Teams["alice"].HasExplored(c) {
			return c
		}
	}
	return ""
}

func TestStatus(t *testing.T) {
	f := newFixture(t, "lite")
	resp, body := f.do(t, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "moon-demo-lite-v1", body["mode"])
	assert.Equal(t, float64(1), body["turn"])
	assert.Equal(t, "Sol 1, 00:00", body["sol_time"])
	assert.Equal(t, float64(61), body["zone_cells"])
	assert.ElementsMatch(t, []any{"explore", "claim", "list", "unlist", "buy"}, body["actions"])
}

func TestActionFlow(t *testing.T) {
	f := newFixture(t, "lite")
	cell := f.freeCell()

	resp, body := f.do(t, http.MethodPost, "/api/v1/action/explore", fmt.Sprintf(`{"player":"alice","cell_id":%q}`, cell))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, body["changed"])
	assert.Contains(t, body["event"], "explored")

	resp, body = f.do(t, http.MethodPost, "/api/v1/action/explore", fmt.Sprintf(`{"player":"alice","cell_id":%q}`, cell))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "cell already explored", body["error"])

	resp, _ = f.do(t, http.MethodPost, "/api/v1/action/claim", fmt.Sprintf(`{"player":"alice","cell_id":%q}`, cell))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/api/v1/action/list", fmt.Sprintf(`{"player":"bob","cell_id":%q,"price":40}`, cell))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["changed"])

	resp, _ = f.do(t, http.MethodPost, "/api/v1/action/list", fmt.Sprintf(`{"player":"alice","cell_id":%q,"price":40}`, cell))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = f.do(t, http.MethodPost, "/api/v1/action/buy", fmt.Sprintf(`{"player":"bob","cell_id":%q}`, cell))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := body["state"].(map[string]any)
	owned := state["cells"].(map[string]any)[string(cell)].(map[string]any)
	assert.Equal(t, "bob", owned["owner"])

	events, err := f.db.RecentEvents(f.eng.Mode.Key, 10)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, engine.ActionBuy, events[0].Action)

	snap, err := f.db.Load(f.eng.Mode.Key)
	require.NoError(t, err)
	live := f.srv.Session.Snapshot()
	stored := f.eng.Sanitize(snap)
	assert.Equal(t, live.Wallets, stored.Wallets)
	assert.Equal(t, live.Cells[cell].Owner, stored.Cells[cell].Owner)
}

func TestActionBadRequests(t *testing.T) {
	f := newFixture(t, "lite")

	resp, _ := f.do(t, http.MethodPost, "/api/v1/action/teleport", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/action/explore", `{"player":"alice","cell_id":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/action/list", `{"player":"alice","price":-3}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/action/explore", `{"player":"alice","bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/v1/action/mine", `{"player":"alice"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "action not available in this mode", body["error"])

	resp, _ = f.do(t, http.MethodGet, "/api/v1/action/explore", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestReset(t *testing.T) {
	f := newFixture(t, "lite")
	cell := f.freeCell()
	resp, _ := f.do(t, http.MethodPost, "/api/v1/action/explore", fmt.Sprintf(`{"player":"alice","cell_id":%q}`, cell))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/reset", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/v1/reset", "", "Authorization", "Bearer "+testAdminKey)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, 1, f.srv.Session.Snapshot().Turn)

	f.srv.AdminKey = ""
	resp, _ = f.do(t, http.MethodPost, "/api/v1/reset", "", "Authorization", "Bearer ")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestZoneGeoJSON(t *testing.T) {
	f := newFixture(t, "summit")
	resp, body := f.do(t, http.MethodGet, "/api/v1/zone", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "FeatureCollection", body["type"])

	features := body["features"].([]any)
	require.Len(t, features, f.eng.Zone.Len())

	monuments, landings := 0, 0
	for _, raw := range features {
		ft := raw.(map[string]any)
		geom := ft["geometry"].(map[string]any)
		assert.Equal(t, "Polygon", geom["type"])
		ring := geom["coordinates"].([]any)[0].([]any)
		assert.Len(t, ring, 7)
		assert.Equal(t, ring[0], ring[6])

		props := ft["properties"].(map[string]any)
		if props["monument"] == true {
			monuments++
		}
		if _, ok := props["landing_of"]; ok {
			landings++
			assert.Equal(t, props["landing_of"], props["owner"])
		}
	}
	assert.Equal(t, 1, monuments)
	assert.Equal(t, 4, landings)
}

func TestLocate(t *testing.T) {
	f := newFixture(t, "lite")
	anchor := f.eng.Mode.Zone[0]

	resp, body := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/locate?lat=%f&lon=%f", anchor.Lat, anchor.Lon), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["in_zone"])
	assert.Equal(t, string(f.eng.Zone.Cells()[0]), body["cell_id"])

	resp, body = f.do(t, http.MethodGet, "/api/v1/locate?lat=10&lon=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["in_zone"])

	resp, _ = f.do(t, http.MethodGet, "/api/v1/locate?lat=north", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLandmarks(t *testing.T) {
	f := newFixture(t, "expedition")
	resp, err := http.Get(f.http.URL + "/api/v1/landmarks")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 2)
	assert.Equal(t, "Eagle Crater", out[0]["name"])
	assert.NotEmpty(t, out[0]["cell_id"])
}

func TestCellMetadata(t *testing.T) {
	f := newFixture(t, "lite")

	resp, body := f.do(t, http.MethodGet, "/api/cell?cell_id=1,2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["cell"])

	resp, _ = f.do(t, http.MethodGet, "/api/cell", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/cell", `{"props":{"a":1}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/cell", `{"cell_id":"1,2","props":"flat"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/api/cell", `{"cell_id":"1,2","props":{"name":"Crater rim"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, body = f.do(t, http.MethodGet, "/api/cell?cell_id=1,2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cell := body["cell"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "Crater rim"}, cell["props"])
}

func TestEventsEndpoint(t *testing.T) {
	f := newFixture(t, "lite")
	cell := f.freeCell()
	resp, _ := f.do(t, http.MethodPost, "/api/v1/action/explore", fmt.Sprintf(`{"player":"alice","cell_id":%q}`, cell))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	r, err := http.Get(f.http.URL + "/api/v1/events?limit=5")
	require.NoError(t, err)
	defer r.Body.Close()
	var events []engine.Event
	require.NoError(t, json.NewDecoder(r.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Equal(t, "survey", events[0].Category)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/events?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, "lite")
	f.srv.limiter = NewRateLimiter(0.001, 2)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Post(ts.URL+"/api/v1/action/unlist", "application/json", strings.NewReader(`{"player":"alice","cell_id":"0,0"}`))
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.NotEqual(t, http.StatusTooManyRequests, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "10.0.0.7", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}

func TestPlayChannel(t *testing.T) {
	f := newFixture(t, "lite")
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/api/v1/play"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() map[string]any {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	welcome := read()
	assert.Equal(t, "welcome", welcome["type"])
	assert.Equal(t, "moon-demo-lite-v1", welcome["mode"])

	cell := f.freeCell()
	require.NoError(t, conn.WriteJSON(map[string]any{"action": "explore", "player": "alice", "cell_id": cell}))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		msg := read()
		seen[msg["type"].(string)] = true
		if msg["type"] == "result" {
			assert.Equal(t, float64(http.StatusOK), msg["status"])
		}
	}
	assert.True(t, seen["result"])
	assert.True(t, seen["event"])
}
