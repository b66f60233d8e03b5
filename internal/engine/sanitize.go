package engine

import (
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/world"
)

// maxAmount bounds any sanitized count so float-to-int conversion stays exact.
const maxAmount = 1 << 53

// Sanitize turns arbitrary persisted bytes into a valid state. It never
// fails: unreadable input yields a fresh state and every field is clamped,
// defaulted, or dropped independently. Sanitize(Encode(Sanitize(x))) equals
// Sanitize(x).
func (e *Engine) Sanitize(raw []byte) State {
	fallback := e.NewState()
	if len(raw) == 0 {
		return fallback
	}
	var src map[string]any
	if err := json.Unmarshal(raw, &src); err != nil || src == nil {
		slog.Warn("snapshot unreadable, starting fresh", "mode", e.Mode.Key, "error", err)
		return fallback
	}
	return e.sanitize(src, fallback)
}

func (e *Engine) sanitize(src map[string]any, fallback State) State {
	now := e.now()
	s := State{
		Mode:    e.Mode.Key,
		Wallets: make(economy.Wallets, len(e.Mode.Players)),
		Cells:   make(map[world.CellID]OwnedCell),
		Teams:   make(map[economy.PlayerID]Team, len(e.Mode.Players)),
	}

	wallets := object(src["wallets"])
	for _, p := range e.Mode.Players {
		s.Wallets[p.ID] = int64(count(wallets[string(p.ID)], float64(e.Mode.InitialTokens)))
	}

	for id, raw := range object(src["cells"]) {
		cell := world.CellID(id)
		if !e.Zone.Contains(cell) || e.Zone.IsMonument(cell) {
			continue
		}
		row := object(raw)
		owner, _ := row["owner"].(string)
		if e.Mode.PlayerIndex(economy.PlayerID(owner)) < 0 {
			continue
		}
		oc := OwnedCell{Owner: economy.PlayerID(owner), UpdatedAt: now}
		if price, ok := finite(row["listed_price"]); ok {
			v := max(e.Mode.MinListPrice, int64(math.Max(0, math.Min(math.Floor(price), maxAmount))))
			oc.ListedPrice = &v
		}
		if ts, ok := row["updated_at"].(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				oc.UpdatedAt = t.UTC()
			}
		}
		s.Cells[cell] = oc
	}

	teams := object(src["teams"])
	taken := make(map[world.CellID]bool)
	for _, p := range e.Mode.Players {
		team := e.sanitizeTeam(object(teams[string(p.ID)]), fallback.Teams[p.ID], taken)
		if team.LandingCell != "" {
			taken[team.LandingCell] = true
			if _, ok := s.Cells[team.LandingCell]; !ok {
				s.Cells[team.LandingCell] = OwnedCell{Owner: p.ID, UpdatedAt: now}
			}
		}
		s.Teams[p.ID] = team
	}

	s.Turn = int(math.Max(1, count(src["turn"], 1)))
	s.ElapsedHours = int(count(src["elapsed_hours"], 0))
	if idx, ok := finite(src["active_index"]); ok && idx >= 0 && idx < float64(len(e.Mode.Players)) {
		s.ActiveIndex = int(idx)
	}
	if v, ok := finite(src["terraform_progress"]); ok {
		s.TerraformProgress = clampProgress(v)
	}
	s.LastEvent = fallback.LastEvent
	if ev, ok := src["last_event"].(string); ok && ev != "" {
		s.LastEvent = ev
	}
	s.MonumentController = e.monumentController(s.Cells)
	return s
}

// sanitizeTeam repairs one team. taken holds landings already assigned to
// earlier players; a colliding landing moves to a free perimeter cell.
func (e *Engine) sanitizeTeam(row map[string]any, fb Team, taken map[world.CellID]bool) Team {
	t := Team{
		LanderName: fb.LanderName,
		RoverName:  fb.RoverName,
	}
	if v, ok := row["lander_name"].(string); ok && v != "" {
		t.LanderName = v
	}
	if v, ok := row["rover_name"].(string); ok && v != "" {
		t.RoverName = v
	}

	if e.Mode.Landings {
		t.LandingCell = fb.LandingCell
		if v, ok := row["landing_cell"].(string); ok && e.validLanding(world.CellID(v)) {
			t.LandingCell = world.CellID(v)
		}
		if taken[t.LandingCell] {
			t.LandingCell = e.freeLanding(taken)
		}
	}

	if e.Mode.Energy.Enabled {
		t.BaseLevel = int(count(row["base_level"], float64(fb.BaseLevel)))
		t.SolarPanels = int(count(row["solar_panels"], float64(fb.SolarPanels)))

		energy := object(row["energy"])
		capacity := int(math.Max(float64(e.Mode.Energy.MinCapacity), count(energy["capacity"], float64(fb.Energy.Capacity))))
		current := min(capacity, int(count(energy["current"], float64(fb.Energy.Current))))
		t.Energy = economy.Energy{Current: current, Capacity: capacity}

		inv := object(row["inventory"])
		t.Inventory = economy.Inventory{
			Ore:      int(count(inv["ore"], 0)),
			Ice:      int(count(inv["ice"], 0)),
			Artifact: int(count(inv["artifact"], 0)),
			RareItem: int(count(inv["rare_item"], 0)),
		}
	}

	t.Equipment = append([]string{}, fb.Equipment...)
	if list, ok := row["equipment"].([]any); ok {
		if names, ok := stringList(list); ok {
			t.Equipment = names
		}
	}

	t.Explored = make([]world.CellID, 0)
	seen := make(map[world.CellID]bool)
	if list, ok := row["explored"].([]any); ok {
		for _, v := range list {
			id, ok := v.(string)
			c := world.CellID(id)
			if !ok || seen[c] || !e.Zone.Contains(c) {
				continue
			}
			seen[c] = true
			t.Explored = append(t.Explored, c)
		}
	}
	if t.LandingCell != "" && !seen[t.LandingCell] {
		t.Explored = append([]world.CellID{t.LandingCell}, t.Explored...)
	}
	return t
}

func (e *Engine) validLanding(c world.CellID) bool {
	return c != "" && e.Zone.Contains(c) && !e.Zone.IsMonument(c)
}

// freeLanding returns the first perimeter cell not yet taken.
func (e *Engine) freeLanding(taken map[world.CellID]bool) world.CellID {
	for _, c := range e.Zone.Perimeter() {
		if !taken[c] {
			return c
		}
	}
	return ""
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func finite(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// count reads a non-negative whole number, floored and bounded, or def.
func count(v any, def float64) float64 {
	f, ok := finite(v)
	if !ok {
		return def
	}
	return math.Min(maxAmount, math.Max(0, math.Floor(f)))
}

func stringList(list []any) ([]string, bool) {
	out := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
