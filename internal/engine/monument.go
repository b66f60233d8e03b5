package engine

import (
	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/world"
)

// monumentController returns the player holding at least the threshold of
// the six cells around the monument, or "" when nobody does. A tie at the
// top count means no controller.
func (e *Engine) monumentController(cells map[world.CellID]OwnedCell) economy.PlayerID {
	rule := e.Mode.Monument
	if rule == nil {
		return ""
	}

	counts := make(map[economy.PlayerID]int)
	for _, c := range e.Zone.MonumentRing() {
		if oc, ok := cells[c]; ok {
			counts[oc.Owner]++
		}
	}

	var best economy.PlayerID
	bestCount, tied := 0, false
	for _, p := range e.Mode.Players {
		n := counts[p.ID]
		switch {
		case n > bestCount:
			best, bestCount, tied = p.ID, n, false
		case n == bestCount && n > 0:
			tied = true
		}
	}
	if tied || bestCount < rule.Threshold {
		return ""
	}
	return best
}

// MonumentHoldings counts each player's cells around the monument.
func (e *Engine) MonumentHoldings(s State) map[economy.PlayerID]int {
	out := make(map[economy.PlayerID]int, len(e.Mode.Players))
	for _, p := range e.Mode.Players {
		out[p.ID] = 0
	}
	for _, c := range e.Zone.MonumentRing() {
		if oc, ok := s.Cells[c]; ok {
			out[oc.Owner]++
		}
	}
	return out
}
