package autopilot

import (
	"fmt"
	"slices"

	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/world"
)

// Decision is the action picked for one cycle. An empty Action means wait.
type Decision struct {
	Action    engine.Action `json:"action"`
	Cell      world.CellID  `json:"cell_id,omitempty"`
	Price     int64         `json:"price,omitempty"`
	Rationale string        `json:"rationale"`
}

// Wait reports whether the decision is to do nothing this cycle.
func (d Decision) Wait() bool { return d.Action == "" }

// Decide picks one action for the position. Rules, in priority order:
// terraform when every input is at hand, build the first base, harvest when
// too drained to act, claim explored land, buy cheap offers (dearer ones
// when they complete monument control), mine toward the terraform inputs,
// explore, and finally sell surplus land when broke.
// Actions recently rejected for the same cell are skipped.
func Decide(snap *Snapshot, pos *Position, mem *Memory) Decision {
	if !pos.MyTurn {
		return Decision{Rationale: fmt.Sprintf("waiting for %s", snap.Status.ActivePlayer)}
	}
	if !pos.HasTeam {
		return Decision{Rationale: fmt.Sprintf("%s has no seat in this session", pos.Player)}
	}

	rules := snap.Status.Rules
	costs := rules.Costs
	team := pos.Team
	energy := team.Energy.Current
	reserve := rules.ClaimPrice

	can := func(a engine.Action, cell world.CellID) bool {
		return slices.Contains(snap.Status.Actions, a) && !mem.Rejected(a, cell)
	}
	pick := func(a engine.Action, cells []world.CellID) (world.CellID, bool) {
		for _, c := range cells {
			if can(a, c) {
				return c, true
			}
		}
		return "", false
	}

	if rules.Energy.Enabled {
		if !snap.Status.Completed && team.BaseLevel > 0 && energy >= costs.TerraformEnergy &&
			team.Inventory.Covers(costs.TerraformInputs) && can(engine.ActionTerraform, "") {
			return Decision{Action: engine.ActionTerraform, Rationale: "terraform inputs ready"}
		}
		if team.BaseLevel == 0 && pos.Balance >= costs.BuildTokens+reserve &&
			energy >= costs.BuildEnergy && can(engine.ActionBuildBase, "") {
			return Decision{Action: engine.ActionBuildBase, Rationale: "no base yet"}
		}
		if energy < min(costs.ExploreEnergy, costs.MineEnergy) && can(engine.ActionHarvest, "") {
			return Decision{Action: engine.ActionHarvest, Rationale: fmt.Sprintf("energy low (%d)", energy)}
		}
	}

	if pos.Balance >= rules.ClaimPrice+reserve {
		if c, ok := pick(engine.ActionClaim, pos.Claimable); ok {
			return Decision{Action: engine.ActionClaim, Cell: c, Rationale: "claim explored land"}
		}
	}

	// A ring cell that completes monument control is worth twice the usual ceiling.
	closing := rules.Monument != nil && pos.RingHeld+1 >= rules.Monument.Threshold
	for _, o := range pos.Offers {
		ceiling := 2 * rules.ClaimPrice
		if o.Ring && closing {
			ceiling *= 2
		}
		if o.Price <= ceiling && pos.Balance >= o.Price+reserve && can(engine.ActionBuy, o.Cell) {
			return Decision{Action: engine.ActionBuy, Cell: o.Cell,
				Rationale: fmt.Sprintf("%s offers %s for %d", o.Seller, o.Cell, o.Price)}
		}
	}

	if rules.Energy.Enabled && energy >= costs.MineEnergy && !team.Inventory.Covers(costs.TerraformInputs) {
		if c, ok := pick(engine.ActionMine, pos.Mineable); ok {
			return Decision{Action: engine.ActionMine, Cell: c, Rationale: "gather terraform inputs"}
		}
	}

	if !rules.Energy.Enabled || energy >= costs.ExploreEnergy {
		if c, ok := pick(engine.ActionExplore, pos.Unexplored); ok {
			return Decision{Action: engine.ActionExplore, Cell: c, Rationale: "survey new ground"}
		}
	}

	if pos.Balance < rules.ClaimPrice && len(pos.Owned) > 1 {
		for _, c := range pos.Owned {
			if c == team.LandingCell {
				continue
			}
			if oc := snap.State.Cells[c]; oc.Listed() {
				continue
			}
			if can(engine.ActionList, c) {
				return Decision{Action: engine.ActionList, Cell: c, Price: rules.DefaultListPrice,
					Rationale: "raise funds"}
			}
		}
	}

	return Decision{Rationale: "nothing worth doing"}
}
