package engine

import (
	"fmt"
	"strings"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/entropy"
	"github.com/talgya/solgrid/internal/world"
)

// Explore surveys a zone cell for the player and pays out a randomized yield.
func (e *Engine) Explore(s State, p economy.PlayerID, cell world.CellID) (Result, error) {
	if err := e.checkActor(s, p); err != nil {
		return unchanged(s), err
	}
	if cell == "" {
		return unchanged(s), ErrNoCell
	}
	if !e.Zone.Contains(cell) {
		return unchanged(s), ErrOutsideZone
	}
	team := s.Teams[p]
	if team.HasExplored(cell) {
		return unchanged(s), ErrAlreadyExplored
	}
	if e.Mode.Energy.Enabled && team.Energy.Current < e.Mode.Costs.ExploreEnergy {
		return unchanged(s), ErrInsufficientEnergy
	}

	next := s.Clone()
	team = next.Teams[p]
	y := e.Mode.Explore
	factor := e.daylightFactor(s, cell)

	found := e.draw(y, factor)
	tokens := entropy.IntRange(e.Rand, y.Tokens.Min, y.Tokens.Max) + found.RareItem*y.RareTokenBonus
	tokens = scale(tokens, factor)

	if e.Mode.Energy.Enabled {
		team.Energy = team.Energy.Spend(e.Mode.Costs.ExploreEnergy)
	}
	team.Inventory = team.Inventory.Add(found)
	team.Explored = append(team.Explored, cell)
	next.Teams[p] = team
	next.Wallets.Credit(p, int64(tokens))
	next.TerraformProgress = clampProgress(next.TerraformProgress + float64(found.Artifact)*y.ArtifactProgress)

	event := fmt.Sprintf("%s explored %s (+%d %s%s).",
		e.label(p), cell, tokens, e.Mode.Currency, describeFinds(found))
	return e.advance(&next, event), nil
}

// draw rolls the resource part of a yield: ore, ice, then the artifact and
// rare-item chances.
func (e *Engine) draw(y economy.Yield, factor float64) economy.Inventory {
	var inv economy.Inventory
	inv.Ore = scale(entropy.IntRange(e.Rand, y.Ore.Min, y.Ore.Max), factor)
	inv.Ice = scale(entropy.IntRange(e.Rand, y.Ice.Min, y.Ice.Max), factor)
	if entropy.Chance(e.Rand, y.ArtifactChance) {
		inv.Artifact = 1
	}
	if entropy.Chance(e.Rand, y.RareChance) {
		inv.RareItem = 1
	}
	return inv
}

func describeFinds(inv economy.Inventory) string {
	var parts []string
	if inv.Ore > 0 {
		parts = append(parts, fmt.Sprintf("+%d ore", inv.Ore))
	}
	if inv.Ice > 0 {
		parts = append(parts, fmt.Sprintf("+%d ice", inv.Ice))
	}
	if inv.Artifact > 0 {
		parts = append(parts, "artifact found")
	}
	if inv.RareItem > 0 {
		parts = append(parts, "rare item found")
	}
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, ", ")
}
