package engine

import (
	"fmt"
	"math"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/world"
)

func (e *Engine) checkEnergyMode() error {
	if !e.Mode.Energy.Enabled {
		return ErrUnavailable
	}
	return nil
}

// BuildBase spends tokens and energy to raise the player's base level.
// Each level adds a solar panel and storage capacity.
func (e *Engine) BuildBase(s State, p economy.PlayerID) (Result, error) {
	if err := e.checkEnergyMode(); err != nil {
		return unchanged(s), err
	}
	if err := e.checkActor(s, p); err != nil {
		return unchanged(s), err
	}
	c := e.Mode.Costs
	team := s.Teams[p]
	if s.Wallets[p] < c.BuildTokens {
		return unchanged(s), ErrInsufficientBalance
	}
	if team.Energy.Current < c.BuildEnergy {
		return unchanged(s), ErrInsufficientEnergy
	}

	next := s.Clone()
	team = next.Teams[p]
	if err := next.Wallets.Debit(p, c.BuildTokens); err != nil {
		return unchanged(s), ErrInsufficientBalance
	}
	team.Energy = team.Energy.Spend(c.BuildEnergy)
	team.Energy.Capacity += c.BuildCapacity
	team.BaseLevel++
	team.SolarPanels++
	next.Teams[p] = team
	next.TerraformProgress = clampProgress(next.TerraformProgress + c.BuildProgress)

	event := fmt.Sprintf("%s expanded the base to Lv.%d.", e.label(p), team.BaseLevel)
	return e.advance(&next, event), nil
}

// Mine extracts resources from a cell the player has explored. Richer
// cells yield extra ore when the mode sets a richness bonus.
func (e *Engine) Mine(s State, p economy.PlayerID, cell world.CellID) (Result, error) {
	if err := e.checkEnergyMode(); err != nil {
		return unchanged(s), err
	}
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
	if !team.HasExplored(cell) {
		return unchanged(s), ErrNotExplored
	}
	if team.Energy.Current < e.Mode.Costs.MineEnergy {
		return unchanged(s), ErrInsufficientEnergy
	}

	next := s.Clone()
	team = next.Teams[p]
	found := e.draw(e.Mode.Mine, e.daylightFactor(s, cell))
	found.Ore += int(math.Round(e.Zone.Richness(cell) * float64(e.Mode.RichnessBonus)))

	team.Energy = team.Energy.Spend(e.Mode.Costs.MineEnergy)
	team.Inventory = team.Inventory.Add(found)
	next.Teams[p] = team
	next.TerraformProgress = clampProgress(next.TerraformProgress + float64(found.Artifact)*e.Mode.Mine.ArtifactProgress)

	event := fmt.Sprintf("%s mined %s%s.", e.label(p), cell, describeFinds(found))
	return e.advance(&next, event), nil
}

// Terraform converts energy and resources into global terraform progress
// and pays a token reward.
func (e *Engine) Terraform(s State, p economy.PlayerID) (Result, error) {
	if err := e.checkEnergyMode(); err != nil {
		return unchanged(s), err
	}
	if err := e.checkActor(s, p); err != nil {
		return unchanged(s), err
	}
	if s.Completed() {
		return unchanged(s), ErrTerraformComplete
	}
	c := e.Mode.Costs
	team := s.Teams[p]
	if team.BaseLevel <= 0 {
		return unchanged(s), ErrNoBase
	}
	if team.Energy.Current < c.TerraformEnergy {
		return unchanged(s), ErrInsufficientEnergy
	}
	if !team.Inventory.Covers(c.TerraformInputs) {
		return unchanged(s), ErrInsufficientResources
	}

	gain := c.TerraformBase + c.TerraformPerLevel*float64(team.BaseLevel)
	if team.Inventory.RareItem > 0 {
		gain += c.TerraformRareBonus
	}

	next := s.Clone()
	team = next.Teams[p]
	team.Energy = team.Energy.Spend(c.TerraformEnergy)
	team.Inventory = team.Inventory.Sub(c.TerraformInputs)
	next.Teams[p] = team
	next.TerraformProgress = clampProgress(next.TerraformProgress + gain)
	next.Wallets.Credit(p, c.TerraformReward)

	event := fmt.Sprintf("%s advanced terraforming by %.1f%% (now %.1f%%, +%d %s).",
		e.label(p), gain, next.TerraformProgress, c.TerraformReward, e.Mode.Currency)
	return e.advance(&next, event), nil
}

// Harvest collects solar energy at full output, capped at capacity.
func (e *Engine) Harvest(s State, p economy.PlayerID) (Result, error) {
	if err := e.checkEnergyMode(); err != nil {
		return unchanged(s), err
	}
	if err := e.checkActor(s, p); err != nil {
		return unchanged(s), err
	}

	next := s.Clone()
	team := next.Teams[p]
	before := team.Energy.Current
	team.Energy = team.Energy.Gain(e.Mode.Energy.Output(team.SolarPanels, team.BaseLevel))
	next.Teams[p] = team

	event := fmt.Sprintf("%s harvested %d energy.", e.label(p), team.Energy.Current-before)
	return e.advance(&next, event), nil
}
