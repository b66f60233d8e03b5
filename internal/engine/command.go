package engine

import (
	"fmt"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/world"
)

// Action names a player command.
type Action string

const (
	ActionExplore   Action = "explore"
	ActionClaim     Action = "claim"
	ActionList      Action = "list"
	ActionUnlist    Action = "unlist"
	ActionBuy       Action = "buy"
	ActionBuildBase Action = "build"
	ActionMine      Action = "mine"
	ActionTerraform Action = "terraform"
	ActionHarvest   Action = "harvest"
	ActionReset     Action = "reset"
)

// Actions lists the player commands in display order. Reset is not a
// player command.
var Actions = []Action{
	ActionExplore, ActionClaim, ActionList, ActionUnlist, ActionBuy,
	ActionBuildBase, ActionMine, ActionTerraform, ActionHarvest,
}

// Command is one request to change the state.
type Command struct {
	Action Action           `json:"action"`
	Player economy.PlayerID `json:"player,omitempty"`
	Cell   world.CellID     `json:"cell_id,omitempty"`

	// Price applies to list; zero means the mode's default list price.
	Price int64 `json:"price,omitempty"`
}

// Apply dispatches cmd to its transition. An empty player means the
// active player.
func (e *Engine) Apply(s State, cmd Command) (Result, error) {
	p := cmd.Player
	if p == "" {
		p = e.ActivePlayer(s)
	}

	switch cmd.Action {
	case ActionExplore:
		return e.Explore(s, p, cmd.Cell)
	case ActionClaim:
		return e.Claim(s, p, cmd.Cell)
	case ActionList:
		price := cmd.Price
		if price == 0 {
			price = e.Mode.DefaultListPrice
		}
		return e.List(s, p, cmd.Cell, price)
	case ActionUnlist:
		return e.Unlist(s, p, cmd.Cell)
	case ActionBuy:
		return e.Buy(s, p, cmd.Cell)
	case ActionBuildBase:
		return e.BuildBase(s, p)
	case ActionMine:
		return e.Mine(s, p, cmd.Cell)
	case ActionTerraform:
		return e.Terraform(s, p)
	case ActionHarvest:
		return e.Harvest(s, p)
	case ActionReset:
		return e.Reset(s), nil
	default:
		return unchanged(s), fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}

// Available reports whether action can be issued in this mode at all.
func (e *Engine) Available(a Action) bool {
	switch a {
	case ActionBuildBase, ActionMine, ActionTerraform, ActionHarvest:
		return e.Mode.Energy.Enabled
	case ActionExplore, ActionClaim, ActionList, ActionUnlist, ActionBuy, ActionReset:
		return true
	}
	return false
}
