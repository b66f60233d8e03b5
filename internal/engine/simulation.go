// Package engine implements the territorial resource economy: the state
// model, the sanitizer for persisted snapshots, one pure transition per
// player action, and the turn advancer.
//
// Transitions never mutate their input. Each returns a Result holding the
// next state, or a validation error from errors.go with the input state
// untouched.
package engine

import (
	"fmt"
	"time"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/entropy"
	"github.com/talgya/solgrid/internal/world"
)

// Engine binds a game mode to its precomputed trade zone and randomness.
type Engine struct {
	Mode economy.Mode
	Zone *world.Zone
	Rand entropy.Source

	// Now stamps owned cells. Defaults to time.Now.
	Now func() time.Time
}

// NewEngine validates the mode and precomputes its trade zone.
func NewEngine(mode economy.Mode, idx world.Index, rng entropy.Source) (*Engine, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	var monument *world.LatLng
	if mode.Monument != nil {
		monument = &world.LatLng{Lat: mode.Monument.Lat, Lon: mode.Monument.Lon}
	}
	zone, err := world.BuildZone(idx, mode.Zone, monument, mode.ZoneSeed)
	if err != nil {
		return nil, fmt.Errorf("mode %s: %w", mode.Key, err)
	}
	if mode.Landings && len(zone.Perimeter()) < len(mode.Players) {
		return nil, fmt.Errorf("mode %s: perimeter has %d cells for %d landings",
			mode.Key, len(zone.Perimeter()), len(mode.Players))
	}
	if mode.Monument != nil && len(zone.MonumentRing()) != 6 {
		return nil, fmt.Errorf("mode %s: monument ring has %d cells", mode.Key, len(zone.MonumentRing()))
	}

	if rng == nil {
		rng = entropy.Crypto()
	}
	return &Engine{
		Mode: mode,
		Zone: zone,
		Rand: rng,
		Now:  time.Now,
	}, nil
}

func (e *Engine) now() time.Time {
	return e.Now().UTC()
}

// ActivePlayer returns the player whose turn it is.
func (e *Engine) ActivePlayer(s State) economy.PlayerID {
	n := len(e.Mode.Players)
	if n == 0 {
		return ""
	}
	return e.Mode.Players[((s.ActiveIndex%n)+n)%n].ID
}

// checkActor validates the acting player against the mode and rotation policy.
func (e *Engine) checkActor(s State, p economy.PlayerID) error {
	if e.Mode.PlayerIndex(p) < 0 {
		return ErrUnknownPlayer
	}
	if e.Mode.Rotation == economy.RotationAuto && e.ActivePlayer(s) != p {
		return ErrNotYourTurn
	}
	return nil
}

// checkTradeCell validates a target cell for the trade actions.
func (e *Engine) checkTradeCell(cell world.CellID) error {
	if cell == "" {
		return ErrNoCell
	}
	if !e.Zone.Contains(cell) {
		return ErrOutsideZone
	}
	if e.Zone.IsMonument(cell) {
		return ErrMonument
	}
	return nil
}

func (e *Engine) label(p economy.PlayerID) string {
	return e.Mode.Label(p)
}
