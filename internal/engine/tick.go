package engine

import (
	"fmt"
	"math"

	"github.com/talgya/solgrid/internal/economy"
)

// HoursPerSol is the length of one simulated day.
const HoursPerSol = 24

// Result is the outcome of an accepted transition.
type Result struct {
	State State  `json:"state"`
	Event string `json:"event"`

	// Changed is false when the action was a silent no-op, such as listing
	// a cell the player does not own. The state is then the input state.
	Changed bool `json:"changed"`
}

func unchanged(s State) Result {
	return Result{State: s}
}

// advance runs the turn advancer on s after an accepted action: turn and
// clock move forward, energy regenerates under current illumination, the
// monument controller is recomputed and paid, and the rotation moves on.
func (e *Engine) advance(s *State, event string) Result {
	s.Turn++
	s.ElapsedHours += e.Mode.HoursPerTurn

	if e.Mode.Energy.Enabled {
		for _, p := range e.Mode.Players {
			team := s.Teams[p.ID]
			lon := e.teamLongitude(team)
			rate := float64(e.Mode.Energy.Output(team.SolarPanels, team.BaseLevel)) * Illumination(s.ElapsedHours, lon)
			team.Energy = team.Energy.Gain(int(math.Round(rate)))
			s.Teams[p.ID] = team
		}
	}

	s.MonumentController = e.monumentController(s.Cells)
	if s.MonumentController != "" && e.Mode.Monument.Bonus > 0 {
		s.Wallets.Credit(s.MonumentController, e.Mode.Monument.Bonus)
		event += fmt.Sprintf(" %s holds the monument (+%d %s).",
			e.label(s.MonumentController), e.Mode.Monument.Bonus, e.Mode.Currency)
	}

	if e.Mode.Rotation == economy.RotationAuto && len(e.Mode.Players) > 0 {
		s.ActiveIndex = (s.ActiveIndex + 1) % len(e.Mode.Players)
	}

	s.LastEvent = event
	return Result{State: *s, Event: event, Changed: true}
}

// SolTime formats elapsed hours as a sol and hour of day.
func SolTime(elapsedHours int) string {
	sol := elapsedHours/HoursPerSol + 1
	hour := elapsedHours % HoursPerSol
	return fmt.Sprintf("Sol %d, %02d:00", sol, hour)
}
