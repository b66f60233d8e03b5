package engine

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/world"
)

// OwnedCell is a claimed cell. A listed cell always has an owner.
type OwnedCell struct {
	Owner       economy.PlayerID `json:"owner"`
	ListedPrice *int64           `json:"listed_price"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Listed reports whether the cell is for sale.
func (c OwnedCell) Listed() bool { return c.ListedPrice != nil }

// Team is one player's expedition: base, power, stock, and survey record.
type Team struct {
	LandingCell world.CellID      `json:"landing_cell,omitempty"`
	LanderName  string            `json:"lander_name,omitempty"`
	RoverName   string            `json:"rover_name,omitempty"`
	BaseLevel   int               `json:"base_level"`
	SolarPanels int               `json:"solar_panels"`
	Energy      economy.Energy    `json:"energy"`
	Inventory   economy.Inventory `json:"inventory"`
	Equipment   []string          `json:"equipment"`
	Explored    []world.CellID    `json:"explored"`
}

// HasExplored reports whether the team surveyed c.
func (t Team) HasExplored(c world.CellID) bool {
	return slices.Contains(t.Explored, c)
}

func (t Team) clone() Team {
	t.Equipment = append([]string{}, t.Equipment...)
	t.Explored = append([]world.CellID{}, t.Explored...)
	return t
}

// State is the aggregate root: the unit of persistence and the sole
// argument and return value of every transition.
type State struct {
	Mode               string                     `json:"mode"`
	Wallets            economy.Wallets            `json:"wallets"`
	Cells              map[world.CellID]OwnedCell `json:"cells"`
	Teams              map[economy.PlayerID]Team  `json:"teams"`
	Turn               int                        `json:"turn"`
	ElapsedHours       int                        `json:"elapsed_hours"`
	ActiveIndex        int                        `json:"active_index"`
	TerraformProgress  float64                    `json:"terraform_progress"`
	MonumentController economy.PlayerID           `json:"monument_controller,omitempty"`
	LastEvent          string                     `json:"last_event"`
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Wallets = s.Wallets.Clone()
	out.Cells = make(map[world.CellID]OwnedCell, len(s.Cells))
	for id, c := range s.Cells {
		if c.ListedPrice != nil {
			price := *c.ListedPrice
			c.ListedPrice = &price
		}
		out.Cells[id] = c
	}
	out.Teams = make(map[economy.PlayerID]Team, len(s.Teams))
	for id, t := range s.Teams {
		out.Teams[id] = t.clone()
	}
	return out
}

// Encode serializes the state for persistence.
func Encode(s State) ([]byte, error) {
	return json.Marshal(s)
}

// Completed reports whether terraforming reached the win threshold.
func (s State) Completed() bool {
	return s.TerraformProgress >= economy.MaxTerraformProgress
}

// NewState builds a fresh state with randomized perimeter landings.
func (e *Engine) NewState() State {
	now := e.now()
	s := State{
		Mode:      e.Mode.Key,
		Wallets:   make(economy.Wallets, len(e.Mode.Players)),
		Cells:     make(map[world.CellID]OwnedCell),
		Teams:     make(map[economy.PlayerID]Team, len(e.Mode.Players)),
		Turn:      1,
		LastEvent: e.Mode.Intro,
	}

	var landings []world.CellID
	if e.Mode.Landings {
		landings = world.PickLandings(e.Zone, len(e.Mode.Players), e.Rand)
	}

	for i, p := range e.Mode.Players {
		var landing world.CellID
		if i < len(landings) {
			landing = landings[i]
		}
		s.Wallets[p.ID] = e.Mode.InitialTokens
		s.Teams[p.ID] = e.newTeam(p, landing)
		if landing != "" {
			s.Cells[landing] = OwnedCell{Owner: p.ID, UpdatedAt: now}
		}
	}
	s.MonumentController = e.monumentController(s.Cells)
	return s
}

func (e *Engine) newTeam(p economy.Player, landing world.CellID) Team {
	t := Team{
		LandingCell: landing,
		LanderName:  p.Lander,
		RoverName:   p.Rover,
		Equipment:   append([]string{}, e.Mode.Equipment...),
		Explored:    []world.CellID{},
	}
	if landing != "" {
		t.Explored = append(t.Explored, landing)
	}
	if e.Mode.Energy.Enabled {
		t.SolarPanels = e.Mode.Energy.SolarPanels
		t.Energy = economy.Energy{
			Current:  e.Mode.Energy.Initial,
			Capacity: e.Mode.Energy.Capacity,
		}
	}
	return t
}

// Reset discards s and returns a fresh state. It always succeeds.
func (e *Engine) Reset(_ State) Result {
	next := e.NewState()
	return Result{
		State:   next,
		Event:   "Scenario reset. New landing positions generated.",
		Changed: true,
	}
}
