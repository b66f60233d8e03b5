package economy

import (
	"fmt"

	"github.com/talgya/solgrid/internal/world"
)

// Rotation decides who acts next.
type Rotation string

const (
	// RotationFree lets the caller pick any player for each action.
	RotationFree Rotation = "free"
	// RotationAuto advances the active player after every action and only
	// accepts actions from the active player.
	RotationAuto Rotation = "auto"
)

// Player describes one participant.
type Player struct {
	ID     PlayerID `yaml:"id" json:"id"`
	Label  string   `yaml:"label" json:"label"`
	Lander string   `yaml:"lander" json:"lander,omitempty"`
	Rover  string   `yaml:"rover" json:"rover,omitempty"`
}

// Range is an inclusive integer range.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Yield describes the randomized gain of an explore or mine action.
type Yield struct {
	Tokens           Range   `yaml:"tokens" json:"tokens"`
	Ore              Range   `yaml:"ore" json:"ore"`
	Ice              Range   `yaml:"ice" json:"ice"`
	ArtifactChance   float64 `yaml:"artifact_chance" json:"artifact_chance"`
	RareChance       float64 `yaml:"rare_chance" json:"rare_chance"`
	RareTokenBonus   int     `yaml:"rare_token_bonus" json:"rare_token_bonus"`
	ArtifactProgress float64 `yaml:"artifact_progress" json:"artifact_progress"`
}

// EnergyModel configures power. Disabled modes have no energy gate.
type EnergyModel struct {
	Enabled     bool `yaml:"enabled" json:"enabled"`
	Initial     int  `yaml:"initial" json:"initial"`
	Capacity    int  `yaml:"capacity" json:"capacity"`
	MinCapacity int  `yaml:"min_capacity" json:"min_capacity"`
	SolarPanels int  `yaml:"solar_panels" json:"solar_panels"`

	// Regeneration per turn at full daylight: panels*PanelOutput +
	// baseLevel*BaseOutput + IdleOutput.
	PanelOutput int `yaml:"panel_output" json:"panel_output"`
	BaseOutput  int `yaml:"base_output" json:"base_output"`
	IdleOutput  int `yaml:"idle_output" json:"idle_output"`
}

// Output returns the regeneration rate at full daylight.
func (m EnergyModel) Output(panels, baseLevel int) int {
	return panels*m.PanelOutput + baseLevel*m.BaseOutput + m.IdleOutput
}

// Costs holds the fixed prices of the richer actions.
type Costs struct {
	ExploreEnergy int `yaml:"explore_energy" json:"explore_energy"`
	MineEnergy    int `yaml:"mine_energy" json:"mine_energy"`

	BuildTokens   int64   `yaml:"build_tokens" json:"build_tokens"`
	BuildEnergy   int     `yaml:"build_energy" json:"build_energy"`
	BuildCapacity int     `yaml:"build_capacity" json:"build_capacity"`
	BuildProgress float64 `yaml:"build_progress" json:"build_progress"`

	TerraformEnergy    int       `yaml:"terraform_energy" json:"terraform_energy"`
	TerraformInputs    Inventory `yaml:"terraform_inputs" json:"terraform_inputs"`
	TerraformBase      float64   `yaml:"terraform_base" json:"terraform_base"`
	TerraformPerLevel  float64   `yaml:"terraform_per_level" json:"terraform_per_level"`
	TerraformRareBonus float64   `yaml:"terraform_rare_bonus" json:"terraform_rare_bonus"`
	TerraformReward    int64     `yaml:"terraform_reward" json:"terraform_reward"`
}

// MonumentRule places the monument and sets its control reward.
type MonumentRule struct {
	Lat       float64 `yaml:"lat" json:"lat"`
	Lon       float64 `yaml:"lon" json:"lon"`
	Threshold int     `yaml:"threshold" json:"threshold"`
	Bonus     int64   `yaml:"bonus" json:"bonus"`
}

// Landmark is a historic site shown on the map.
type Landmark struct {
	ID        string  `yaml:"id" json:"id"`
	Name      string  `yaml:"name" json:"name"`
	Mission   string  `yaml:"mission" json:"mission"`
	EventType string  `yaml:"event_type" json:"event_type"`
	EventDate string  `yaml:"event_date" json:"event_date"`
	Source    string  `yaml:"source" json:"source,omitempty"`
	Lat       float64 `yaml:"lat" json:"lat"`
	Lon       float64 `yaml:"lon" json:"lon"`
}

// MaxTerraformProgress is the win threshold of the global counter.
const MaxTerraformProgress = 100.0

// Mode is one parameterized game variant.
type Mode struct {
	Key      string   `yaml:"key" json:"key"`
	Title    string   `yaml:"title" json:"title"`
	Intro    string   `yaml:"intro" json:"intro"`
	Currency string   `yaml:"currency" json:"currency"`
	Players  []Player `yaml:"players" json:"players"`

	InitialTokens    int64 `yaml:"initial_tokens" json:"initial_tokens"`
	ClaimPrice       int64 `yaml:"claim_price" json:"claim_price"`
	MinListPrice     int64 `yaml:"min_list_price" json:"min_list_price"`
	DefaultListPrice int64 `yaml:"default_list_price" json:"default_list_price"`

	Zone      []world.Anchor `yaml:"zone" json:"zone"`
	ZoneSeed  int64          `yaml:"zone_seed" json:"zone_seed"`
	Monument  *MonumentRule  `yaml:"monument" json:"monument,omitempty"`
	Rotation  Rotation       `yaml:"rotation" json:"rotation"`
	Landings  bool           `yaml:"landings" json:"landings"`
	Equipment []string       `yaml:"equipment" json:"equipment,omitempty"`

	Energy  EnergyModel `yaml:"energy" json:"energy"`
	Explore Yield       `yaml:"explore" json:"explore"`
	Mine    Yield       `yaml:"mine" json:"mine"`
	Costs   Costs       `yaml:"costs" json:"costs"`

	HoursPerTurn  int  `yaml:"hours_per_turn" json:"hours_per_turn"`
	DaylightYield bool `yaml:"daylight_yield" json:"daylight_yield"`
	RichnessBonus int  `yaml:"richness_bonus" json:"richness_bonus"`

	Landmarks []Landmark `yaml:"landmarks" json:"landmarks,omitempty"`
}

// Validate checks the mode for internal consistency.
func (m *Mode) Validate() error {
	if m.Key == "" {
		return fmt.Errorf("mode key is required")
	}
	if n := len(m.Players); n < 2 || n > 4 {
		return fmt.Errorf("mode %s: need 2 to 4 players, got %d", m.Key, n)
	}
	seen := make(map[PlayerID]bool, len(m.Players))
	for _, p := range m.Players {
		if p.ID == "" {
			return fmt.Errorf("mode %s: empty player id", m.Key)
		}
		if seen[p.ID] {
			return fmt.Errorf("mode %s: duplicate player %s", m.Key, p.ID)
		}
		seen[p.ID] = true
	}
	if m.InitialTokens < 0 || m.ClaimPrice < 0 {
		return fmt.Errorf("mode %s: negative token amounts", m.Key)
	}
	if m.MinListPrice < 1 {
		return fmt.Errorf("mode %s: min list price must be positive", m.Key)
	}
	if m.DefaultListPrice < m.MinListPrice {
		return fmt.Errorf("mode %s: default list price below floor", m.Key)
	}
	if len(m.Zone) == 0 {
		return fmt.Errorf("mode %s: zone has no anchors", m.Key)
	}
	switch m.Rotation {
	case RotationFree, RotationAuto:
	default:
		return fmt.Errorf("mode %s: unknown rotation %q", m.Key, m.Rotation)
	}
	if m.Monument != nil && (m.Monument.Threshold < 1 || m.Monument.Threshold > 6) {
		return fmt.Errorf("mode %s: monument threshold must be 1-6", m.Key)
	}
	if m.Monument != nil && m.Monument.Bonus < 0 {
		return fmt.Errorf("mode %s: negative monument bonus", m.Key)
	}
	if m.HoursPerTurn < 1 {
		return fmt.Errorf("mode %s: hours per turn must be positive", m.Key)
	}
	if err := m.Energy.validate(); err != nil {
		return fmt.Errorf("mode %s: energy: %w", m.Key, err)
	}
	if err := m.Explore.validate(); err != nil {
		return fmt.Errorf("mode %s: explore yield: %w", m.Key, err)
	}
	if err := m.Mine.validate(); err != nil {
		return fmt.Errorf("mode %s: mine yield: %w", m.Key, err)
	}
	if err := m.Costs.validate(); err != nil {
		return fmt.Errorf("mode %s: costs: %w", m.Key, err)
	}
	if m.RichnessBonus < 0 {
		return fmt.Errorf("mode %s: negative richness bonus", m.Key)
	}
	return nil
}

func (r Range) validate() error {
	if r.Min < 0 || r.Max < r.Min {
		return fmt.Errorf("bad range %d..%d", r.Min, r.Max)
	}
	return nil
}

func (y Yield) validate() error {
	for _, r := range []Range{y.Tokens, y.Ore, y.Ice} {
		if err := r.validate(); err != nil {
			return err
		}
	}
	if y.ArtifactChance < 0 || y.ArtifactChance > 1 || y.RareChance < 0 || y.RareChance > 1 {
		return fmt.Errorf("chances must be within 0-1")
	}
	if y.RareTokenBonus < 0 || y.ArtifactProgress < 0 {
		return fmt.Errorf("negative bonus")
	}
	return nil
}

func (m EnergyModel) validate() error {
	if !m.Enabled {
		return nil
	}
	if m.Initial < 0 || m.MinCapacity < 0 || m.SolarPanels < 0 {
		return fmt.Errorf("negative amounts")
	}
	if m.Capacity < m.MinCapacity || m.Initial > m.Capacity {
		return fmt.Errorf("inconsistent capacity")
	}
	if m.PanelOutput < 0 || m.BaseOutput < 0 || m.IdleOutput < 0 {
		return fmt.Errorf("negative output")
	}
	return nil
}

func (c Costs) validate() error {
	if c.ExploreEnergy < 0 || c.MineEnergy < 0 || c.BuildEnergy < 0 || c.TerraformEnergy < 0 {
		return fmt.Errorf("negative energy cost")
	}
	if c.BuildTokens < 0 || c.BuildCapacity < 0 || c.BuildProgress < 0 {
		return fmt.Errorf("negative build cost")
	}
	in := c.TerraformInputs
	if in.Ore < 0 || in.Ice < 0 || in.Artifact < 0 || in.RareItem < 0 {
		return fmt.Errorf("negative terraform inputs")
	}
	if c.TerraformBase < 0 || c.TerraformPerLevel < 0 || c.TerraformRareBonus < 0 || c.TerraformReward < 0 {
		return fmt.Errorf("negative terraform gain")
	}
	return nil
}

// PlayerIndex returns the turn-order position of id, or -1.
func (m *Mode) PlayerIndex(id PlayerID) int {
	for i, p := range m.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Label returns the display name of id.
func (m *Mode) Label(id PlayerID) string {
	for _, p := range m.Players {
		if p.ID == id {
			return p.Label
		}
	}
	return string(id)
}
