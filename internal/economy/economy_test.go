package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/solgrid/internal/world"
)

func TestWalletTransfer(t *testing.T) {
	w := Wallets{"alice": 100, "bob": 50}
	total := w.Total()

	require.NoError(t, w.Transfer("alice", "bob", 60))
	assert.Equal(t, int64(40), w["alice"])
	assert.Equal(t, int64(110), w["bob"])
	assert.Equal(t, total, w.Total())

	err := w.Transfer("alice", "bob", 41)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(40), w["alice"])
	assert.Equal(t, int64(110), w["bob"])
}

func TestWalletClone(t *testing.T) {
	w := Wallets{"alice": 10}
	c := w.Clone()
	c.Credit("alice", 5)
	assert.Equal(t, int64(10), w["alice"])
	assert.Equal(t, int64(15), c["alice"])
}

func TestInventory(t *testing.T) {
	have := Inventory{Ore: 22, Ice: 12, Artifact: 1}
	cost := Inventory{Ore: 20, Ice: 12, Artifact: 1}

	assert.True(t, have.Covers(cost))
	assert.Equal(t, Inventory{Ore: 2}, have.Sub(cost))
	assert.False(t, have.Sub(cost).Covers(cost))
	assert.Equal(t, Inventory{Ore: 42, Ice: 24, Artifact: 2}, have.Add(cost))
}

func TestEnergy(t *testing.T) {
	e := Energy{Current: 170, Capacity: 180}
	assert.Equal(t, 180, e.Gain(25).Current)
	assert.Equal(t, 170, e.Gain(-5).Current)
	assert.Equal(t, 130, e.Spend(40).Current)
}

func TestEnergyOutput(t *testing.T) {
	m := EnergyModel{PanelOutput: 12, BaseOutput: 4, IdleOutput: 3}
	assert.Equal(t, 27, m.Output(2, 0))
	assert.Equal(t, 43, m.Output(3, 1))
}

func validMode() Mode {
	return Mode{
		Key:              "test-v1",
		Players:          []Player{{ID: "alice", Label: "Alice"}, {ID: "bob", Label: "Bob"}},
		InitialTokens:    300,
		ClaimPrice:       20,
		MinListPrice:     5,
		DefaultListPrice: 35,
		Zone:             []world.Anchor{{Ring: 2}},
		Rotation:         RotationFree,
		HoursPerTurn:     1,
	}
}

func TestModeValidate(t *testing.T) {
	m := validMode()
	require.NoError(t, m.Validate())

	m.Energy = EnergyModel{Enabled: true, Initial: 100, Capacity: 180, MinCapacity: 50, PanelOutput: 12}
	m.Explore = Yield{Tokens: Range{Min: 8, Max: 28}, Ore: Range{Min: 2, Max: 9}, ArtifactChance: 0.22}
	m.Costs = Costs{ExploreEnergy: 10, TerraformInputs: Inventory{Ore: 20, Ice: 12, Artifact: 1}}
	require.NoError(t, m.Validate())

	tests := []struct {
		name   string
		mutate func(*Mode)
	}{
		{"no key", func(m *Mode) { m.Key = "" }},
		{"one player", func(m *Mode) { m.Players = m.Players[:1] }},
		{"duplicate player", func(m *Mode) { m.Players[1].ID = "alice" }},
		{"zero list floor", func(m *Mode) { m.MinListPrice = 0 }},
		{"default below floor", func(m *Mode) { m.DefaultListPrice = 4 }},
		{"no zone", func(m *Mode) { m.Zone = nil }},
		{"bad rotation", func(m *Mode) { m.Rotation = "round-robin" }},
		{"monument threshold", func(m *Mode) { m.Monument = &MonumentRule{Threshold: 7} }},
		{"zero hours", func(m *Mode) { m.HoursPerTurn = 0 }},
		{"energy", func(m *Mode) { m.Energy = EnergyModel{Enabled: true, Initial: 200, Capacity: 100} }},
		{"negative explore energy", func(m *Mode) { m.Costs.ExploreEnergy = -500 }},
		{"negative mine energy", func(m *Mode) { m.Costs.MineEnergy = -1 }},
		{"negative build tokens", func(m *Mode) { m.Costs.BuildTokens = -10 }},
		{"negative terraform inputs", func(m *Mode) { m.Costs.TerraformInputs = Inventory{Ice: -3} }},
		{"negative terraform reward", func(m *Mode) { m.Costs.TerraformReward = -1 }},
		{"negative explore yield", func(m *Mode) { m.Explore.Ice = Range{Min: -9, Max: -9} }},
		{"inverted mine yield", func(m *Mode) { m.Mine.Ore = Range{Min: 9, Max: 2} }},
		{"chance above one", func(m *Mode) { m.Mine.ArtifactChance = 1.5 }},
		{"negative rare bonus", func(m *Mode) { m.Explore.RareTokenBonus = -4 }},
		{"negative monument bonus", func(m *Mode) { m.Monument = &MonumentRule{Threshold: 4, Bonus: -15} }},
		{"negative panel output", func(m *Mode) {
			m.Energy = EnergyModel{Enabled: true, Initial: 50, Capacity: 100, PanelOutput: -12}
		}},
		{"negative richness bonus", func(m *Mode) { m.RichnessBonus = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMode()
			m.Players = append([]Player(nil), m.Players...)
			tt.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestModeLookups(t *testing.T) {
	m := validMode()
	assert.Equal(t, 1, m.PlayerIndex("bob"))
	assert.Equal(t, -1, m.PlayerIndex("carol"))
	assert.Equal(t, "Alice", m.Label("alice"))
}
