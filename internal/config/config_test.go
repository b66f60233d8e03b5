package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/solgrid/internal/economy"
)

func TestBuiltinModes(t *testing.T) {
	modes, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"expedition", "lite", "summit"}, modes.Names())

	lite, err := modes.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "moon-demo-lite-v1", lite.Key)
	assert.Equal(t, int64(300), lite.InitialTokens)
	assert.False(t, lite.Energy.Enabled)
	assert.False(t, lite.Landings)

	summit, err := modes.Lookup("summit")
	require.NoError(t, err)
	require.NotNil(t, summit.Monument)
	assert.Equal(t, 4, summit.Monument.Threshold)
	assert.Equal(t, economy.RotationAuto, summit.Rotation)
	assert.Len(t, summit.Players, 4)
	assert.Equal(t, economy.Inventory{Ore: 20, Ice: 12, Artifact: 1}, summit.Costs.TerraformInputs)

	_, err = modes.Lookup("arcade")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
lite:
  key: moon-lite-fast
  title: Fast Lite
  currency: LUNA
  players:
    - {id: ann, label: Ann}
    - {id: ben, label: Ben}
    - {id: cat, label: Cat}
  initial_tokens: 50
  claim_price: 10
  min_list_price: 2
  default_list_price: 12
  zone:
    - {lat: 0, lon: 0, ring: 2}
  rotation: auto
  hours_per_turn: 3
`), 0644))

	modes, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, modes, 3)

	lite, err := modes.Lookup("lite")
	require.NoError(t, err)
	assert.Equal(t, "moon-lite-fast", lite.Key)
	assert.Len(t, lite.Players, 3)
	assert.Equal(t, economy.RotationAuto, lite.Rotation)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("custom:\n  key: x\n  players: [{id: solo}]\n"), 0644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, `mode "custom"`)

	negative := filepath.Join(dir, "negative.yaml")
	require.NoError(t, os.WriteFile(negative, []byte(`
drain:
  key: drain-v1
  players: [{id: ann}, {id: ben}]
  min_list_price: 1
  default_list_price: 1
  zone: [{lat: 0, lon: 0, ring: 2}]
  rotation: free
  hours_per_turn: 1
  explore:
    ice: {min: -9, max: -9}
`), 0644))
	_, err = Load(negative)
	assert.ErrorContains(t, err, "explore yield")

	garbled := filepath.Join(dir, "garbled.yaml")
	require.NoError(t, os.WriteFile(garbled, []byte("lite: [unclosed"), 0644))
	_, err = Load(garbled)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
