// Package config loads game mode presets.
// Built-in presets are embedded; an optional YAML file overrides them by name.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/talgya/solgrid/internal/economy"
)

//go:embed modes.yaml
var builtinModes []byte

// DefaultMode is used when no mode is requested.
const DefaultMode = "lite"

// Modes maps preset names to game modes.
type Modes map[string]economy.Mode

// Builtin returns the embedded presets.
func Builtin() (Modes, error) {
	modes := make(Modes)
	if err := yaml.Unmarshal(builtinModes, &modes); err != nil {
		return nil, fmt.Errorf("modes.yaml: %w", err)
	}
	return modes, nil
}

// Load returns the built-in presets merged with the presets in path.
// An empty path returns the built-ins. Every mode is validated.
func Load(path string) (Modes, error) {
	modes, err := Builtin()
	if err != nil {
		return nil, err
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read modes file: %w", err)
		}
		var overrides Modes
		if err := yaml.Unmarshal(raw, &overrides); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for name, m := range overrides {
			modes[name] = m
		}
	}

	for name, m := range modes {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("mode %q: %w", name, err)
		}
	}
	return modes, nil
}

// Lookup returns the named mode.
func (m Modes) Lookup(name string) (economy.Mode, error) {
	if name == "" {
		name = DefaultMode
	}
	mode, ok := m[name]
	if !ok {
		return economy.Mode{}, fmt.Errorf("unknown mode %q (have %v)", name, m.Names())
	}
	return mode, nil
}

// Names returns the preset names sorted.
func (m Modes) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
