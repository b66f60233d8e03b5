package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/talgya/solgrid/internal/config"
	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/entropy"
	"github.com/talgya/solgrid/internal/persistence"
	"github.com/talgya/solgrid/internal/world"
)

// openSession builds the engine for the configured mode and restores its
// session from the database. The caller closes the returned DB.
func openSession() (*engine.Session, *persistence.DB, error) {
	modes, err := config.Load(viper.GetString("modes_file"))
	if err != nil {
		return nil, nil, err
	}
	mode, err := modes.Lookup(viper.GetString("mode"))
	if err != nil {
		return nil, nil, err
	}

	idx, err := cellIndex()
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.NewEngine(mode, idx, randomSource())
	if err != nil {
		return nil, nil, fmt.Errorf("engine: %w", err)
	}
	slog.Info("trade zone ready",
		"mode", mode.Key,
		"cells", eng.Zone.Len(),
		"perimeter", len(eng.Zone.Perimeter()),
		"monument", mode.Monument != nil,
	)

	dbPath := viper.GetString("db")
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("database opened", "path", dbPath)

	return engine.NewSession(eng, db, db), db, nil
}

func cellIndex() (world.Index, error) {
	switch viper.GetString("index") {
	case "h3", "":
		return world.NewH3Index(viper.GetInt("h3_resolution")), nil
	case "axial":
		return world.NewAxialIndex(viper.GetFloat64("axial_size")), nil
	default:
		return nil, fmt.Errorf("unknown cell index %q (want h3 or axial)", viper.GetString("index"))
	}
}

func randomSource() entropy.Source {
	if seed := viper.GetInt64("seed"); seed != 0 {
		slog.Info("deterministic draws", "seed", seed)
		return entropy.NewSeeded(seed)
	}
	rng := entropy.NewClient(os.Getenv("RANDOM_ORG_KEY"))
	if rng.Enabled() {
		slog.Info("random.org entropy enabled")
	} else {
		slog.Info("RANDOM_ORG_KEY not set, using crypto/rand")
	}
	return entropy.FromClient(rng)
}
