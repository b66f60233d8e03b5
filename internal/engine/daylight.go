package engine

import (
	"math"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/world"
)

// Illumination returns the solar factor in [0, 1] at a longitude after
// elapsedHours. Local time shifts one hour per 15 degrees east; the sun is
// up from 06:00 to 18:00 and peaks at noon.
func Illumination(elapsedHours int, lon float64) float64 {
	local := LocalHour(elapsedHours, lon)
	if local < 6 || local >= 18 {
		return 0
	}
	return math.Max(0, math.Sin(math.Pi*(local-6)/12))
}

// LocalHour returns the local solar hour at lon, in [0, 24).
func LocalHour(elapsedHours int, lon float64) float64 {
	local := math.Mod(float64(elapsedHours)+lon/15, HoursPerSol)
	if local < 0 {
		local += HoursPerSol
	}
	return local
}

func (e *Engine) teamLongitude(t Team) float64 {
	if t.LandingCell == "" {
		return 0
	}
	return e.Zone.Index().Center(t.LandingCell).Lon
}

// daylightFactor scales yields at cell when the mode enables it.
func (e *Engine) daylightFactor(s State, cell world.CellID) float64 {
	if !e.Mode.DaylightYield {
		return 1
	}
	lon := e.Zone.Index().Center(cell).Lon
	return 0.5 + 0.5*Illumination(s.ElapsedHours, lon)
}

func scale(n int, f float64) int {
	return int(math.Round(float64(n) * f))
}

func clampProgress(p float64) float64 {
	return math.Min(economy.MaxTerraformProgress, math.Max(0, p))
}
