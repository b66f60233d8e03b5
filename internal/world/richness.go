// Richness field for trade zone cells.
// Layered simplex noise sampled at each cell centroid.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Noise octave settings. Frequencies are per degree.
const (
	richnessBaseFreq = 4.0
	richnessOctaves  = 3
	richnessPersist  = 0.5
)

// sampleRichness returns a deterministic value in [0, 1) per cell.
func sampleRichness(idx Index, cells []CellID, seed int64) map[CellID]float64 {
	noise := opensimplex.NewNormalized(seed)
	out := make(map[CellID]float64, len(cells))
	for _, c := range cells {
		p := idx.Center(c)
		out[c] = octaveNoise(noise, p.Lon, p.Lat)
	}
	return out
}

// octaveNoise sums octaves of normalized noise and renormalizes to [0, 1).
func octaveNoise(noise opensimplex.Noise, x, y float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxAmp := 0.0
	freq := richnessBaseFreq
	for i := 0; i < richnessOctaves; i++ {
		total += noise.Eval2(x*freq, y*freq) * amplitude
		maxAmp += amplitude
		amplitude *= richnessPersist
		freq *= 2
	}
	v := total / maxAmp
	if v < 0 {
		v = 0
	}
	if v >= 1 {
		v = 0.999999
	}
	return v
}
