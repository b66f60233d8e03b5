// Landing placement — picks spatially separated starting cells on the
// trade zone perimeter.
package world

import (
	"math"
)

// Shuffler is the randomness needed for landing placement.
type Shuffler interface {
	Intn(n int) int
}

// PickLandings chooses n distinct perimeter cells. The first landing is a
// random perimeter cell; each next landing is the candidate farthest from all
// landings already chosen, with ties broken by the shuffled order.
// Returns fewer than n cells only when the perimeter is smaller than n.
func PickLandings(z *Zone, n int, rng Shuffler) []CellID {
	pool := append([]CellID(nil), z.Perimeter()...)
	for i := len(pool) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}

	var chosen []CellID
	taken := make(map[CellID]bool)
	for len(chosen) < n && len(chosen) < len(pool) {
		if len(chosen) == 0 {
			chosen = append(chosen, pool[0])
			taken[pool[0]] = true
			continue
		}
		best := CellID("")
		bestDist := -1.0
		for _, c := range pool {
			if taken[c] {
				continue
			}
			d := nearestDistance(z.index, c, chosen)
			if d > bestDist {
				best, bestDist = c, d
			}
		}
		chosen = append(chosen, best)
		taken[best] = true
	}
	return chosen
}

// nearestDistance returns the planar distance in degrees from c to the
// closest cell in others.
func nearestDistance(idx Index, c CellID, others []CellID) float64 {
	p := idx.Center(c)
	nearest := math.Inf(1)
	for _, o := range others {
		q := idx.Center(o)
		d := math.Hypot(p.Lat-q.Lat, p.Lon-q.Lon)
		if d < nearest {
			nearest = d
		}
	}
	return nearest
}
