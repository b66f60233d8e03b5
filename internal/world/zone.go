package world

import "fmt"

// Anchor is one disk of the trade zone: every cell within Ring steps of the
// cell containing (Lat, Lon).
type Anchor struct {
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
	Ring int     `yaml:"ring" json:"ring"`
}

// Zone is the immutable set of cells eligible for claim, list, and buy.
type Zone struct {
	index     Index
	cells     map[CellID]struct{}
	ordered   []CellID
	perimeter []CellID

	monument     CellID
	monumentRing []CellID

	richness map[CellID]float64
}

// BuildZone precomputes the zone from its anchors. When monument is non-nil,
// the cell under it becomes the non-ownable monument and its six neighbors
// form the monument ring; both are added to the zone.
func BuildZone(idx Index, anchors []Anchor, monument *LatLng, seed int64) (*Zone, error) {
	if len(anchors) == 0 {
		return nil, fmt.Errorf("trade zone needs at least one anchor")
	}

	z := &Zone{
		index: idx,
		cells: make(map[CellID]struct{}),
	}
	for _, a := range anchors {
		center, err := idx.CellAt(a.Lat, a.Lon)
		if err != nil {
			return nil, fmt.Errorf("zone anchor: %w", err)
		}
		for _, c := range idx.Ring(center, a.Ring) {
			z.add(c)
		}
	}

	if monument != nil {
		cell, err := idx.CellAt(monument.Lat, monument.Lon)
		if err != nil {
			return nil, fmt.Errorf("monument: %w", err)
		}
		z.monument = cell
		z.add(cell)
		for _, c := range idx.Ring(cell, 1) {
			if c == cell {
				continue
			}
			z.monumentRing = append(z.monumentRing, c)
			z.add(c)
		}
	}

	for _, c := range z.ordered {
		if c == z.monument {
			continue
		}
		for _, n := range idx.Ring(c, 1) {
			if !z.Contains(n) {
				z.perimeter = append(z.perimeter, c)
				break
			}
		}
	}

	z.richness = sampleRichness(idx, z.ordered, seed)
	return z, nil
}

func (z *Zone) add(c CellID) {
	if _, ok := z.cells[c]; ok {
		return
	}
	z.cells[c] = struct{}{}
	z.ordered = append(z.ordered, c)
}

// Index returns the spatial index the zone was built from.
func (z *Zone) Index() Index { return z.index }

// Contains reports whether the cell is part of the zone.
func (z *Zone) Contains(c CellID) bool {
	_, ok := z.cells[c]
	return ok
}

// Cells returns the zone cells in construction order.
func (z *Zone) Cells() []CellID { return z.ordered }

// Len returns the number of cells in the zone.
func (z *Zone) Len() int { return len(z.ordered) }

// Perimeter returns zone cells with at least one neighbor outside the zone.
// The monument cell is never on the perimeter.
func (z *Zone) Perimeter() []CellID { return z.perimeter }

// Monument returns the monument cell, if the zone has one.
func (z *Zone) Monument() (CellID, bool) {
	return z.monument, z.monument != ""
}

// IsMonument reports whether c is the monument cell.
func (z *Zone) IsMonument(c CellID) bool {
	return z.monument != "" && c == z.monument
}

// MonumentRing returns the six cells around the monument.
func (z *Zone) MonumentRing() []CellID { return z.monumentRing }

// Richness returns the cell's mineral richness in [0, 1).
func (z *Zone) Richness(c CellID) float64 { return z.richness[c] }
