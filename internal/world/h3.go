package world

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

// DefaultH3Resolution is the fixed cell resolution for geographic play.
// Changing it invalidates every persisted cell id.
const DefaultH3Resolution = 6

// H3Index maps geographic coordinates to H3 cells at a fixed resolution.
type H3Index struct {
	Resolution int
}

// NewH3Index returns an index at the given resolution.
func NewH3Index(resolution int) *H3Index {
	return &H3Index{Resolution: resolution}
}

// CellAt returns the H3 cell containing the point.
func (x *H3Index) CellAt(lat, lon float64) (CellID, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return "", fmt.Errorf("invalid coordinate (%v, %v)", lat, lon)
	}
	if lat < -90 || lat > 90 {
		return "", fmt.Errorf("latitude %v out of range", lat)
	}
	c := h3.LatLngToCell(h3.NewLatLng(lat, lon), x.Resolution)
	if !c.IsValid() {
		return "", fmt.Errorf("no h3 cell at (%v, %v)", lat, lon)
	}
	return CellID(c.String()), nil
}

// Ring returns h3 gridDisk(cell, k).
func (x *H3Index) Ring(cell CellID, k int) []CellID {
	c, ok := parseH3(cell)
	if !ok || k < 0 {
		return nil
	}
	disk := h3.GridDisk(c, k)
	out := make([]CellID, 0, len(disk))
	for _, d := range disk {
		out = append(out, CellID(d.String()))
	}
	return out
}

// Boundary returns the cell polygon.
func (x *H3Index) Boundary(cell CellID) []LatLng {
	c, ok := parseH3(cell)
	if !ok {
		return nil
	}
	boundary := h3.CellToBoundary(c)
	out := make([]LatLng, 0, len(boundary))
	for _, p := range boundary {
		out = append(out, LatLng{Lat: p.Lat, Lon: p.Lng})
	}
	return out
}

// Center returns the cell centroid.
func (x *H3Index) Center(cell CellID) LatLng {
	c, ok := parseH3(cell)
	if !ok {
		return LatLng{}
	}
	p := h3.CellToLatLng(c)
	return LatLng{Lat: p.Lat, Lon: p.Lng}
}

func parseH3(cell CellID) (h3.Cell, bool) {
	c := h3.Cell(h3.IndexFromString(string(cell)))
	return c, c.IsValid()
}
