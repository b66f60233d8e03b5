// Package world provides the spatial index, trade zone, and landing placement.
// Cells are opaque string identifiers produced by an Index; two implementations
// exist: geographic H3 cells and a planar axial grid.
package world

import (
	"fmt"
	"math"
)

// CellID identifies one hexagonal cell at the index's fixed resolution.
type CellID string

// LatLng is a point in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Index maps coordinates to cells and cells to geometry.
type Index interface {
	// CellAt returns the cell containing the point.
	CellAt(lat, lon float64) (CellID, error)
	// Ring returns every cell within k steps of cell, cell itself first.
	// k=0 returns just the cell.
	Ring(cell CellID, k int) []CellID
	// Boundary returns the polygon vertices of the cell in order.
	Boundary(cell CellID) []LatLng
	// Center returns the centroid of the cell.
	Center(cell CellID) LatLng
}

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates, indexed like
// HexNeighborDirections.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

// AxialIndex is a planar hex grid laid over longitude (x) and latitude (y).
// Cells are pointy-top hexes of the given size in degrees; ids are "q,r".
type AxialIndex struct {
	Size float64
}

// NewAxialIndex returns an axial index with hexes of size degrees.
func NewAxialIndex(size float64) *AxialIndex {
	if size <= 0 {
		size = 0.05
	}
	return &AxialIndex{Size: size}
}

// ID formats an axial coordinate as a cell id.
func (h HexCoord) ID() CellID {
	return CellID(fmt.Sprintf("%d,%d", h.Q, h.R))
}

// ParseHexCoord parses a "q,r" cell id.
func ParseHexCoord(id CellID) (HexCoord, error) {
	var c HexCoord
	if _, err := fmt.Sscanf(string(id), "%d,%d", &c.Q, &c.R); err != nil {
		return c, fmt.Errorf("parse axial cell %q: %w", id, err)
	}
	return c, nil
}

// CellAt rounds a point to the hex containing it.
func (a *AxialIndex) CellAt(lat, lon float64) (CellID, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return "", fmt.Errorf("invalid coordinate (%v, %v)", lat, lon)
	}
	if lat < -90 || lat > 90 {
		return "", fmt.Errorf("latitude %v out of range", lat)
	}
	q := (math.Sqrt(3)/3*lon - lat/3) / a.Size
	r := (2.0 / 3.0 * lat) / a.Size
	return cubeRound(q, r).ID(), nil
}

// Ring returns the filled disk of radius k, center first, then ring by ring.
func (a *AxialIndex) Ring(cell CellID, k int) []CellID {
	center, err := ParseHexCoord(cell)
	if err != nil || k < 0 {
		return nil
	}
	result := []CellID{center.ID()}
	for radius := 1; radius <= k; radius++ {
		// Start at the radius-th step in direction 4 and walk the six sides.
		h := HexCoord{
			Q: center.Q + HexNeighborDirections[4].Q*radius,
			R: center.R + HexNeighborDirections[4].R*radius,
		}
		for side := 0; side < 6; side++ {
			for step := 0; step < radius; step++ {
				result = append(result, h.ID())
				h = h.Neighbors()[side]
			}
		}
	}
	return result
}

// Center converts the axial coordinate back to (lat, lon).
func (a *AxialIndex) Center(cell CellID) LatLng {
	c, err := ParseHexCoord(cell)
	if err != nil {
		return LatLng{}
	}
	lon := a.Size * (math.Sqrt(3)*float64(c.Q) + math.Sqrt(3)/2*float64(c.R))
	lat := a.Size * (1.5 * float64(c.R))
	return LatLng{Lat: lat, Lon: lon}
}

// Boundary returns the six corners of the hex, counter-clockwise from east.
func (a *AxialIndex) Boundary(cell CellID) []LatLng {
	if _, err := ParseHexCoord(cell); err != nil {
		return nil
	}
	center := a.Center(cell)
	corners := make([]LatLng, 0, 6)
	for i := 0; i < 6; i++ {
		angle := math.Pi / 180 * float64(60*i-30)
		corners = append(corners, LatLng{
			Lat: center.Lat + a.Size*math.Sin(angle),
			Lon: center.Lon + a.Size*math.Cos(angle),
		})
	}
	return corners
}

// cubeRound converts fractional axial coordinates to the nearest hex.
func cubeRound(fq, fr float64) HexCoord {
	fs := -fq - fr
	q := math.Round(fq)
	r := math.Round(fr)
	s := math.Round(fs)

	dq := math.Abs(q - fq)
	dr := math.Abs(r - fr)
	ds := math.Abs(s - fs)

	if dq > dr && dq > ds {
		q = -r - s
	} else if dr > ds {
		r = -q - s
	}
	return HexCoord{Q: int(q), R: int(r)}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
