package api

import (
	"net/http"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/world"
)

// GeoJSON types for the zone map. Coordinates are [lon, lat].
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   polygon        `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type polygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

func cellPolygon(idx world.Index, c world.CellID) polygon {
	boundary := idx.Boundary(c)
	ring := make([][2]float64, 0, len(boundary)+1)
	for _, p := range boundary {
		ring = append(ring, [2]float64{p.Lon, p.Lat})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return polygon{Type: "Polygon", Coordinates: [][][2]float64{ring}}
}

// zoneFeatures renders every zone cell with its ownership and survey state.
func zoneFeatures(eng *engine.Engine, st engine.State) featureCollection {
	explorers := make(map[world.CellID][]economy.PlayerID)
	landings := make(map[world.CellID]economy.PlayerID)
	for _, p := range eng.Mode.Players {
		team := st.Teams[p.ID]
		for _, c := range team.Explored {
			explorers[c] = append(explorers[c], p.ID)
		}
		if team.LandingCell != "" {
			landings[team.LandingCell] = p.ID
		}
	}
	ring := make(map[world.CellID]bool)
	for _, c := range eng.Zone.MonumentRing() {
		ring[c] = true
	}
	perimeter := make(map[world.CellID]bool)
	for _, c := range eng.Zone.Perimeter() {
		perimeter[c] = true
	}

	idx := eng.Zone.Index()
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, eng.Zone.Len())}
	for _, c := range eng.Zone.Cells() {
		props := map[string]any{
			"cell_id":       c,
			"monument":      eng.Zone.IsMonument(c),
			"monument_ring": ring[c],
			"perimeter":     perimeter[c],
			"richness":      eng.Zone.Richness(c),
			"explored_by":   explorers[c],
		}
		if oc, ok := st.Cells[c]; ok {
			props["owner"] = oc.Owner
			props["listed_price"] = oc.ListedPrice
		}
		if p, ok := landings[c]; ok {
			props["landing_of"] = p
		}
		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Geometry:   cellPolygon(idx, c),
			Properties: props,
		})
	}
	return fc
}

func (s *Server) handleZone(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, zoneFeatures(s.Session.Engine(), s.Session.Snapshot()))
}
