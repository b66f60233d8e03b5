// Package autopilot plays one seat of a session through the HTTP API.
// Each cycle observes the session, picks one action with a fixed priority
// heuristic, and submits it through the public action endpoint.
package autopilot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/world"
)

// Snapshot holds everything collected during one observation cycle.
type Snapshot struct {
	Status Status
	State  engine.State
	Zone   []ZoneCell
}

// Status mirrors GET /api/v1/status.
type Status struct {
	Mode         string           `json:"mode"`
	Turn         int              `json:"turn"`
	SolTime      string           `json:"sol_time"`
	ActivePlayer economy.PlayerID `json:"active_player"`
	Completed    bool             `json:"completed"`
	Actions      []engine.Action  `json:"actions"`
	Rules        economy.Mode     `json:"rules"`
}

// ZoneCell is the static part of one GET /api/v1/zone feature.
type ZoneCell struct {
	ID           world.CellID `json:"cell_id"`
	Monument     bool         `json:"monument"`
	MonumentRing bool         `json:"monument_ring"`
	Richness     float64      `json:"richness"`
}

// Observer fetches session state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client

	zone []ZoneCell
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches status and state. The zone layout never changes within a
// session, so it is fetched once and reused.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/state", &snap.State); err != nil {
		return nil, fmt.Errorf("fetch state: %w", err)
	}

	if o.zone == nil {
		var fc struct {
			Features []struct {
				Properties ZoneCell `json:"properties"`
			} `json:"features"`
		}
		if err := o.fetchJSON(ctx, "/api/v1/zone", &fc); err != nil {
			return nil, fmt.Errorf("fetch zone: %w", err)
		}
		zone := make([]ZoneCell, 0, len(fc.Features))
		for _, f := range fc.Features {
			zone = append(zone, f.Properties)
		}
		o.zone = zone
	}
	snap.Zone = o.zone

	return snap, nil
}

// Forget drops the cached zone, e.g. after a reset switched modes.
func (o *Observer) Forget() { o.zone = nil }

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
