package autopilot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/world"
)

// Outcome is the response from POST /api/v1/action/{name}. A rejected
// action is an Outcome with Error set, not a Go error.
type Outcome struct {
	Changed bool   `json:"changed"`
	Event   string `json:"event"`
	Error   string `json:"error"`
}

// Rejected reports whether the server refused the action.
func (o *Outcome) Rejected() bool { return o.Error != "" }

// Actor submits actions for one player.
type Actor struct {
	BaseURL    string
	Player     economy.PlayerID
	HTTPClient *http.Client
}

// NewActor creates an Actor playing as player against the given API base URL.
func NewActor(baseURL string, player economy.PlayerID) *Actor {
	return &Actor{
		BaseURL: baseURL,
		Player:  player,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type actionBody struct {
	Player economy.PlayerID `json:"player"`
	Cell   world.CellID     `json:"cell_id,omitempty"`
	Price  int64            `json:"price,omitempty"`
}

// Act submits the decision's action.
func (a *Actor) Act(ctx context.Context, d Decision) (*Outcome, error) {
	body, err := json.Marshal(actionBody{Player: a.Player, Cell: d.Cell, Price: d.Price})
	if err != nil {
		return nil, fmt.Errorf("marshal action: %w", err)
	}

	url := a.BaseURL + "/api/v1/action/" + string(d.Action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", d.Action, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("%s failed (%d): %s", d.Action, resp.StatusCode, string(respBody))
	}

	var out Outcome
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
