package autopilot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/talgya/solgrid/internal/economy"
)

// Pilot runs observe → decide → act cycles for one player.
type Pilot struct {
	Observer *Observer
	Actor    *Actor
	Memory   *Memory
}

// New creates a pilot for player against the API at baseURL. memoryPath may
// be empty to keep memory in process only.
func New(baseURL string, player economy.PlayerID, memoryPath string) *Pilot {
	return &Pilot{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL, player),
		Memory:   LoadMemory(memoryPath),
	}
}

// RunCycle executes one cycle and returns its record.
func (p *Pilot) RunCycle(ctx context.Context) (CycleRecord, error) {
	snap, err := p.Observer.Observe(ctx)
	if err != nil {
		return CycleRecord{}, fmt.Errorf("observe: %w", err)
	}
	pos := Assess(snap, p.Actor.Player)
	slog.Debug("observation complete",
		"turn", snap.Status.Turn,
		"sol_time", snap.Status.SolTime,
		"phase", pos.Phase,
		"balance", pos.Balance,
		"owned", len(pos.Owned),
	)

	d := Decide(snap, pos, p.Memory)
	rec := CycleRecord{
		Turn:      snap.Status.Turn,
		Action:    d.Action,
		Cell:      d.Cell,
		Phase:     pos.Phase,
		Balance:   pos.Balance,
		Rationale: d.Rationale,
	}
	if d.Wait() {
		slog.Info("autopilot waiting", "player", p.Actor.Player, "rationale", d.Rationale)
		return rec, nil
	}

	out, err := p.Actor.Act(ctx, d)
	if err != nil {
		return rec, fmt.Errorf("act: %w", err)
	}
	if out.Rejected() {
		rec.Rejection = out.Error
		slog.Warn("action rejected", "action", d.Action, "cell", d.Cell, "reason", out.Error)
	} else {
		slog.Info("action accepted", "action", d.Action, "cell", d.Cell, "event", out.Event)
	}

	p.Memory.Record(rec)
	if err := p.Memory.Save(); err != nil {
		slog.Error("autopilot memory save failed", "error", err)
	}
	return rec, nil
}

// Run cycles every interval until ctx is done.
func (p *Pilot) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.RunCycle(ctx); err != nil {
			slog.Error("autopilot cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// WaitForAPI polls the status endpoint with exponential backoff until it
// responds or ctx is done.
func WaitForAPI(ctx context.Context, baseURL string) error {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	client := &http.Client{Timeout: 10 * time.Second}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/status", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("solgrid API is ready")
				return nil
			}
		}
		slog.Info("solgrid not ready, retrying...", "backoff", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
