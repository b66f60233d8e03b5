package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/solgrid/internal/economy"
)

// SnapshotStore persists one encoded state per mode key.
type SnapshotStore interface {
	Load(key string) ([]byte, error)
	Save(key string, blob []byte) error
}

// EventRecorder appends accepted actions to a durable log.
type EventRecorder interface {
	RecordEvent(ev Event) error
}

// Event describes one accepted action.
type Event struct {
	ID          string           `json:"id"`
	Mode        string           `json:"mode"`
	Turn        int              `json:"turn"`
	Player      economy.PlayerID `json:"player,omitempty"`
	Action      Action           `json:"action"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Time        time.Time        `json:"time"`
}

const (
	subscriberBuffer = 32
	recentEvents     = 100
)

// Session serializes all transitions on one live state. It loads the state
// through the sanitizer, writes it back after every accepted action, and fans
// events out to subscribers.
type Session struct {
	engine   *Engine
	store    SnapshotStore
	recorder EventRecorder

	mu     sync.Mutex
	state  State
	recent []Event

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewSession loads the persisted state for the engine's mode, repairs it,
// and saves the repaired form back. A nil store or recorder disables that
// concern.
func NewSession(eng *Engine, store SnapshotStore, recorder EventRecorder) *Session {
	s := &Session{
		engine:   eng,
		store:    store,
		recorder: recorder,
		subs:     make(map[int]chan Event),
	}

	var blob []byte
	if store != nil {
		var err error
		blob, err = store.Load(eng.Mode.Key)
		if err != nil {
			slog.Warn("snapshot load failed, starting fresh", "mode", eng.Mode.Key, "error", err)
			blob = nil
		}
	}
	s.state = eng.Sanitize(blob)
	s.persist(s.state)

	slog.Info("session ready", "mode", eng.Mode.Key, "turn", s.state.Turn, "owned_cells", len(s.state.Cells))
	return s
}

// Engine returns the engine behind the session.
func (s *Session) Engine() *Engine { return s.engine }

// Snapshot returns a deep copy of the live state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies cmd to the live state. Accepted actions are persisted,
// recorded, and published. Rejections return the unchanged state with the
// reason.
func (s *Session) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{State: s.state.Clone()}, err
	}

	player := cmd.Player
	if player == "" && cmd.Action != ActionReset {
		player = s.engine.ActivePlayer(s.state)
	}

	res, err := s.engine.Apply(s.state, cmd)
	if err != nil {
		return Result{State: s.state.Clone()}, err
	}
	if !res.Changed {
		return Result{State: s.state.Clone()}, nil
	}

	s.state = res.State
	s.persist(s.state)

	ev := Event{
		ID:          uuid.NewString(),
		Mode:        s.engine.Mode.Key,
		Turn:        s.state.Turn,
		Player:      player,
		Action:      cmd.Action,
		Description: res.Event,
		Category:    category(cmd.Action),
		Time:        s.engine.now(),
	}
	if s.recorder != nil {
		if err := s.recorder.RecordEvent(ev); err != nil {
			slog.Warn("event record failed", "id", ev.ID, "error", err)
		}
	}
	s.recent = append(s.recent, ev)
	if len(s.recent) > recentEvents {
		s.recent = s.recent[len(s.recent)-recentEvents:]
	}
	s.publish(ev)

	res.State = s.state.Clone()
	return res, nil
}

// RecentEvents returns up to n events accepted since the session started,
// newest first.
func (s *Session) RecentEvents(n int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.recent) {
		n = len(s.recent)
	}
	out := make([]Event, 0, n)
	for i := len(s.recent) - 1; i >= len(s.recent)-n; i-- {
		out = append(out, s.recent[i])
	}
	return out
}

// Reset replaces the live state with a fresh one.
func (s *Session) Reset(ctx context.Context) (State, error) {
	res, err := s.Dispatch(ctx, Command{Action: ActionReset})
	return res.State, err
}

// persist writes the state back. Failures are logged; the in-memory state
// stays authoritative.
func (s *Session) persist(st State) {
	if s.store == nil {
		return
	}
	blob, err := Encode(st)
	if err != nil {
		slog.Error("state encode failed", "mode", st.Mode, "error", err)
		return
	}
	if err := s.store.Save(s.engine.Mode.Key, blob); err != nil {
		slog.Error("snapshot save failed", "mode", st.Mode, "error", fmt.Errorf("save: %w", err))
	}
}

// Subscribe registers a listener for accepted events.
func (s *Session) Subscribe() (int, <-chan Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, subscriberBuffer)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (s *Session) Unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// publish delivers ev to every subscriber, dropping it for slow ones.
func (s *Session) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			slog.Debug("subscriber lagging, event dropped", "sub_id", id, "event", ev.ID)
		}
	}
}

func category(a Action) string {
	switch a {
	case ActionClaim, ActionList, ActionUnlist, ActionBuy:
		return "market"
	case ActionExplore, ActionMine:
		return "survey"
	case ActionBuildBase, ActionTerraform, ActionHarvest:
		return "base"
	case ActionReset:
		return "admin"
	}
	return "other"
}
