package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/solgrid/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// playCommand is one client message on the play channel.
type playCommand struct {
	Action engine.Action `json:"action"`
	actionRequest
}

// playMessage is one server message on the play channel.
type playMessage struct {
	Type   string          `json:"type"` // welcome, result, event
	Mode   string          `json:"mode,omitempty"`
	Status int             `json:"status,omitempty"`
	Result *actionResponse `json:"result,omitempty"`
	Event  *engine.Event   `json:"event,omitempty"`
	State  *engine.State   `json:"state,omitempty"`
}

// handlePlay upgrades to a WebSocket that accepts commands and streams
// every accepted event to the client.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := make(chan playMessage, 32)
	subID, events := s.Session.Subscribe()
	defer s.Session.Unsubscribe(subID)

	st := s.Session.Snapshot()
	out <- playMessage{Type: "welcome", Mode: st.Mode, State: &st}

	// Writer goroutine.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-out:
				if err := writeWS(conn, msg); err != nil {
					cancel()
					return
				}
			case ev, ok := <-events:
				if !ok {
					cancel()
					return
				}
				if err := writeWS(conn, playMessage{Type: "event", Event: &ev}); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// Reader loop.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var cmd playCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			continue
		}
		if _, ok := parseAction(string(cmd.Action)); !ok {
			continue
		}

		res, err := s.Session.Dispatch(ctx, engine.Command{
			Action: cmd.Action,
			Player: cmd.Player,
			Cell:   cmd.Cell,
			Price:  cmd.Price,
		})
		status, body := actionResult(res, err)
		select {
		case out <- playMessage{Type: "result", Status: status, Result: &body}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	slog.Debug("play channel closed", "sub_id", subID)
}

func writeWS(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
