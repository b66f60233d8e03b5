package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/world"
)

type actionRequest struct {
	Player economy.PlayerID `json:"player"`
	Cell   world.CellID     `json:"cell_id"`
	Price  int64            `json:"price"`
}

type actionResponse struct {
	Changed bool         `json:"changed"`
	Event   string       `json:"event,omitempty"`
	Error   string       `json:"error,omitempty"`
	State   engine.State `json:"state"`
}

func parseAction(name string) (engine.Action, bool) {
	for _, a := range engine.Actions {
		if string(a) == name {
			return a, true
		}
	}
	return "", false
}

// handleAction runs one player command.
// 200 on acceptance or a silent no-op, 422 on a validation rejection.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	action, ok := parseAction(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	var req actionRequest
	if err := decodeValidated(r.Body, commandSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.Session.Dispatch(r.Context(), engine.Command{
		Action: action,
		Player: req.Player,
		Cell:   req.Cell,
		Price:  req.Price,
	})
	status, body := actionResult(res, err)
	if status == http.StatusInternalServerError {
		slog.Error("action failed", "action", action, "player", req.Player, "error", err)
	}
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
	}
	writeJSON(w, body)
}

func actionResult(res engine.Result, err error) (int, actionResponse) {
	body := actionResponse{Changed: res.Changed, Event: res.Event, State: res.State}
	switch {
	case err == nil:
		return http.StatusOK, body
	case engine.IsRejection(err):
		body.Error = err.Error()
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		body.Error = err.Error()
		return http.StatusServiceUnavailable, body
	default:
		body.Error = "internal error"
		return http.StatusInternalServerError, body
	}
}
