package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func (s *Server) handleGetCell(w http.ResponseWriter, r *http.Request) {
	if s.Cells == nil {
		writeError(w, http.StatusServiceUnavailable, "cell metadata store not configured")
		return
	}
	id := r.URL.Query().Get("cell_id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "cell_id is required")
		return
	}

	rec, err := s.Cells.GetCell(id)
	if err != nil {
		slog.Error("cell metadata read failed", "cell_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"cell": rec})
}

func (s *Server) handlePostCell(w http.ResponseWriter, r *http.Request) {
	if s.Cells == nil {
		writeError(w, http.StatusServiceUnavailable, "cell metadata store not configured")
		return
	}

	var req struct {
		CellID string          `json:"cell_id"`
		Props  json.RawMessage `json:"props"`
	}
	if err := decodeValidated(r.Body, cellSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.Cells.UpsertCell(req.CellID, req.Props)
	if err != nil {
		slog.Error("cell metadata write failed", "cell_id", req.CellID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "cell": rec})
}
