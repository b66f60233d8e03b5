// Package api provides the HTTP API for observing and playing a session.
// GET endpoints are public. Actions and cell metadata writes are rate
// limited per client. Reset requires the admin bearer token.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/persistence"
	"github.com/talgya/solgrid/internal/world"
)

const maxSSEConns = 8

// EventHistory serves the durable action log.
type EventHistory interface {
	RecentEvents(mode string, limit int) ([]engine.Event, error)
}

// CellStore serves free-form cell metadata.
type CellStore interface {
	GetCell(cellID string) (*persistence.CellRecord, error)
	UpsertCell(cellID string, props json.RawMessage) (*persistence.CellRecord, error)
}

// Server serves one session over HTTP.
type Server struct {
	Session  *engine.Session
	History  EventHistory // optional; falls back to the session's recent events
	Cells    CellStore    // optional; /api/cell answers 503 without it
	Port     int
	AdminKey string // Bearer token for reset. Empty = reset disabled.

	limiter  *RateLimiter
	sseConns int32
}

// NewServer builds a server with default write rate limits.
func NewServer(sess *engine.Session, port int, adminKey string) *Server {
	return &Server{
		Session:  sess,
		Port:     port,
		AdminKey: adminKey,
		limiter:  NewRateLimiter(5, 20),
	}
}

// Handler returns the routed handler wrapped in CORS.
func (s *Server) Handler() http.Handler {
	if s.limiter == nil {
		s.limiter = NewRateLimiter(5, 20)
	}

	mux := http.NewServeMux()

	// Public observation.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/state", s.handleState)
	mux.HandleFunc("GET /api/v1/zone", s.handleZone)
	mux.HandleFunc("GET /api/v1/locate", s.handleLocate)
	mux.HandleFunc("GET /api/v1/landmarks", s.handleLandmarks)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)

	// Play.
	mux.HandleFunc("POST /api/v1/action/{name}", RateLimitMiddleware(s.limiter, s.handleAction))
	mux.HandleFunc("GET /api/v1/play", s.handlePlay)

	// Cell metadata.
	mux.HandleFunc("GET /api/cell", s.handleGetCell)
	mux.HandleFunc("POST /api/cell", RateLimitMiddleware(s.limiter, s.handlePostCell))

	// Admin.
	mux.HandleFunc("POST /api/v1/reset", s.adminOnly(s.handleReset))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine. The returned server
// can be shut down by the caller.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no SOLGRID_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	eng := s.Session.Engine()
	st := s.Session.Snapshot()

	listed := 0
	for _, c := range st.Cells {
		if c.Listed() {
			listed++
		}
	}
	var actions []engine.Action
	for _, a := range engine.Actions {
		if eng.Available(a) {
			actions = append(actions, a)
		}
	}

	status := map[string]any{
		"mode":                eng.Mode.Key,
		"title":               eng.Mode.Title,
		"currency":            eng.Mode.Currency,
		"turn":                st.Turn,
		"sol_time":            engine.SolTime(st.ElapsedHours),
		"rotation":            eng.Mode.Rotation,
		"active_player":       eng.ActivePlayer(st),
		"players":             eng.Mode.Players,
		"wallets":             st.Wallets,
		"terraform_progress":  st.TerraformProgress,
		"completed":           st.Completed(),
		"monument_controller": st.MonumentController,
		"zone_cells":          eng.Zone.Len(),
		"owned_cells":         len(st.Cells),
		"listed_cells":        listed,
		"last_event":          st.LastEvent,
		"actions":             actions,
		"rules":               eng.Mode,
	}
	if eng.Mode.Monument != nil {
		status["monument_holdings"] = eng.MonumentHoldings(st)
	}
	writeJSON(w, status)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Snapshot())
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required numbers")
		return
	}

	eng := s.Session.Engine()
	cell, err := eng.Zone.Index().CellAt(lat, lon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := s.Session.Snapshot()
	resp := map[string]any{
		"cell_id":  cell,
		"in_zone":  eng.Zone.Contains(cell),
		"monument": eng.Zone.IsMonument(cell),
		"center":   eng.Zone.Index().Center(cell),
	}
	if oc, ok := st.Cells[cell]; ok {
		resp["owner"] = oc.Owner
		resp["listed_price"] = oc.ListedPrice
	}
	writeJSON(w, resp)
}

func (s *Server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	type landmark struct {
		ID        string       `json:"id"`
		Name      string       `json:"name"`
		Mission   string       `json:"mission"`
		EventType string       `json:"event_type"`
		EventDate string       `json:"event_date"`
		Source    string       `json:"source,omitempty"`
		Lat       float64      `json:"lat"`
		Lon       float64      `json:"lon"`
		CellID    world.CellID `json:"cell_id,omitempty"`
	}

	eng := s.Session.Engine()
	out := make([]landmark, 0, len(eng.Mode.Landmarks))
	for _, l := range eng.Mode.Landmarks {
		cell, _ := eng.Zone.Index().CellAt(l.Lat, l.Lon)
		out = append(out, landmark{
			ID: l.ID, Name: l.Name, Mission: l.Mission,
			EventType: l.EventType, EventDate: l.EventDate, Source: l.Source,
			Lat: l.Lat, Lon: l.Lon, CellID: cell,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, 500)
	}

	if s.History == nil {
		writeJSON(w, s.Session.RecentEvents(limit))
		return
	}
	events, err := s.History.RecentEvents(s.Session.Engine().Mode.Key, limit)
	if err != nil {
		slog.Error("event history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "event history unavailable")
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	st, err := s.Session.Reset(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	slog.Info("session reset via API", "mode", st.Mode)
	writeJSON(w, map[string]any{"ok": true, "state": st})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
