package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hostpulse/hostpulse/internal/engine"
	"github.com/hostpulse/hostpulse/internal/store"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads monitor state from the store and engine and returns JSON responses.
type Handler struct {
	store  *store.Store
	engine *engine.Engine
	mux    *http.ServeMux
}

// New creates a Handler wired to the given store and engine and registers all
// routes.
func New(st *store.Store, eng *engine.Engine) http.Handler {
	h := &Handler{store: st, engine: eng, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/v1/alerts", h.alerts)
	h.mux.HandleFunc("/api/v1/rules", h.rules)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — loop state, tick progress, and whether
// a fresh snapshot is available.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	st := h.engine.Status()
	resp := HealthResponse{
		State:      st.State,
		Ticks:      st.Ticks,
		AlertCount: h.store.AlertCount(),
		RuleCount:  len(h.engine.Rules()),
	}
	if !st.LastTick.IsZero() {
		resp.LastTick = st.LastTick.UTC().Format(time.RFC3339)
	}
	_, _, resp.SnapshotOK = h.store.Snapshot()

	jsonResp(w, http.StatusOK, resp)
}

// snapshot returns GET /api/v1/snapshot — the latest metric readings.
// Returns 404 when no fresh snapshot exists (before the first tick, or the
// source has been failing for longer than the staleness TTL).
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, updatedAt, ok := h.store.Snapshot()
	if !ok {
		jsonErr(w, http.StatusNotFound, "no fresh snapshot")
		return
	}

	jsonResp(w, http.StatusOK, SnapshotResponse{
		Host:      snap.Host,
		TakenAt:   snap.TakenAt.UTC().Format(time.RFC3339),
		UpdatedAt: updatedAt.UTC().Format(time.RFC3339),
		Values:    snap.Values,
	})
}

// alerts returns GET /api/v1/alerts — recently fired alerts, newest first.
// An optional ?limit=N query parameter caps the result.
func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			jsonErr(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	jsonResp(w, http.StatusOK, AlertsResponse{Alerts: h.store.Alerts(limit)})
}

// rules returns GET /api/v1/rules — the active rule set in evaluation order.
func (h *Handler) rules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	cfgRules := h.engine.Rules()
	out := make([]RuleResponse, 0, len(cfgRules))
	for _, rule := range cfgRules {
		sev := rule.Severity
		if sev == "" {
			sev = "warning"
		}
		out = append(out, RuleResponse{Metric: rule.Metric, Limit: rule.Limit, Severity: sev})
	}
	jsonResp(w, http.StatusOK, out)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
