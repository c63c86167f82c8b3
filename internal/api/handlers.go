package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/raido/internal/models"
)

// Syncer is the slice of the engine runner the API needs.
type Syncer interface {
	Running() bool
	Trigger() bool
	LastSummary() *models.CycleSummary
}

// HistorySource reads recent cycle summaries from the journal.
type HistorySource interface {
	Recent(limit int) ([]models.CycleSummary, error)
}

// Handler holds API route handlers.
type Handler struct {
	syncer  Syncer
	history HistorySource
}

// NewHandler creates a new Handler.
func NewHandler(syncer Syncer, history HistorySource) *Handler {
	return &Handler{syncer: syncer, history: history}
}

// Status handles GET /api/status: the last completed cycle plus whether a
// cycle is currently running.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"running":    h.syncer.Running(),
		"last_cycle": h.syncer.LastSummary(),
	})
}

// History handles GET /api/history?limit=N.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cycles, err := h.history.Recent(limit)
	if err != nil {
		slog.Error("history query failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if cycles == nil {
		cycles = []models.CycleSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cycles": cycles})
}

// TriggerSync handles POST /api/sync: schedules an out-of-band cycle.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.syncer.Running() {
		writeJSON(w, http.StatusConflict, errorBody("sync already running"))
		return
	}
	if !h.syncer.Trigger() {
		writeJSON(w, http.StatusConflict, errorBody("sync already scheduled"))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}
