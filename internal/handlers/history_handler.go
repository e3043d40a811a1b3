package handlers

import (
	"net/http"
	"strconv"

	"wordclash/internal/service"
)

// HistoryHandler serves stored session logs
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List returns session summaries, newest first. ?limit= caps the count.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = n
	}

	sessions, err := h.history.List(r.Context(), limit)
	if err != nil {
		respondWithServiceError(w, "Failed to list sessions", err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

// Get returns one session log with its questions
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Failed to load session", err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Delete removes a session log
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats returns totals over every stored session
func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.history.Stats(r.Context())
	if err != nil {
		respondWithServiceError(w, "Failed to compute stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
