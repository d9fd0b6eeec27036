package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/pacgrid/internal/auth"
	"github.com/freeeve/pacgrid/internal/logger"
	"github.com/freeeve/pacgrid/internal/model"
	"github.com/freeeve/pacgrid/internal/repository"
)

// MatchHandler serves recorded match history.
type MatchHandler struct {
	repo repository.DecisionRepository
}

// NewMatchHandler creates a MatchHandler. A nil repo answers 503.
func NewMatchHandler(repo repository.DecisionRepository) *MatchHandler {
	return &MatchHandler{repo: repo}
}

// Summary handles GET /api/matches/{id}.
func (h *MatchHandler) Summary(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	s, err := h.repo.Summary(r.Context(), matchID)
	if err != nil {
		l := logger.ForRequest(r.Context())
		l.Error().Err(err).Str("matchId", matchID).Msg("Match summary failed")
		writeError(w, http.StatusInternalServerError, "failed to load match")
		return
	}
	if s == nil {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListTicks handles GET /api/matches/{id}/ticks.
func (h *MatchHandler) ListTicks(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	ticks, err := h.repo.ListTicks(r.Context(), matchID)
	if err != nil {
		l := logger.ForRequest(r.Context())
		l.Error().Err(err).Str("matchId", matchID).Msg("List ticks failed")
		writeError(w, http.StatusInternalServerError, "failed to load ticks")
		return
	}
	if ticks == nil {
		ticks = []model.TickRecord{}
	}
	writeJSON(w, http.StatusOK, ticks)
}

func (h *MatchHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "match history is not recorded")
		return "", false
	}
	matchID := r.PathValue("id")
	if c := auth.ClaimsFromContext(r.Context()); c == nil || !c.Allows(matchID) {
		writeError(w, http.StatusForbidden, "token does not cover this match")
		return "", false
	}
	return matchID, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
