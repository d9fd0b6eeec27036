package handler

import (
	"net/http"

	"github.com/freeeve/pacgrid/internal/auth"
	"github.com/freeeve/pacgrid/internal/middleware"
	"github.com/freeeve/pacgrid/internal/repository"
)

// NewRouter wires the spectator endpoints:
//
//	GET /healthz
//	GET /ws?token=...&match=...
//	GET /api/matches/{id}        (bearer token)
//	GET /api/matches/{id}/ticks  (bearer token)
func NewRouter(hub *Hub, tokens *auth.TokenManager, repo repository.DecisionRepository) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"spectators": hub.ConnectionCount(),
		})
	})

	ws := NewWSHandler(hub, tokens)
	mux.HandleFunc("GET /ws", ws.ServeWS)

	matches := NewMatchHandler(repo)
	api := http.NewServeMux()
	api.HandleFunc("GET /matches/{id}", matches.Summary)
	api.HandleFunc("GET /matches/{id}/ticks", matches.ListTicks)
	mux.Handle("/api/", http.StripPrefix("/api", middleware.Chain(api, auth.Middleware(tokens), middleware.JSON)))

	return middleware.Chain(mux, middleware.Logger, middleware.Recover, middleware.CORS("*"))
}
