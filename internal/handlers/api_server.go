// internal/handlers/api_server.go
package handlers

import (
	"net/http"
)

// Routes registers every game endpoint on a new ServeMux.
func (s *GameServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /game/create", s.handleCreateGame)
	mux.HandleFunc("GET /game/{id}/status", s.handleStatus)
	mux.HandleFunc("GET /game/{id}/turn", s.handleTurn)
	mux.HandleFunc("GET /game/{id}/players/{player}/hand", s.handleHand)
	mux.HandleFunc("PUT /game/{id}/play", s.handlePlay)
	mux.HandleFunc("PUT /game/{id}/pass", s.handlePass)
	mux.HandleFunc("GET /game/{id}/ws", s.handleSpectate)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}
