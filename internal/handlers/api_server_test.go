// internal/handlers/api_server_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesRegister(t *testing.T) {
	logger, _ := test.NewNullLogger()
	gs := NewGameServer(game.NewMemoryStore(), logger)

	var mux *http.ServeMux
	require.NotPanics(t, func() { mux = gs.Routes() })

	tests := []struct {
		method, target, pattern string
	}{
		{http.MethodPost, "/game/create", "POST /game/create"},
		{http.MethodGet, "/game/1/status", "GET /game/{id}/status"},
		{http.MethodGet, "/game/1/turn", "GET /game/{id}/turn"},
		{http.MethodGet, "/game/1/players/0/hand", "GET /game/{id}/players/{player}/hand"},
		{http.MethodPut, "/game/1/play", "PUT /game/{id}/play"},
		{http.MethodPut, "/game/1/pass", "PUT /game/{id}/pass"},
		{http.MethodGet, "/game/1/ws", "GET /game/{id}/ws"},
		{http.MethodGet, "/healthz", "GET /healthz"},
	}
	for _, tt := range tests {
		_, pattern := mux.Handler(httptest.NewRequest(tt.method, tt.target, nil))
		assert.Equal(t, tt.pattern, pattern, tt.target)
	}
}
