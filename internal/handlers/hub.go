// internal/handlers/hub.go
package handlers

import (
	"sync"

	"github.com/sirupsen/logrus"
)

const spectatorBuffer = 64

// Spectator is one websocket client watching a game.
type Spectator struct {
	gameID int
	send   chan []byte
}

// Hub fans game events out to spectators. Publishing never blocks: a
// spectator whose buffer is full misses the message.
type Hub struct {
	mu     sync.Mutex
	games  map[int]map[*Spectator]struct{}
	logger *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		games:  make(map[int]map[*Spectator]struct{}),
		logger: logger,
	}
}

func (h *Hub) Subscribe(gameID int) *Spectator {
	sp := &Spectator{gameID: gameID, send: make(chan []byte, spectatorBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.games[gameID]
	if !ok {
		subs = make(map[*Spectator]struct{})
		h.games[gameID] = subs
	}
	subs[sp] = struct{}{}
	return sp
}

// Unsubscribe is a no-op for a spectator already removed by CloseGame.
func (h *Hub) Unsubscribe(sp *Spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.games[sp.gameID]
	if !ok {
		return
	}
	if _, ok := subs[sp]; !ok {
		return
	}
	delete(subs, sp)
	close(sp.send)
	if len(subs) == 0 {
		delete(h.games, sp.gameID)
	}
}

func (h *Hub) Publish(gameID int, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sp := range h.games[gameID] {
		select {
		case sp.send <- msg:
		default:
			h.logger.WithField("game_id", gameID).Warn("spectator buffer full, dropping event")
		}
	}
}

// CloseGame disconnects every spectator of gameID.
func (h *Hub) CloseGame(gameID int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sp := range h.games[gameID] {
		close(sp.send)
	}
	delete(h.games, gameID)
}

// Spectators returns the number of spectators watching gameID.
func (h *Hub) Spectators(gameID int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.games[gameID])
}
