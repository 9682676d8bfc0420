// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/sirupsen/logrus"
)

const (
	spectateSubprotocol = "spectate"
	wsWriteTimeout      = 5 * time.Second
)

// SpectatorMessage is a request sent by a spectator. Supported types are
// "ping" and "sync".
type SpectatorMessage struct {
	Type string `json:"type"`
}

// handleSpectate upgrades the connection to a read-only feed of a game's
// events. The first message is a private_sync_state snapshot; the feed closes
// with GameEndedClose after game_end.
func (s *GameServer) handleSpectate(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	// Subscribe under the game lock so no event falls between the snapshot and
	// the feed.
	var (
		syncEv game.GameEvent
		sp     *Spectator
	)
	err = s.View(r.Context(), id, func(g *game.Game) error {
		syncEv = g.SyncEvent()
		sp = s.hub.Subscribe(id)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	defer s.hub.Unsubscribe(sp)

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{spectateSubprotocol},
		OriginPatterns: s.OriginPatterns,
	})
	if err != nil {
		s.logger.Warnf("WebSocket accept error for game %d: %v", id, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

	if c.Subprotocol() != spectateSubprotocol {
		s.logger.Warnf("Spectator for game %d connected with invalid subprotocol: %q", id, c.Subprotocol())
		c.Close(BadSubprotocolError, "Client must use the 'spectate' subprotocol.")
		return
	}
	middleware.LogWebSocketConnect(s.logger, r.RemoteAddr, r.URL.Path)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := writeEvent(ctx, c, game.EventBytes(syncEv)); err != nil {
		middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, err)
		return
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- s.readSpectatorMessages(ctx, c, id)
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			var err error
			select {
			case err = <-readErr:
			default:
			}
			middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, err)
			return
		case msg, ok := <-sp.send:
			if !ok {
				middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, nil)
				c.Close(GameEndedClose, "game finished")
				return
			}
			if err := writeEvent(ctx, c, msg); err != nil {
				middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, err)
				return
			}
		}
	}
}

// readSpectatorMessages answers pings and resync requests until the client
// goes away.
func (s *GameServer) readSpectatorMessages(ctx context.Context, c *websocket.Conn, gameID int) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg SpectatorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		switch msg.Type {
		case "ping":
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
		case "sync":
			var ev game.GameEvent
			err := s.View(ctx, gameID, func(g *game.Game) error {
				ev = g.SyncEvent()
				return nil
			})
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			if err := writeEvent(ctx, c, game.EventBytes(ev)); err != nil {
				return err
			}
		default:
			s.logger.WithFields(logrus.Fields{"game_id": gameID, "type": msg.Type}).Debug("unknown spectator message")
			sendWsError(ctx, c, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

func writeEvent(ctx context.Context, c *websocket.Conn, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}

// sendWsMessage marshals a message and sends it to the WebSocket client.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return
	}
	_ = writeEvent(ctx, c, msgBytes)
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
