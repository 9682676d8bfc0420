// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the spectator feed.
// These provide more specific reasons for closure than standard codes.
const (
	BadSubprotocolError = 3000 // Client connected without the "spectate" subprotocol.
	GameEndedClose      = 3004 // The watched game finished; no more events will follow.
)
