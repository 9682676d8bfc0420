// internal/game/sync_state.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
)

// GameStatus is the public view of a game: everything except the contents of
// the hands and the order of the draw pile.
type GameStatus struct {
	GameID          int            `json:"game_id"`
	State           State          `json:"state"`
	CurrentPlayer   int            `json:"current_player"`
	TopCard         *models.Card   `json:"top_card,omitempty"`
	CardsPerPlayer  map[string]int `json:"cards_per_player"`
	StockpileSize   int            `json:"draw_pile"`
	DiscardPileSize int            `json:"discard_pile"`
	Turn            int            `json:"turn"`
	Winner          *int           `json:"winner,omitempty"`
}

// Snapshot builds the public status of g.
func (g *Game) Snapshot() GameStatus {
	st := GameStatus{
		GameID:          g.ID,
		State:           g.State(),
		CurrentPlayer:   g.CurrentPlayerIndex,
		CardsPerPlayer:  make(map[string]int, len(g.Players)),
		StockpileSize:   len(g.Deck),
		DiscardPileSize: len(g.DiscardPile),
		Turn:            g.TurnID,
		Winner:          g.Winner,
	}
	if top, ok := g.TopCard(); ok {
		st.TopCard = &top
	}
	for _, p := range g.Players {
		st.CardsPerPlayer[playerKey(p.ID)] = p.HandSize()
	}
	return st
}

// SyncEvent wraps the snapshot in an event for a newly connected spectator.
// It does not consume an action index.
func (g *Game) SyncEvent() GameEvent {
	st := g.Snapshot()
	return GameEvent{
		Type:   EventPrivateSyncState,
		GameID: g.ID,
		Index:  g.ActionIndex,
		State:  &st,
	}
}

func playerKey(id int) string {
	return fmt.Sprintf("player_%d", id)
}
