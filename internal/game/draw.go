// internal/game/draw.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
	log "github.com/sirupsen/logrus"
)

// Draw removes the top card of the draw pile and returns it; the caller puts it
// wherever it belongs. When the draw pile is empty, every discard except the
// visible top card is shuffled back into it first. If that still leaves
// nothing to draw, Draw returns ErrDeckExhausted.
func Draw(g *Game) (models.Card, error) {
	if len(g.Deck) == 0 {
		g.reshuffleDiscardPile()
	}
	if len(g.Deck) == 0 {
		return models.Card{}, fmt.Errorf("game %d: %w", g.ID, ErrDeckExhausted)
	}

	card := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return card, nil
}

// reshuffleDiscardPile turns the discard pile, minus its top card, into a new
// shuffled draw pile. The top card stays visible.
func (g *Game) reshuffleDiscardPile() {
	if len(g.DiscardPile) == 0 {
		return
	}
	top := g.DiscardPile[len(g.DiscardPile)-1]
	rest := g.DiscardPile[:len(g.DiscardPile)-1]

	g.Deck = append(make([]models.Card, 0, len(rest)), rest...)
	shuffleCards(g.Deck)
	g.DiscardPile = []models.Card{top}

	if len(g.Deck) == 0 {
		return
	}
	log.WithFields(log.Fields{"game_id": g.ID, "stockpile": len(g.Deck)}).Debug("reshuffled discard pile into stockpile")
	g.fireEvent(GameEvent{
		Type: EventGameReshuffleStockpile,
		Card: &top,
		Payload: map[string]interface{}{
			"stockpileSize": len(g.Deck),
		},
	})
}
