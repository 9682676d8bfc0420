// internal/game/deck.go
package game

import (
	"math/rand/v2"

	"github.com/jason-s-yu/uno/internal/models"
)

// CreateDeck builds the full 76-card deck and shuffles it. Each colour gets a
// single zero and two copies of every value from one to nine.
func CreateDeck() []models.Card {
	deck := make([]models.Card, 0, models.DeckSize)
	for _, color := range models.Colors {
		deck = append(deck, models.NewCard(color, models.Zero))
	}
	for i := 0; i < 2; i++ {
		for _, color := range models.Colors {
			for _, value := range models.Values[1:] {
				deck = append(deck, models.NewCard(color, value))
			}
		}
	}

	shuffleCards(deck)
	return deck
}

// shuffleCards permutes cards in place, uniformly at random.
func shuffleCards(cards []models.Card) {
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
