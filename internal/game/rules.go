// internal/game/rules.go
package game

import "fmt"

// ValidateTurn fails with a *TurnError unless player holds the turn.
func ValidateTurn(g *Game, player int) error {
	if player != g.CurrentPlayerIndex {
		return &TurnError{Player: player, Current: g.CurrentPlayerIndex}
	}
	return nil
}

// ValidatePlay checks that cardIdx names a card in player's hand that matches
// the discard top on colour or value. It does not look at whose turn it is.
func ValidatePlay(g *Game, player, cardIdx int) error {
	if player < 0 || player >= len(g.Players) {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, player)
	}
	hand := g.Players[player].Hand
	if cardIdx < 0 || cardIdx >= len(hand) {
		return fmt.Errorf("%w: %d (hand holds %d cards)", ErrIndexOutOfRange, cardIdx, len(hand))
	}

	top, ok := g.TopCard()
	if !ok {
		// only reachable on a hand-built game; nothing to match against
		return nil
	}
	if card := hand[cardIdx]; !card.Matches(top) {
		return fmt.Errorf("%w: %s on %s", ErrRuleMismatch, card, top)
	}
	return nil
}
