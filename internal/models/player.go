package models

// Player is a seat at the table. ID is the 0-based seat index assigned when the
// game is created.
type Player struct {
	ID   int    `json:"id"`
	Hand []Card `json:"hand"`
}

// NewPlayer returns a player with an empty hand.
func NewPlayer(id int) *Player {
	return &Player{ID: id, Hand: []Card{}}
}

// HandSize returns the number of cards the player holds.
func (p *Player) HandSize() int {
	return len(p.Hand)
}

// RemoveCard takes the card at idx out of the hand. The caller checks bounds.
func (p *Player) RemoveCard(idx int) Card {
	c := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return c
}
