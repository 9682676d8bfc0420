// internal/game/game.go
package game

import (
	"fmt"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
	log "github.com/sirupsen/logrus"
)

const (
	MinPlayers      = 2
	MaxPlayers      = 10
	InitialHandSize = 5
)

// State is the externally observable lifecycle stage of a game. Setup happens
// entirely inside NewGame and is never reported.
type State string

const (
	StateActive   State = "active"
	StateTerminal State = "terminal"
)

// GameEventType names an event broadcast to spectators and the action history.
type GameEventType string

const (
	EventGameCreated            GameEventType = "game_created"
	EventPlayerPlayCard         GameEventType = "player_play_card"
	EventPlayerPass             GameEventType = "player_pass"
	EventGamePlayerTurn         GameEventType = "game_player_turn"
	EventGameReshuffleStockpile GameEventType = "game_reshuffle_stockpile"
	EventGameEnd                GameEventType = "game_end"
	EventPrivateSyncState       GameEventType = "private_sync_state"
)

// GameEvent is the single wire format for everything that happens in a game.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	GameID  int                    `json:"game_id"`
	Index   int                    `json:"index"`
	Player  *int                   `json:"player,omitempty"`
	Card    *models.Card           `json:"card,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *GameStatus            `json:"state,omitempty"`
}

// Game holds the entire state for a single game. It is not safe for
// concurrent use; callers serialise access per game.
type Game struct {
	ID      int              `json:"id"`
	Players []*models.Player `json:"players"`

	// Deck is the draw pile and DiscardPile the face-up pile. The top of each
	// is the last element.
	Deck        []models.Card `json:"deck"`
	DiscardPile []models.Card `json:"discard_pile"`

	CurrentPlayerIndex int  `json:"current_player"`
	GameOver           bool `json:"game_over"`
	Winner             *int `json:"winner,omitempty"`

	TurnID      int       `json:"turn_id"`      // completed play/pass actions
	ActionIndex int       `json:"action_index"` // events fired, for history ordering
	CreatedAt   time.Time `json:"created_at"`
	FinishedAt  time.Time `json:"finished_at"`

	// BroadcastFn receives every event. If nil, events are only counted.
	BroadcastFn func(ev GameEvent) `json:"-"`
}

// PlayResult is the outcome of a successful PlayCard.
type PlayResult struct {
	Played     models.Card `json:"played_card"`
	NextPlayer int         `json:"next_player"`
	Won        bool        `json:"won"`
	Winner     int         `json:"winner"`
}

// PassResult is the outcome of a successful PassTurn.
type PassResult struct {
	Drawn      models.Card `json:"drawn_card"`
	NextPlayer int         `json:"next_player"`
}

// NewGame sets up a game for playerCount players: it shuffles a fresh deck,
// deals InitialHandSize cards round-robin starting at player 0, and turns one
// more card face up to seed the discard pile.
func NewGame(id, playerCount int) (*Game, error) {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidPlayerCount, playerCount)
	}

	g := &Game{
		ID:          id,
		Players:     make([]*models.Player, playerCount),
		Deck:        CreateDeck(),
		DiscardPile: []models.Card{},
		CreatedAt:   time.Now().UTC(),
	}
	for i := range g.Players {
		g.Players[i] = models.NewPlayer(i)
	}

	for round := 0; round < InitialHandSize; round++ {
		for _, p := range g.Players {
			card, err := Draw(g)
			if err != nil {
				return nil, fmt.Errorf("dealing: %w", err)
			}
			p.Hand = append(p.Hand, card)
		}
	}

	top, err := Draw(g)
	if err != nil {
		return nil, fmt.Errorf("seeding discard pile: %w", err)
	}
	g.DiscardPile = append(g.DiscardPile, top)

	log.WithFields(log.Fields{"game_id": id, "players": playerCount}).Debug("game dealt")
	return g, nil
}

// AnnounceStart broadcasts the creation of the game and the first turn. Call it
// once BroadcastFn is wired.
func (g *Game) AnnounceStart() {
	top, _ := g.TopCard()
	g.fireEvent(GameEvent{
		Type: EventGameCreated,
		Card: &top,
		Payload: map[string]interface{}{
			"players": len(g.Players),
		},
	})
	g.broadcastPlayerTurn()
}

// PlayCard moves the card at cardIdx of player's hand onto the discard pile.
// Emptying the hand ends the game with player as the winner; otherwise the
// turn passes to the next seat.
func (g *Game) PlayCard(player, cardIdx int) (PlayResult, error) {
	if err := g.checkActive(); err != nil {
		return PlayResult{}, err
	}
	if err := ValidateTurn(g, player); err != nil {
		return PlayResult{}, err
	}
	if err := ValidatePlay(g, player, cardIdx); err != nil {
		return PlayResult{}, err
	}

	p := g.Players[player]
	card := p.RemoveCard(cardIdx)
	g.DiscardPile = append(g.DiscardPile, card)
	g.TurnID++

	g.fireEvent(GameEvent{
		Type:   EventPlayerPlayCard,
		Player: &player,
		Card:   &card,
		Payload: map[string]interface{}{
			"idx":       cardIdx,
			"hand_size": p.HandSize(),
		},
	})

	if p.HandSize() == 0 {
		g.finish(player)
		return PlayResult{Played: card, NextPlayer: player, Won: true, Winner: player}, nil
	}

	g.advanceTurn()
	return PlayResult{Played: card, NextPlayer: g.CurrentPlayerIndex}, nil
}

// PassTurn draws one card into player's hand and hands the turn on. Passing
// never wins the game.
func (g *Game) PassTurn(player int) (PassResult, error) {
	if err := g.checkActive(); err != nil {
		return PassResult{}, err
	}
	if err := ValidateTurn(g, player); err != nil {
		return PassResult{}, err
	}

	card, err := Draw(g)
	if err != nil {
		return PassResult{}, err
	}
	p := g.Players[player]
	p.Hand = append(p.Hand, card)
	g.TurnID++

	g.fireEvent(GameEvent{
		Type:   EventPlayerPass,
		Player: &player,
		Payload: map[string]interface{}{
			"hand_size": p.HandSize(),
			"stockpile": len(g.Deck),
		},
	})

	g.advanceTurn()
	return PassResult{Drawn: card, NextPlayer: g.CurrentPlayerIndex}, nil
}

// State reports whether the game is still being played.
func (g *Game) State() State {
	if g.GameOver {
		return StateTerminal
	}
	return StateActive
}

// CurrentPlayer returns the seat entitled to act.
func (g *Game) CurrentPlayer() int {
	return g.CurrentPlayerIndex
}

// TopCard returns the visible card of the discard pile.
func (g *Game) TopCard() (models.Card, bool) {
	if len(g.DiscardPile) == 0 {
		return models.Card{}, false
	}
	return g.DiscardPile[len(g.DiscardPile)-1], true
}

// Hand returns a copy of player's hand.
func (g *Game) Hand(player int) ([]models.Card, error) {
	if player < 0 || player >= len(g.Players) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, player)
	}
	hand := make([]models.Card, len(g.Players[player].Hand))
	copy(hand, g.Players[player].Hand)
	return hand, nil
}

// HandSizes maps each seat to the number of cards it holds.
func (g *Game) HandSizes() map[int]int {
	sizes := make(map[int]int, len(g.Players))
	for _, p := range g.Players {
		sizes[p.ID] = p.HandSize()
	}
	return sizes
}

// CardCount counts every card in the game. It equals models.DeckSize for any
// game created by NewGame.
func (g *Game) CardCount() int {
	n := len(g.Deck) + len(g.DiscardPile)
	for _, p := range g.Players {
		n += p.HandSize()
	}
	return n
}

// checkActive rejects mutations on a finished game.
func (g *Game) checkActive() error {
	if !g.GameOver {
		return nil
	}
	winner := -1
	if g.Winner != nil {
		winner = *g.Winner
	}
	return &FinishedError{GameID: g.ID, Winner: winner}
}

// advanceTurn moves the turn pointer one seat forward, wrapping around.
func (g *Game) advanceTurn() {
	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
	g.broadcastPlayerTurn()
}

// finish marks the game terminal. The turn pointer stays on the winner.
func (g *Game) finish(winner int) {
	g.GameOver = true
	g.Winner = &winner
	g.FinishedAt = time.Now().UTC()

	log.WithFields(log.Fields{"game_id": g.ID, "winner": winner, "turns": g.TurnID}).Info("game finished")
	g.fireEvent(GameEvent{
		Type:   EventGameEnd,
		Player: &winner,
		Payload: map[string]interface{}{
			"winner": winner,
			"turns":  g.TurnID,
		},
	})
}

func (g *Game) broadcastPlayerTurn() {
	current := g.CurrentPlayerIndex
	g.fireEvent(GameEvent{
		Type:   EventGamePlayerTurn,
		Player: &current,
		Payload: map[string]interface{}{
			"turn": g.TurnID,
		},
	})
}

// fireEvent stamps ev with the game id and the next action index and hands it
// to BroadcastFn.
func (g *Game) fireEvent(ev GameEvent) {
	g.ActionIndex++
	ev.GameID = g.ID
	ev.Index = g.ActionIndex
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}
