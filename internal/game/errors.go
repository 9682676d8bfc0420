// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// Error kinds returned by the rules engine. Callers match them with errors.Is;
// the HTTP layer maps each one to a status code.
var (
	ErrTurnViolation       = errors.New("not this player's turn")
	ErrIndexOutOfRange     = errors.New("card index out of range")
	ErrRuleMismatch        = errors.New("card matches neither colour nor value of the top card")
	ErrDeckExhausted       = errors.New("no cards left to draw, the game is a stalemate")
	ErrGameAlreadyTerminal = errors.New("game already finished")
	ErrGameNotFound        = errors.New("game not found")
	ErrUnknownPlayer       = errors.New("player not found")
	ErrInvalidPlayerCount  = fmt.Errorf("player count must be between %d and %d", MinPlayers, MaxPlayers)
)

// TurnError is returned when a player acts out of turn.
type TurnError struct {
	Player  int
	Current int
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("it is not player %d's turn, it is player %d's turn", e.Player, e.Current)
}

func (e *TurnError) Unwrap() error { return ErrTurnViolation }

// FinishedError is returned for any mutation attempted on a terminal game. It
// discloses the recorded winner.
type FinishedError struct {
	GameID int
	Winner int
}

func (e *FinishedError) Error() string {
	return fmt.Sprintf("game %d already finished, winner: player %d", e.GameID, e.Winner)
}

func (e *FinishedError) Unwrap() error { return ErrGameAlreadyTerminal }
