// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
)

type createGameRequest struct {
	Players int `json:"players"`
}

// handleCreateGame deals a new game for the requested number of players, taken
// from ?players=N or a JSON body.
func (s *GameServer) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var players int
	if raw := r.URL.Query().Get("players"); raw != "" {
		n, err := parseIntParam("players", raw)
		if err != nil {
			writeError(w, err)
			return
		}
		players = n
	} else {
		var req createGameRequest
		if r.Body == nil {
			writeError(w, &paramError{name: "players"})
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, &paramError{name: "players"})
			return
		}
		players = req.Players
	}

	g, err := s.CreateGame(r.Context(), players)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"game_id": g.ID})
}

func (s *GameServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var status game.GameStatus
	err = s.View(r.Context(), id, func(g *game.Game) error {
		status = g.Snapshot()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *GameServer) handleTurn(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var current int
	err = s.View(r.Context(), id, func(g *game.Game) error {
		current = g.CurrentPlayer()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"current_player": current})
}

func (s *GameServer) handleHand(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	player, err := pathInt(r, "player")
	if err != nil {
		writeError(w, err)
		return
	}
	var hand []models.Card
	err = s.View(r.Context(), id, func(g *game.Game) error {
		var herr error
		hand, herr = g.Hand(player)
		return herr
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"player": player,
		"hand":   hand,
	})
}

func (s *GameServer) handlePlay(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	player, err := queryInt(r, "player")
	if err != nil {
		writeError(w, err)
		return
	}
	cardIdx, err := queryInt(r, "card")
	if err != nil {
		writeError(w, err)
		return
	}

	var res game.PlayResult
	err = s.Mutate(r.Context(), id, func(g *game.Game) error {
		var perr error
		res, perr = g.PlayCard(player, cardIdx)
		return perr
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if res.Won {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": fmt.Sprintf("player %d wins the game", res.Winner),
			"winner":  res.Winner,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     fmt.Sprintf("valid play, next player: %d", res.NextPlayer),
		"next_player": res.NextPlayer,
		"played_card": res.Played,
	})
}

func (s *GameServer) handlePass(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	player, err := queryInt(r, "player")
	if err != nil {
		writeError(w, err)
		return
	}

	var res game.PassResult
	err = s.Mutate(r.Context(), id, func(g *game.Game) error {
		var perr error
		res, perr = g.PassTurn(player)
		return perr
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     fmt.Sprintf("you drew a card, next player: %d", res.NextPlayer),
		"next_player": res.NextPlayer,
		"drawn_card":  res.Drawn,
	})
}
