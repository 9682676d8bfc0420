// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
)

// GameRepository persists finished games and their action history.
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

type finalPlayerState struct {
	Hand []models.Card `json:"hand"`
}

type finalGameState struct {
	Players   map[string]finalPlayerState `json:"players"`
	Winner    *int                        `json:"winner"`
	TopCard   *models.Card                `json:"top_card,omitempty"`
	Stockpile int                         `json:"stockpile"`
}

// finalSnapshot captures each player's final hand and the winner.
func finalSnapshot(g *game.Game) finalGameState {
	snap := finalGameState{
		Players:   make(map[string]finalPlayerState, len(g.Players)),
		Winner:    g.Winner,
		Stockpile: len(g.Deck),
	}
	for _, p := range g.Players {
		hand := make([]models.Card, len(p.Hand))
		copy(hand, p.Hand)
		snap.Players[fmt.Sprintf("player_%d", p.ID)] = finalPlayerState{Hand: hand}
	}
	if top, ok := g.TopCard(); ok {
		snap.TopCard = &top
	}
	return snap
}

// RecordFinishedGame upserts the games row for g with status completed and the
// final hands as JSON.
func (r *GameRepository) RecordFinishedGame(ctx context.Context, g *game.Game) error {
	jsonData, err := json.Marshal(finalSnapshot(g))
	if err != nil {
		return fmt.Errorf("failed to marshal final snapshot: %w", err)
	}
	q := `
		INSERT INTO games (id, status, player_count, winner, turns, start_time, end_time, final_game_state)
		VALUES ($1, 'completed', $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = 'completed',
			player_count = EXCLUDED.player_count,
			winner = EXCLUDED.winner,
			turns = EXCLUDED.turns,
			end_time = EXCLUDED.end_time,
			final_game_state = EXCLUDED.final_game_state
	`
	err = pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, g.ID, len(g.Players), g.Winner, g.TurnID, g.CreatedAt, g.FinishedAt, jsonData)
		return e
	})
	if err != nil {
		return fmt.Errorf("storing final game state in DB: %w", err)
	}
	return nil
}

// InsertActions writes a batch of action records in a single transaction,
// creating in-progress game rows as needed. A game_end record completes its game.
func (r *GameRepository) InsertActions(ctx context.Context, batch []cache.GameActionRecord) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batch {
			if err := insertGameActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertGameActionTx: %w", err)
			}
		}
		return nil
	})
}

func insertGameActionTx(ctx context.Context, tx pgx.Tx, rec cache.GameActionRecord) error {
	upsertGameQ := `
		INSERT INTO games (id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertGameQ, rec.GameID); err != nil {
		return err
	}

	jsonPayload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	actionInsertQ := `
		INSERT INTO game_actions (id, game_id, action_index, actor, action_type, action_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, to_timestamp($7::double precision / 1000))
		ON CONFLICT (id) DO NOTHING
	`
	_, err = tx.Exec(ctx, actionInsertQ,
		rec.ID, rec.GameID, rec.ActionIndex, rec.Actor, rec.ActionType, jsonPayload, rec.Timestamp,
	)
	if err != nil {
		return err
	}

	if rec.ActionType == string(game.EventGameEnd) {
		finalizeQ := `
			UPDATE games
			SET status = 'completed', end_time = COALESCE(end_time, NOW())
			WHERE id = $1 AND status = 'in_progress'
		`
		if _, err := tx.Exec(ctx, finalizeQ, rec.GameID); err != nil {
			return err
		}
	}
	return nil
}

// MarkAbandoned flags an in-progress game that has seen no actions for too long.
// It reports whether a row changed.
func (r *GameRepository) MarkAbandoned(ctx context.Context, gameID int) (bool, error) {
	q := `
		UPDATE games
		SET status = 'abandoned', end_time = NOW()
		WHERE id = $1 AND status = 'in_progress'
	`
	tag, err := r.pool.Exec(ctx, q, gameID)
	if err != nil {
		return false, fmt.Errorf("failed to mark game %d abandoned: %w", gameID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// NextGameID returns one past the highest recorded game id, or 0 for an empty
// history. A restarted in-memory store seeds its counter from it.
func (r *GameRepository) NextGameID(ctx context.Context) (int, error) {
	var next int
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id) + 1, 0) FROM games`).Scan(&next); err != nil {
		return 0, fmt.Errorf("loading next game id: %w", err)
	}
	return next, nil
}
