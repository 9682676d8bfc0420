// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied statement by statement on startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id               INTEGER PRIMARY KEY,
		status           TEXT NOT NULL DEFAULT 'in_progress',
		player_count     INTEGER,
		winner           INTEGER,
		turns            INTEGER,
		start_time       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		end_time         TIMESTAMPTZ,
		final_game_state JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS game_actions (
		id             UUID PRIMARY KEY,
		game_id        INTEGER NOT NULL REFERENCES games (id),
		action_index   INTEGER NOT NULL,
		actor          INTEGER,
		action_type    TEXT NOT NULL,
		action_payload JSONB,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS game_actions_game_idx ON game_actions (game_id, action_index)`,
}

// Connect creates a pgx pool for url and pings it.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the history tables if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("applying schema: %w", err)
			}
		}
		return nil
	})
}
