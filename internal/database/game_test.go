package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedGame(id int) *game.Game {
	winner := 1
	p0 := models.NewPlayer(0)
	p0.Hand = []models.Card{models.NewCard(models.Red, models.Three)}
	return &game.Game{
		ID:          id,
		Players:     []*models.Player{p0, models.NewPlayer(1)},
		Deck:        []models.Card{models.NewCard(models.Blue, models.Zero)},
		DiscardPile: []models.Card{models.NewCard(models.Green, models.Four)},
		GameOver:    true,
		Winner:      &winner,
		TurnID:      12,
		CreatedAt:   time.Now().Add(-time.Minute),
		FinishedAt:  time.Now(),
	}
}

func TestFinalSnapshot(t *testing.T) {
	snap := finalSnapshot(finishedGame(3))

	require.NotNil(t, snap.Winner)
	assert.Equal(t, 1, *snap.Winner)
	assert.Equal(t, []models.Card{models.NewCard(models.Red, models.Three)}, snap.Players["player_0"].Hand)
	assert.Empty(t, snap.Players["player_1"].Hand)
	require.NotNil(t, snap.TopCard)
	assert.Equal(t, models.NewCard(models.Green, models.Four), *snap.TopCard)
	assert.Equal(t, 1, snap.Stockpile)
}

// testRepository connects to TEST_DATABASE_URL or skips.
func testRepository(t *testing.T) *GameRepository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool))
	return NewGameRepository(pool)
}

func gameStatus(t *testing.T, repo *GameRepository, id int) string {
	t.Helper()
	var status string
	err := repo.pool.QueryRow(context.Background(), `SELECT status FROM games WHERE id = $1`, id).Scan(&status)
	require.NoError(t, err)
	return status
}

func TestRecordFinishedGame(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	id := int(time.Now().UnixNano() % 1_000_000_000)

	require.NoError(t, repo.RecordFinishedGame(ctx, finishedGame(id)))

	assert.Equal(t, "completed", gameStatus(t, repo, id))

	next, err := repo.NextGameID(ctx)
	require.NoError(t, err)
	assert.Greater(t, next, id, "ids after a restart continue past recorded games")
}

func TestInsertActionsAndAbandon(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	id := int(time.Now().UnixNano()%1_000_000_000) + 1

	actor := 0
	batch := []cache.GameActionRecord{
		{ID: uuid.New(), GameID: id, ActionIndex: 1, ActionType: string(game.EventGameCreated), Timestamp: time.Now().UnixMilli()},
		{ID: uuid.New(), GameID: id, ActionIndex: 2, Actor: &actor, ActionType: string(game.EventPlayerPass), Timestamp: time.Now().UnixMilli()},
	}
	require.NoError(t, repo.InsertActions(ctx, batch))

	assert.Equal(t, "in_progress", gameStatus(t, repo, id))

	changed, err := repo.MarkAbandoned(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkAbandoned(ctx, id)
	require.NoError(t, err)
	assert.False(t, changed, "only in-progress games are abandoned")
}
