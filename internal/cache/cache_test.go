package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	rdb, err := Connect(context.Background(), addr, 0)
	require.NoError(t, err)
	rdb.Close()

	mr.Close()
	_, err = Connect(context.Background(), addr, 0)
	assert.Error(t, err)
}

func TestRedisStoreNextID(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewRedisStore(rdb, "test", time.Hour)
	ctx := context.Background()

	for want := 0; want < 3; want++ {
		id, err := s.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewRedisStore(rdb, "test", time.Hour)
	ctx := context.Background()

	_, err := s.Get(ctx, 1)
	assert.ErrorIs(t, err, game.ErrGameNotFound)

	g, err := game.NewGame(1, 3)
	require.NoError(t, err)
	_, err = g.PassTurn(0)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, g))
	assert.Zero(t, mr.TTL("test:game:1"), "active games do not expire")

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, g.Deck, got.Deck)
	assert.Equal(t, g.DiscardPile, got.DiscardPile)
	assert.Equal(t, g.Players, got.Players)
	assert.Equal(t, 1, got.CurrentPlayer())
	assert.Equal(t, g.ActionIndex, got.ActionIndex)
	assert.Equal(t, models.DeckSize, got.CardCount())

	require.NoError(t, s.Delete(ctx, 1))
	_, err = s.Get(ctx, 1)
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestRedisStoreFinishedGameExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewRedisStore(rdb, "test", 30*time.Minute)

	winner := 1
	g := &game.Game{ID: 2, GameOver: true, Winner: &winner, Players: []*models.Player{models.NewPlayer(0), models.NewPlayer(1)}}
	require.NoError(t, s.Save(context.Background(), g))
	assert.Equal(t, 30*time.Minute, mr.TTL("test:game:2"))

	got, err := s.Get(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, got.Winner)
	assert.Equal(t, 1, *got.Winner)
	assert.Equal(t, game.StateTerminal, got.State())
}

func TestPublishGameAction(t *testing.T) {
	mr, rdb := newTestRedis(t)
	p := NewPublisher(rdb, "")

	player := 2
	top := models.NewCard(models.Red, models.Seven)
	rec := RecordFromEvent(game.GameEvent{
		Type:    game.EventPlayerPlayCard,
		GameID:  5,
		Index:   9,
		Player:  &player,
		Card:    &top,
		Payload: map[string]interface{}{"idx": 0},
	})
	require.NoError(t, p.PublishGameAction(context.Background(), rec))

	items, err := mr.List(DefaultQueueName)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var decoded GameActionRecord
	require.NoError(t, json.Unmarshal([]byte(items[0]), &decoded))
	assert.Equal(t, rec.ID, decoded.ID)
	assert.Equal(t, 5, decoded.GameID)
	assert.Equal(t, 9, decoded.ActionIndex)
	require.NotNil(t, decoded.Actor)
	assert.Equal(t, 2, *decoded.Actor)
	assert.Equal(t, "player_play_card", decoded.ActionType)
	assert.Contains(t, decoded.ActionPayload, "card")
}

func TestRedisStoreRejectsCorruptCards(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewRedisStore(rdb, "test", time.Hour)

	g, err := game.NewGame(2, 2)
	require.NoError(t, err)
	g.Players[1].Hand[0] = models.Card{Color: "purple", Value: models.Three}
	data, err := json.Marshal(g)
	require.NoError(t, err)
	require.NoError(t, mr.Set("test:game:2", string(data)))

	_, err = s.Get(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purple 3")
}
