// internal/cache/store.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each game as one JSON document. Finished games expire after
// finishedTTL; active games never expire.
type RedisStore struct {
	rdb         *redis.Client
	prefix      string
	finishedTTL time.Duration
}

var _ game.Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, prefix string, finishedTTL time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, finishedTTL: finishedTTL}
}

func (s *RedisStore) gameKey(id int) string {
	return fmt.Sprintf("%s:game:%d", s.prefix, id)
}

func (s *RedisStore) counterKey() string {
	return s.prefix + ":next_id"
}

// NextID uses INCR, so the first id handed out is 0.
func (s *RedisStore) NextID(ctx context.Context) (int, error) {
	n, err := s.rdb.Incr(ctx, s.counterKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("allocating game id: %w", err)
	}
	return int(n - 1), nil
}

func (s *RedisStore) Get(ctx context.Context, id int) (*game.Game, error) {
	data, err := s.rdb.Get(ctx, s.gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", game.ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading game %d: %w", id, err)
	}

	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decoding game %d: %w", id, err)
	}
	if err := checkCards(&g); err != nil {
		return nil, fmt.Errorf("decoding game %d: %w", id, err)
	}
	return &g, nil
}

// checkCards rejects documents holding cards outside the deck's colours and
// values.
func checkCards(g *game.Game) error {
	piles := [][]models.Card{g.Deck, g.DiscardPile}
	for _, p := range g.Players {
		piles = append(piles, p.Hand)
	}
	for _, pile := range piles {
		for _, card := range pile {
			if !card.Valid() {
				return fmt.Errorf("invalid card %q", card.String())
			}
		}
	}
	return nil
}

func (s *RedisStore) Save(ctx context.Context, g *game.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding game %d: %w", g.ID, err)
	}
	var ttl time.Duration
	if g.GameOver {
		ttl = s.finishedTTL
	}
	if err := s.rdb.Set(ctx, s.gameKey(g.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("saving game %d: %w", g.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id int) error {
	return s.rdb.Del(ctx, s.gameKey(id)).Err()
}
