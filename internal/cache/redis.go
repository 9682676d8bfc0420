// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for game action logs.
const DefaultQueueName = "uno_actions"

// GameActionRecord holds the minimal info needed by the historian.
type GameActionRecord struct {
	ID            uuid.UUID              `json:"id"`
	GameID        int                    `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	Actor         *int                   `json:"actor,omitempty"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// RecordFromEvent converts a game event into a history record. Played and
// reshuffle-top cards are folded into the payload.
func RecordFromEvent(ev game.GameEvent) GameActionRecord {
	payload := make(map[string]interface{}, len(ev.Payload)+1)
	for k, v := range ev.Payload {
		payload[k] = v
	}
	if ev.Card != nil {
		payload["card"] = ev.Card
	}
	return GameActionRecord{
		ID:            uuid.New(),
		GameID:        ev.GameID,
		ActionIndex:   ev.Index,
		Actor:         ev.Player,
		ActionType:    string(ev.Type),
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
}

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Publisher pushes action records onto the historian queue.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

func NewPublisher(rdb *redis.Client, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{rdb: rdb, queue: queue}
}

// PublishGameAction serializes the given record to JSON, then pushes it to the Redis queue.
func (p *Publisher) PublishGameAction(ctx context.Context, record GameActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal GameActionRecord: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}
