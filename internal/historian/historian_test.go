// internal/historian/historian_test.go
package historian

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter records what the historian would persist.
type fakeWriter struct {
	mu        sync.Mutex
	records   []cache.GameActionRecord
	abandoned []int
}

func (w *fakeWriter) InsertActions(_ context.Context, batch []cache.GameActionRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, batch...)
	return nil
}

func (w *fakeWriter) MarkAbandoned(_ context.Context, gameID int) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.abandoned = append(w.abandoned, gameID)
	return true, nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHistorianDrainsQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pub := cache.NewPublisher(rdb, "test_actions")
	player := 0
	for i := 1; i <= 3; i++ {
		rec := cache.RecordFromEvent(game.GameEvent{Type: game.EventPlayerPass, GameID: 4, Index: i, Player: &player})
		require.NoError(t, pub.PublishGameAction(ctx, rec))
	}
	_, err := rdb.RPush(ctx, "test_actions", "not json").Result()
	require.NoError(t, err)

	w := &fakeWriter{}
	hs := NewHistorianService(rdb, w, quietLogger(), Options{
		Queue:         "test_actions",
		BatchSize:     2,
		FlushInterval: 20 * time.Millisecond,
		PopTimeout:    100 * time.Millisecond,
	})

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		_ = hs.Run(runCtx)
		close(done)
	}()

	require.Eventually(t, func() bool { return w.count() == 3 }, 5*time.Second, 20*time.Millisecond)
	stop()
	<-done

	w.mu.Lock()
	defer w.mu.Unlock()
	var indices []int
	for _, rec := range w.records {
		assert.Equal(t, 4, rec.GameID)
		indices = append(indices, rec.ActionIndex)
	}
	assert.ElementsMatch(t, []int{1, 2, 3}, indices)
}

func TestSweepInactive(t *testing.T) {
	w := &fakeWriter{}
	hs := NewHistorianService(nil, w, quietLogger(), Options{Inactivity: time.Minute})

	hs.track(cache.GameActionRecord{GameID: 1, ActionType: string(game.EventPlayerPass)})
	hs.track(cache.GameActionRecord{GameID: 2, ActionType: string(game.EventPlayerPass)})
	hs.track(cache.GameActionRecord{GameID: 2, ActionType: string(game.EventGameEnd)})

	hs.sweepInactive(context.Background(), time.Now())
	assert.Empty(t, w.abandoned, "nothing is stale yet")

	hs.sweepInactive(context.Background(), time.Now().Add(2*time.Minute))
	assert.Equal(t, []int{1}, w.abandoned, "finished game 2 is not watched")

	hs.sweepInactive(context.Background(), time.Now().Add(5*time.Minute))
	assert.Equal(t, []int{1}, w.abandoned, "game 1 is only marked once")
}

func TestDecodeRecord(t *testing.T) {
	actor := 3
	data, err := json.Marshal(cache.GameActionRecord{GameID: 8, ActionIndex: 2, Actor: &actor, ActionType: "player_pass"})
	require.NoError(t, err)

	rec, err := decodeRecord(string(data))
	require.NoError(t, err)
	assert.Equal(t, 8, rec.GameID)
	require.NotNil(t, rec.Actor)
	assert.Equal(t, 3, *rec.Actor)

	_, err = decodeRecord("{")
	assert.Error(t, err)
}
