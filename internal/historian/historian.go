// internal/historian/historian.go is an asynchronous historian service that pops action records
// from a Redis queue and persists them to PostgreSQL.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ActionWriter is the persistence side of the historian.
type ActionWriter interface {
	InsertActions(ctx context.Context, batch []cache.GameActionRecord) error
	MarkAbandoned(ctx context.Context, gameID int) (bool, error)
}

// Options tune batching and the inactivity sweep.
type Options struct {
	Queue           string
	BatchSize       int
	FlushInterval   time.Duration
	Inactivity      time.Duration // duration until a game is marked "abandoned"
	InactivityCheck time.Duration
	PopTimeout      time.Duration
}

func (o *Options) setDefaults() {
	if o.Queue == "" {
		o.Queue = cache.DefaultQueueName
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 500 * time.Millisecond
	}
	if o.Inactivity <= 0 {
		o.Inactivity = 10 * time.Minute
	}
	if o.InactivityCheck <= 0 {
		o.InactivityCheck = time.Minute
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = 3 * time.Second
	}
}

// HistorianService drains the action queue into the database in batches and
// marks games abandoned once they go quiet.
type HistorianService struct {
	rdb    *redis.Client
	writer ActionWriter
	logger *logrus.Logger
	opts   Options

	lastActivity sync.Map // map[int]time.Time, last action seen per game

	batchMu sync.Mutex
	batch   []cache.GameActionRecord
}

func NewHistorianService(rdb *redis.Client, writer ActionWriter, logger *logrus.Logger, opts Options) *HistorianService {
	opts.setDefaults()
	return &HistorianService{
		rdb:    rdb,
		writer: writer,
		logger: logger,
		opts:   opts,
		batch:  make([]cache.GameActionRecord, 0, opts.BatchSize),
	}
}

// Run blocks until ctx is cancelled, then flushes whatever is left.
func (hs *HistorianService) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hs.flushLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		hs.inactivityLoop(ctx)
	}()

	hs.logger.WithField("queue", hs.opts.Queue).Info("historian started")
	hs.readRedisLoop(ctx)
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hs.flushBatch(shutdownCtx)
	hs.logger.Info("historian stopped")
	return nil
}

// readRedisLoop uses BLPop with a timeout so that cancellation is noticed.
func (hs *HistorianService) readRedisLoop(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := hs.rdb.BLPop(ctx, hs.opts.PopTimeout, hs.opts.Queue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			hs.logger.WithError(err).Error("BLPop failed")
			time.Sleep(hs.opts.PopTimeout)
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		if len(res) < 2 {
			continue
		}

		record, err := decodeRecord(res[1])
		if err != nil {
			hs.logger.WithError(err).Warn("invalid action record")
			continue
		}
		hs.track(record)
		hs.appendToBatch(ctx, record)
	}
}

func decodeRecord(payload string) (cache.GameActionRecord, error) {
	var record cache.GameActionRecord
	err := json.Unmarshal([]byte(payload), &record)
	return record, err
}

// track updates the activity clock; finished games stop being watched.
func (hs *HistorianService) track(record cache.GameActionRecord) {
	if record.ActionType == string(game.EventGameEnd) {
		hs.lastActivity.Delete(record.GameID)
		return
	}
	hs.lastActivity.Store(record.GameID, time.Now())
}

func (hs *HistorianService) appendToBatch(ctx context.Context, record cache.GameActionRecord) {
	hs.batchMu.Lock()
	hs.batch = append(hs.batch, record)
	full := len(hs.batch) >= hs.opts.BatchSize
	hs.batchMu.Unlock()

	if full {
		hs.flushBatch(ctx)
	}
}

func (hs *HistorianService) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.flushBatch(ctx)
		}
	}
}

// flushBatch writes the pending batch in a single transaction.
func (hs *HistorianService) flushBatch(ctx context.Context) {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	batchCopy := make([]cache.GameActionRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	if err := hs.writer.InsertActions(ctx, batchCopy); err != nil {
		hs.logger.WithError(err).WithField("records", len(batchCopy)).Error("flushing actions failed")
		return
	}
	hs.logger.WithField("records", len(batchCopy)).Debug("flushed actions to DB")
}

// inactivityLoop periodically marks games without recent actions as abandoned.
func (hs *HistorianService) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.InactivityCheck)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.sweepInactive(ctx, time.Now())
		}
	}
}

func (hs *HistorianService) sweepInactive(ctx context.Context, now time.Time) {
	hs.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(int)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= hs.opts.Inactivity {
			return true
		}
		changed, err := hs.writer.MarkAbandoned(ctx, gameID)
		if err != nil {
			hs.logger.WithError(err).WithField("game_id", gameID).Error("marking game abandoned failed")
			return true
		}
		hs.lastActivity.Delete(gameID)
		if changed {
			hs.logger.WithField("game_id", gameID).Info("marked game abandoned due to inactivity")
		}
		return true
	})
}
