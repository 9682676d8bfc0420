// internal/handlers/game_server.go
package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/sirupsen/logrus"
)

// ActionPublisher forwards game actions to the historian queue.
type ActionPublisher interface {
	PublishGameAction(ctx context.Context, record cache.GameActionRecord) error
}

// GameRecorder persists finished games.
type GameRecorder interface {
	RecordFinishedGame(ctx context.Context, g *game.Game) error
}

// GameServer owns the game store and serialises every operation on a game
// behind a per-game lock. Publisher and Recorder are optional.
type GameServer struct {
	Store     game.Store
	Publisher ActionPublisher
	Recorder  GameRecorder

	// OriginPatterns is handed to websocket.Accept for spectator connections.
	OriginPatterns []string

	// FinishedRetention is how long a finished game stays in the store so
	// lookups can still report its winner. Zero keeps it forever.
	FinishedRetention time.Duration

	hub    *Hub
	locks  *gameLocks
	logger *logrus.Logger
}

func NewGameServer(store game.Store, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Store:  store,
		hub:    NewHub(logger),
		locks:  newGameLocks(),
		logger: logger,
	}
}

// gameLocks is a mutex per game id. Entries are dropped once nobody holds or
// waits for them.
type gameLocks struct {
	mu    sync.Mutex
	locks map[int]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[int]*gameLock)}
}

func (l *gameLocks) lock(id int) (unlock func()) {
	l.mu.Lock()
	gl, ok := l.locks[id]
	if !ok {
		gl = &gameLock{}
		l.locks[id] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()
		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// load fetches an active game. Finished games are reported as a
// *game.FinishedError so every endpoint discloses the winner.
func (s *GameServer) load(ctx context.Context, id int) (*game.Game, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.GameOver {
		winner := -1
		if g.Winner != nil {
			winner = *g.Winner
		}
		return nil, &game.FinishedError{GameID: g.ID, Winner: winner}
	}
	return g, nil
}

// CreateGame deals a new game and stores it.
func (s *GameServer) CreateGame(ctx context.Context, players int) (*game.Game, error) {
	if players < game.MinPlayers || players > game.MaxPlayers {
		return nil, game.ErrInvalidPlayerCount
	}
	id, err := s.Store.NextID(ctx)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	g, err := game.NewGame(id, players)
	if err != nil {
		return nil, err
	}
	events := s.collect(g, func() error {
		g.AnnounceStart()
		return nil
	})
	if err := s.Store.Save(ctx, g); err != nil {
		return nil, err
	}
	s.dispatch(ctx, g, events)

	s.logger.WithFields(logrus.Fields{
		"game_id":    id,
		"players":    players,
		"request_id": middleware.RequestID(ctx),
	}).Info("game created")
	return g, nil
}

// View runs fn against an active game under its lock without saving.
func (s *GameServer) View(ctx context.Context, id int, fn func(g *game.Game) error) error {
	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return fn(g)
}

// Mutate runs fn against an active game under its lock. On success the game is
// saved and the events fn produced are dispatched.
func (s *GameServer) Mutate(ctx context.Context, id int, fn func(g *game.Game) error) error {
	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	var fnErr error
	events := s.collect(g, func() error {
		fnErr = fn(g)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err := s.Store.Save(ctx, g); err != nil {
		return err
	}
	s.dispatch(ctx, g, events)
	return nil
}

// collect captures the events fired while fn runs.
func (s *GameServer) collect(g *game.Game, fn func() error) []game.GameEvent {
	var events []game.GameEvent
	g.BroadcastFn = func(ev game.GameEvent) {
		events = append(events, ev)
	}
	defer func() { g.BroadcastFn = nil }()

	if err := fn(); err != nil {
		return nil
	}
	return events
}

// dispatch fans events out to spectators and the historian queue, and records
// the game once it has finished.
func (s *GameServer) dispatch(ctx context.Context, g *game.Game, events []game.GameEvent) {
	for _, ev := range events {
		s.hub.Publish(g.ID, game.EventBytes(ev))
		if s.Publisher == nil {
			continue
		}
		if err := s.Publisher.PublishGameAction(ctx, cache.RecordFromEvent(ev)); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"game_id":    g.ID,
				"event":      ev.Type,
				"request_id": middleware.RequestID(ctx),
			}).Warn("failed to publish game action")
		}
	}

	if !g.GameOver {
		return
	}
	reqID := middleware.RequestID(ctx)
	s.logger.WithFields(logrus.Fields{
		"game_id":    g.ID,
		"winner":     *g.Winner,
		"request_id": reqID,
	}).Info("game finished")

	s.hub.CloseGame(g.ID)
	if s.Recorder != nil {
		go s.recordFinished(g, reqID)
	}
	if s.FinishedRetention > 0 {
		id := g.ID
		time.AfterFunc(s.FinishedRetention, func() { s.forget(id) })
	}
}

func (s *GameServer) recordFinished(g *game.Game, reqID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Recorder.RecordFinishedGame(ctx, g); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"game_id":    g.ID,
			"request_id": reqID,
		}).Error("failed to record finished game")
	}
}

// forget drops a finished game from the store.
func (s *GameServer) forget(id int) {
	unlock := s.locks.lock(id)
	defer unlock()
	if err := s.Store.Delete(context.Background(), id); err != nil {
		s.logger.WithError(err).WithField("game_id", id).Warn("failed to delete finished game")
		return
	}
	s.logger.WithField("game_id", id).Debug("finished game expired")
}
