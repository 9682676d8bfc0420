// internal/game/game_store.go
package game

import (
	"context"
	"fmt"
	"sync"
)

// Store keeps games by id. The rules engine never touches a Store; the request
// layer loads a game, mutates it, and saves it back.
type Store interface {
	// NextID allocates a fresh, monotonically increasing game id.
	NextID(ctx context.Context) (int, error)
	// Get returns ErrGameNotFound if no game has the id.
	Get(ctx context.Context, id int) (*Game, error)
	Save(ctx context.Context, g *Game) error
	Delete(ctx context.Context, id int) error
}

// MemoryStore is a Store backed by a map. Get hands out the stored pointer.
type MemoryStore struct {
	mu     sync.Mutex
	games  map[int]*Game
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[int]*Game),
	}
}

// SeedNextID moves id allocation forward to at least next. It never moves it
// back.
func (s *MemoryStore) SeedNextID(next int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next > s.nextID {
		s.nextID = next
	}
}

func (s *MemoryStore) NextID(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id int) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrGameNotFound, id)
	}
	return g, nil
}

func (s *MemoryStore) Save(_ context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
	// keep allocation ahead of ids saved directly, e.g. fixtures
	if g.ID >= s.nextID {
		s.nextID = g.ID + 1
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

// Len returns the number of stored games.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}
