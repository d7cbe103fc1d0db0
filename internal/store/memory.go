package store

import (
	"context"
	"sync"

	"github.com/jason-s-yu/kingcourt/internal/models"
	log "github.com/sirupsen/logrus"
)

// MemoryStore keeps rooms in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*models.Room
	subs  map[string]map[chan *models.Room]struct{}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*models.Room),
		subs:  make(map[string]map[chan *models.Room]struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, room *models.Room) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.Code]; exists {
		return nil, ErrExists
	}
	stored := room.Clone()
	stored.Version = 1
	s.rooms[room.Code] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) Read(_ context.Context, code string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, room *models.Room, expectedVersion int64) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rooms[room.Code]
	if !ok {
		return nil, ErrNotFound
	}
	if current.Version != expectedVersion {
		return nil, ErrVersionConflict
	}
	stored := room.Clone()
	stored.Version = expectedVersion + 1
	s.rooms[room.Code] = stored
	s.publishLocked(stored)
	return stored.Clone(), nil
}

// Delete drops a room and closes its subscriptions.
func (s *MemoryStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	for ch := range s.subs[code] {
		close(ch)
	}
	delete(s.subs, code)
}

func (s *MemoryStore) Subscribe(ctx context.Context, code string) (<-chan *models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; !ok {
		return nil, ErrNotFound
	}
	ch := make(chan *models.Room, 16)
	if s.subs[code] == nil {
		s.subs[code] = make(map[chan *models.Room]struct{})
	}
	s.subs[code][ch] = struct{}{}

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[code][ch]; ok {
			delete(s.subs[code], ch)
			close(ch)
		}
	}()
	return ch, nil
}

// publishLocked delivers without blocking; a slow subscriber misses a snapshot
// but always receives the next one. Assumes s.mu is held.
func (s *MemoryStore) publishLocked(room *models.Room) {
	for ch := range s.subs[room.Code] {
		select {
		case ch <- room.Clone():
		default:
			log.WithFields(log.Fields{"room": room.Code, "version": room.Version}).
				Warn("subscriber channel full, dropped snapshot")
		}
	}
}
