package game

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// InMemorySessionStore keeps snapshots in process memory. State is lost on
// restart; used for local runs and tests.
type InMemorySessionStore struct {
	mu sync.RWMutex
	m  map[string]SessionSnapshot
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		m: make(map[string]SessionSnapshot),
	}
}

func (s *InMemorySessionStore) Save(ctx context.Context, gameID string, snap SessionSnapshot) error {
	snap.Secret = slices.Clone(snap.Secret)
	snap.History = slices.Clone(snap.History)

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.m[gameID]; ok && snap.olderThan(prev) {
		return fmt.Errorf("save %s: %w", gameID, ErrStaleSnapshot)
	}
	s.m[gameID] = snap
	return nil
}

func (s *InMemorySessionStore) Load(ctx context.Context, gameID string) (SessionSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.m[gameID]
	return snap, ok, nil
}
