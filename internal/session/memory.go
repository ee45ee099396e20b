package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store with per-entry expiry. It backs dev
// setups without Redis and the handler tests.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]entry
}

type entry struct {
	userID string
	exp    time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]entry)}
}

func (s *MemoryStore) Create(_ context.Context, userID string, ttl time.Duration) (string, error) {
	id, err := newID()

	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.m[id] = entry{userID: userID, exp: time.Now().Add(ttl)}
	s.mu.Unlock()

	return id, nil
}

func (s *MemoryStore) Resolve(_ context.Context, id string) (string, error) {
	now := time.Now()

	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}

	if now.After(e.exp) {
		s.mu.Lock()
		delete(s.m, id)
		s.mu.Unlock()
		return "", ErrNotFound
	}

	return e.userID, nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()

	return nil
}
