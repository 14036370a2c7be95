package memory

import (
	"context"
	"sync"
)

// Store is an in-memory Store implementation used for development runs and
// tests. Contents do not survive a restart.
type Store struct {
	mu   sync.RWMutex
	rows map[string]string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{rows: make(map[string]string)}
}

func (s *Store) Load(_ context.Context, id string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.rows[id]
	return payload, ok, nil
}

func (s *Store) Save(_ context.Context, id string, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[id] = payload
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, id)
	return nil
}

func (s *Store) Close() error {
	return nil
}
