package repository

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

type memoryStateStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStateStore returns a process-local StateStore. Contents do not survive a restart.
func NewMemoryStateStore() domain.StateStore {
	return &memoryStateStore{
		values: make(map[string][]byte),
	}
}

func (s *memoryStateStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (s *memoryStateStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStateStore) SetMany(_ context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		s.values[key] = append([]byte(nil), value...)
	}
	return nil
}

func (s *memoryStateStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}
