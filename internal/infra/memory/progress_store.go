package memory

import (
	"context"
	"sync"
)

// ProgressStore is an in-memory implementation of app.ProgressRepository,
// used when no Redis is configured and in tests.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[string]string
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{records: make(map[string]string)}
}

func (s *ProgressStore) Get(_ context.Context, deviceID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.records[deviceID]
	return raw, ok
}

func (s *ProgressStore) Set(_ context.Context, deviceID string, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[deviceID] = raw
	return nil
}
