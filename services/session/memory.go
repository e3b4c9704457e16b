package session

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in process memory. It does not survive a restart.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, slot string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[slot]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, slot, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = value
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, slot)
	return nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = make(map[string]string)
	return nil
}

// Len reports how many slots are set.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
