package enrichment

import "sync"

// Sequencer hands out a monotonically increasing generation per field group.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues a new generation for group. Generations start at 1.
func (s *Sequencer) Next(group string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[group]++
	return s.latest[group]
}

// Latest returns the last generation issued for group, or 0.
func (s *Sequencer) Latest(group string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[group]
}

func (s *Sequencer) IsCurrent(group string, gen uint64) bool {
	return gen != 0 && s.Latest(group) == gen
}
