package service

import "sync"

const opAuth = "auth"

// Sequencer hands out increasing tickets per logical operation. Only the
// holder of the latest ticket may commit its result; older in-flight
// responses are dropped.
type Sequencer struct {
	mu  sync.Mutex
	seq map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{seq: make(map[string]uint64)}
}

func (s *Sequencer) Next(op string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[op]++
	return s.seq[op]
}

// Invalidate makes every outstanding ticket for op stale.
func (s *Sequencer) Invalidate(op string) {
	s.Next(op)
}

func (s *Sequencer) Current(op string, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[op] == ticket
}

// Commit runs fn only if ticket is still current, holding the sequence lock
// so no newer ticket can be issued in between.
func (s *Sequencer) Commit(op string, ticket uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[op] != ticket {
		return false
	}
	fn()
	return true
}
