package sinks

import (
	"context"
	"sync"

	"duelgrid/server/logging"
)

// MemorySink retains events in order of arrival. Tests and the match
// runner's post-run report read them back with Events.
type MemorySink struct {
	mu     sync.Mutex
	events []logging.Event
	limit  int
}

// NewMemorySink keeps at most limit events, discarding the oldest once
// full. limit <= 0 means unbounded.
func NewMemorySink(limit int) *MemorySink {
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.limit > 0 && len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
	return nil
}

func (s *MemorySink) Events() []logging.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]logging.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *MemorySink) Close(context.Context) error { return nil }
