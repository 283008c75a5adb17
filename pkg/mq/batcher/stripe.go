package batcher

import "sync"

// stripe represents a single buffer stripe guarded by its own mutex.
type stripe[T any] struct {
	mu   sync.Mutex
	cons Consumer[T]
	data []T
	cap  int
}

// newStripe creates a new stripe with the given consumer and capacity.
func newStripe[T any](cons Consumer[T], capacity int) *stripe[T] {
	return &stripe[T]{
		cons: cons,
		data: make([]T, 0, capacity),
		cap:  capacity,
	}
}

// push appends an item and flushes when the stripe becomes full.
func (s *stripe[T]) push(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append(s.data, item)
	if len(s.data) < s.cap {
		return nil
	}
	return s.flushLocked()
}

// flush hands any buffered items to the consumer.
func (s *stripe[T]) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// flushLocked runs the consumer while the stripe is held so batches from one
// stripe are delivered in order. The consumer gets a fresh slice it owns.
func (s *stripe[T]) flushLocked() error {
	if len(s.data) == 0 {
		return nil
	}
	batch := s.data
	s.data = make([]T, 0, s.cap)
	return s.cons.Consume(batch)
}
