package batcher

import (
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
)

const defaultStripeSize = 512

// StripedBatcher is a concurrent batcher using striped buffers.
//
// Behavior:
//   - Multiple goroutines can call Push() concurrently.
//   - Pushes are spread round-robin over a fixed set of stripes.
//   - When a stripe is full, it is flushed to the Consumer immediately.
//   - Flush drains every stripe; Close flushes and rejects later pushes,
//     so nothing pushed before Close is lost.
type StripedBatcher[T any] struct {
	mu      sync.RWMutex // held shared by Push, exclusively by Close
	closed  bool
	stripes []*stripe[T]
	next    atomic.Uint64
	onError func(error)
}

// New creates a new StripedBatcher for type T.
func New[T any](cons Consumer[T], cfg Config) *StripedBatcher[T] {
	if cfg.StripeSize <= 0 {
		cfg.StripeSize = defaultStripeSize
	}
	if cfg.Stripes <= 0 {
		cfg.Stripes = runtime.GOMAXPROCS(0)
	}

	b := &StripedBatcher[T]{
		stripes: make([]*stripe[T], cfg.Stripes),
		onError: cfg.OnError,
	}
	for i := range b.stripes {
		b.stripes[i] = newStripe[T](cons, cfg.StripeSize)
	}
	return b
}

// Push adds an item to the batcher.
// It may trigger a flush to Consumer if the underlying stripe becomes full.
func (b *StripedBatcher[T]) Push(item T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	s := b.stripes[(b.next.Add(1)-1)%uint64(len(b.stripes))]
	if err := s.push(item); err != nil && b.onError != nil {
		b.onError(err)
	}
	return nil
}

// Flush hands every buffered item to the Consumer and returns the combined consumer errors.
func (b *StripedBatcher[T]) Flush() error {
	var err error
	for _, s := range b.stripes {
		err = multierr.Append(err, s.flush())
	}
	return err
}

// Close flushes pending items. Subsequent pushes return ErrClosed.
func (b *StripedBatcher[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.Flush()
}

// Stripes returns the number of stripes.
func (b *StripedBatcher[T]) Stripes() int { return len(b.stripes) }
