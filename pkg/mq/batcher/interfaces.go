package batcher

import "errors"

// ErrClosed is returned by Push after Close.
var ErrClosed = errors.New("batcher: closed")

// Consumer is the interface that must be implemented by users of the Batcher.
// It is responsible for processing a batch of items.
type Consumer[T any] interface {
	// Consume processes a batch of items. The batch is owned by the consumer.
	Consume(batch []T) error
}

// ConsumerFunc adapts a plain function to Consumer.
type ConsumerFunc[T any] func(batch []T) error

func (f ConsumerFunc[T]) Consume(batch []T) error { return f(batch) }

// Config holds configuration for the StripedBatcher.
type Config struct {
	// StripeSize is the capacity of a single stripe buffer.
	// When a stripe reaches this size, it will be flushed to the Consumer.
	StripeSize int

	// Stripes is the number of independent buffers pushes are spread over.
	// One stripe keeps items in push order. Defaults to GOMAXPROCS.
	Stripes int

	// OnError receives errors returned by the Consumer on size-triggered flushes.
	OnError func(error)
}
