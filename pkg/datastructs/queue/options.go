package queue

import (
	"go.uber.org/zap"

	"github.com/huynhanx03/servicequeue/pkg/audit"
	"github.com/huynhanx03/servicequeue/pkg/timer"
)

// Option configures a ServiceQueue.
type Option[T any] func(*ServiceQueue[T])

// WithPolicy sets the ordering and admission policy. A nil policy keeps FIFO.
func WithPolicy[T any](p Policy[T]) Option[T] {
	return func(q *ServiceQueue[T]) {
		if p != nil {
			q.policy = p
		}
	}
}

// WithEncoder sets the serialization used by IntegrityHash and Fingerprint.
func WithEncoder[T any](enc Encoder[T]) Option[T] {
	return func(q *ServiceQueue[T]) {
		if enc != nil {
			q.encode = enc
		}
	}
}

// WithName names the queue in audit records and logs.
func WithName[T any](name string) Option[T] {
	return func(q *ServiceQueue[T]) { q.name = name }
}

// WithRecorder emits an audit record after every successful mutation.
func WithRecorder[T any](r audit.Recorder) Option[T] {
	return func(q *ServiceQueue[T]) { q.recorder = r }
}

// WithClock sets the clock that timestamps audit records.
func WithClock[T any](c timer.Clock) Option[T] {
	return func(q *ServiceQueue[T]) {
		if c != nil {
			q.clock = c
		}
	}
}

// WithLogger sets the logger used for recorder failures.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(q *ServiceQueue[T]) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithCapacity preallocates the backing sequence.
func WithCapacity[T any](n int) Option[T] {
	return func(q *ServiceQueue[T]) {
		if n > 0 {
			q.items = make([]T, 0, n)
		}
	}
}
