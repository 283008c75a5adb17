package queue

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"

	"github.com/huynhanx03/servicequeue/pkg/audit"
	"github.com/huynhanx03/servicequeue/pkg/hash"
	"github.com/huynhanx03/servicequeue/pkg/timer"
)

var (
	_ Queue[int] = (*ServiceQueue[int])(nil)
	_ Auditable  = (*ServiceQueue[int])(nil)
)

const defaultName = "default"

// ServiceQueue is a thread-safe queue whose removal order and admission rules
// come from an injected Policy.
//
// Items are always appended at the back; the policy only chooses which index
// is served next, so the arrival order of the remaining items never changes.
// Every public method takes the lock exactly once and works through the
// unexported *Locked helpers.
//
// The integrity hash is computed on demand and cached until the next
// mutation, so mutations never pay for hashing.
type ServiceQueue[T any] struct {
	mu     sync.Mutex
	items  []T
	policy Policy[T]
	encode Encoder[T]

	digest   string
	digestOK bool

	name     string
	recorder audit.Recorder
	clock    timer.Clock
	logger   *zap.Logger
}

// New creates an empty queue. Without options it is FIFO, unnamed ("default"),
// hashes items with GoSyntaxEncoder and records nothing.
func New[T any](opts ...Option[T]) *ServiceQueue[T] {
	q := &ServiceQueue[T]{
		policy: FifoPolicy[T]{},
		encode: GoSyntaxEncoder[T],
		name:   defaultName,
		clock:  timer.System,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Name returns the queue name used in audit records.
func (q *ServiceQueue[T]) Name() string { return q.name }

// Policy returns the policy the queue was built with.
func (q *ServiceQueue[T]) Policy() Policy[T] { return q.policy }

// Enqueue validates item and appends it. On rejection the queue is unchanged
// and the returned error matches ErrValidation.
func (q *ServiceQueue[T]) Enqueue(item T) error {
	_, err := q.EnqueueSize(item)
	return err
}

// EnqueueSize is Enqueue that also returns the size right after item was
// admitted, read in the same critical section. On rejection it returns the
// unchanged size.
func (q *ServiceQueue[T]) EnqueueSize(item T) (int, error) {
	q.mu.Lock()
	err := q.enqueueLocked(item)
	size := len(q.items)
	rec := q.recordLocked(audit.OpEnqueue, err == nil)
	q.mu.Unlock()

	q.emit(rec)
	return size, err
}

// EnqueueBatch admits items in order and stops at the first rejection.
// It returns how many items were admitted along with that rejection.
func (q *ServiceQueue[T]) EnqueueBatch(items []T) (int, error) {
	q.mu.Lock()
	var (
		n   int
		err error
	)
	for _, item := range items {
		if err = q.enqueueLocked(item); err != nil {
			break
		}
		n++
	}
	rec := q.recordLocked(audit.OpEnqueue, n > 0)
	q.mu.Unlock()

	q.emit(rec)
	return n, err
}

// Dequeue removes and returns the item selected by the policy.
// It returns ErrEmptyQueue, leaving the queue untouched, when there is nothing to serve.
func (q *ServiceQueue[T]) Dequeue() (T, error) {
	q.mu.Lock()
	item, err := q.removeLocked()
	rec := q.recordLocked(audit.OpDequeue, err == nil)
	q.mu.Unlock()

	q.emit(rec)
	return item, err
}

// DequeueBatch removes up to len(out) items into out, consulting the policy
// before each removal. Returns the count removed.
func (q *ServiceQueue[T]) DequeueBatch(out []T) int {
	q.mu.Lock()
	n := 0
	for n < len(out) {
		item, err := q.removeLocked()
		if err != nil {
			break
		}
		out[n] = item
		n++
	}
	rec := q.recordLocked(audit.OpDequeue, n > 0)
	q.mu.Unlock()

	q.emit(rec)
	return n
}

// Peek returns the item Dequeue would return, without removing it.
func (q *ServiceQueue[T]) Peek() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	i, err := q.nextLocked()
	if err != nil {
		return zero, err
	}
	return q.items[i], nil
}

// Size returns the number of items.
func (q *ServiceQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue holds no items.
func (q *ServiceQueue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Clear removes every item and returns how many were dropped.
func (q *ServiceQueue[T]) Clear() int {
	q.mu.Lock()
	n := len(q.items)
	clear(q.items)
	q.items = q.items[:0]
	q.digestOK = false
	rec := q.recordLocked(audit.OpClear, n > 0)
	q.mu.Unlock()

	q.emit(rec)
	return n
}

// Snapshot returns a copy of the items in arrival order. The copy shares
// nothing with the queue; element values are copied shallowly.
func (q *ServiceQueue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}

// IntegrityHash returns the hex SHA-256 of every item's encoding, concatenated
// in sequence order.
//
// The concatenation carries no item boundaries: two different sequences whose
// encodings concatenate to the same bytes hash identically.
func (q *ServiceQueue[T]) IntegrityHash() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.hashLocked()
}

// Fingerprint returns an xxhash of the same serialization IntegrityHash uses.
// Cheap change detection, not a tamper check.
func (q *ServiceQueue[T]) Fingerprint() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	buf := q.serializeLocked()
	defer bytebufferpool.Put(buf)
	return hash.Sum64(buf.B)
}

// Checkpoint captures the hash and size from one view of the queue.
func (q *ServiceQueue[T]) Checkpoint() Checkpoint {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Checkpoint{Hash: q.hashLocked(), Size: len(q.items)}
}

// Inspect returns a snapshot together with the checkpoint of that same state.
func (q *ServiceQueue[T]) Inspect() ([]T, Checkpoint) {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]T, len(q.items))
	copy(out, q.items)
	return out, Checkpoint{Hash: q.hashLocked(), Size: len(out)}
}

// Verify returns ErrIntegrityMismatch if the queue no longer matches cp.
func (q *ServiceQueue[T]) Verify(cp Checkpoint) error {
	current := q.Checkpoint()
	if current != cp {
		return errors.Wrapf(ErrIntegrityMismatch, "expected %s (size %d), got %s (size %d)",
			cp.Hash, cp.Size, current.Hash, current.Size)
	}
	return nil
}

func (q *ServiceQueue[T]) enqueueLocked(item T) error {
	if err := q.policy.Validate(item); err != nil {
		return reject(item, err)
	}
	q.items = append(q.items, item)
	q.digestOK = false
	return nil
}

func (q *ServiceQueue[T]) nextLocked() (int, error) {
	if len(q.items) == 0 {
		return 0, ErrEmptyQueue
	}
	i := q.policy.NextIndex(q.items)
	if i < 0 || i >= len(q.items) {
		return 0, errors.Wrapf(ErrBadIndex, "%s policy chose %d of %d", PolicyName(q.policy), i, len(q.items))
	}
	return i, nil
}

func (q *ServiceQueue[T]) removeLocked() (T, error) {
	var zero T
	i, err := q.nextLocked()
	if err != nil {
		return zero, err
	}
	item := q.items[i]
	q.items = slices.Delete(q.items, i, i+1)
	q.digestOK = false
	return item, nil
}

// serializeLocked returns a pooled buffer holding every encoded item; the caller puts it back.
func (q *ServiceQueue[T]) serializeLocked() *bytebufferpool.ByteBuffer {
	buf := bytebufferpool.Get()
	for _, item := range q.items {
		buf.B = q.encode(buf.B, item)
	}
	return buf
}

func (q *ServiceQueue[T]) hashLocked() string {
	if q.digestOK {
		return q.digest
	}
	buf := q.serializeLocked()
	defer bytebufferpool.Put(buf)
	q.digest, q.digestOK = hash.Digest(buf.B), true
	return q.digest
}

// recordLocked builds the audit record for a mutation that changed the queue.
// Mutation records carry no hash; tracked queues are hashed by the trail.
func (q *ServiceQueue[T]) recordLocked(op audit.Op, changed bool) *audit.Record {
	if q.recorder == nil || !changed {
		return nil
	}
	return &audit.Record{
		Queue: q.name,
		Op:    op,
		Size:  len(q.items),
		At:    q.clock.Now(),
	}
}

// CheckpointFunc adapts Checkpoint for audit.Trail.Track.
func (q *ServiceQueue[T]) CheckpointFunc() audit.CheckpointFunc {
	return func() (string, int) {
		cp := q.Checkpoint()
		return cp.Hash, cp.Size
	}
}

// emit hands rec to the recorder outside the lock. Recorder failures are
// logged and never fail the queue operation.
func (q *ServiceQueue[T]) emit(rec *audit.Record) {
	if rec == nil {
		return
	}
	if err := q.recorder.Record(context.Background(), *rec); err != nil {
		q.logger.Warn("record queue checkpoint",
			zap.String("queue", rec.Queue),
			zap.String("op", string(rec.Op)),
			zap.Error(err),
		)
	}
}
