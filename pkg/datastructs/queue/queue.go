package queue

// Queue is the policy-driven queue surface shared by ServiceQueue and its transports.
type Queue[T any] interface {
	// Enqueue admits an item at the back of the queue.
	// Returns a *ValidationError if the policy rejects it.
	Enqueue(item T) error

	// Dequeue removes and returns the item the policy selects.
	// Returns ErrEmptyQueue if the queue is empty.
	Dequeue() (T, error)

	// Peek returns the item Dequeue would return without removing it.
	Peek() (T, error)

	// Size returns the number of items currently held.
	Size() int

	// IsEmpty reports whether Size() == 0.
	IsEmpty() bool

	// Snapshot returns an independent copy of the items in arrival order.
	Snapshot() []T

	// IntegrityHash returns the hex SHA-256 of the current contents.
	IntegrityHash() string
}

// Auditable is implemented by queues that can prove their state between two observations.
type Auditable interface {
	Checkpoint() Checkpoint
	Verify(cp Checkpoint) error
}

// Checkpoint is a point-in-time fingerprint of a queue.
type Checkpoint struct {
	Hash string `json:"hash" validate:"required,len=64,hexadecimal"`
	Size int    `json:"size" validate:"gte=0"`
}
