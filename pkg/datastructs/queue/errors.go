package queue

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyQueue is returned by Dequeue and Peek when the queue holds no items.
	ErrEmptyQueue = errors.New("queue: empty")

	// ErrValidation is the sentinel every admission rejection matches via errors.Is.
	ErrValidation = errors.New("queue: item rejected by policy")

	// ErrIntegrityMismatch is returned by Verify when the contents changed since the checkpoint.
	ErrIntegrityMismatch = errors.New("queue: integrity mismatch")

	// ErrBadIndex is returned when a policy selects an index outside the backing sequence.
	ErrBadIndex = errors.New("queue: policy returned index out of range")

	// ErrUnknownPolicy is returned by ParsePolicy for names it does not recognise.
	ErrUnknownPolicy = errors.New("queue: unknown policy")
)

// ValidationError reports an item the policy refused to admit.
// Err is the policy's own reason and is reachable through errors.Unwrap.
type ValidationError struct {
	Item any
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %#v: %v", ErrValidation.Error(), e.Item, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrValidation) match any rejection.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// reject wraps a policy error, leaving ValidationErrors produced by decorators untouched.
func reject(item any, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &ValidationError{Item: item, Err: err}
}
