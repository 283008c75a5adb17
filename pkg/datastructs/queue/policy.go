package queue

import (
	"strings"

	"github.com/pkg/errors"
)

// Policy decides which element of the backing sequence is served next and
// whether an item may be admitted at all.
type Policy[T any] interface {
	// NextIndex returns the index of the element to observe or remove next.
	// items is never empty and must not be modified.
	NextIndex(items []T) int

	// Validate returns nil to admit item, or the reason it is rejected.
	Validate(item T) error
}

// Named is implemented by policies that report a name for logs and config.
type Named interface {
	Name() string
}

const (
	PolicyFIFO = "fifo"
	PolicyLIFO = "lifo"
)

var (
	_ Policy[int] = FifoPolicy[int]{}
	_ Policy[int] = LifoPolicy[int]{}
)

// FifoPolicy serves items in arrival order.
type FifoPolicy[T any] struct{}

func (FifoPolicy[T]) NextIndex([]T) int { return 0 }
func (FifoPolicy[T]) Validate(T) error  { return nil }
func (FifoPolicy[T]) Name() string      { return PolicyFIFO }

// LifoPolicy serves the most recently admitted item first.
type LifoPolicy[T any] struct{}

func (LifoPolicy[T]) NextIndex(items []T) int { return len(items) - 1 }
func (LifoPolicy[T]) Validate(T) error        { return nil }
func (LifoPolicy[T]) Name() string            { return PolicyLIFO }

// ParsePolicy resolves a policy by its configured name.
func ParsePolicy[T any](name string) (Policy[T], error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyFIFO:
		return FifoPolicy[T]{}, nil
	case PolicyLIFO:
		return LifoPolicy[T]{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolicy, "%q", name)
	}
}

// PolicyName returns the policy's name, or "custom" when it does not implement Named.
func PolicyName(p any) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return "custom"
}

// ruleFunc layers an extra admission check over a base policy.
type ruleFunc[T any] struct {
	base  Policy[T]
	check func(T) error
}

// ValidateFunc returns a policy that orders like base and additionally
// rejects any item for which check returns an error.
func ValidateFunc[T any](base Policy[T], check func(T) error) Policy[T] {
	if base == nil {
		base = FifoPolicy[T]{}
	}
	return &ruleFunc[T]{base: base, check: check}
}

func (r *ruleFunc[T]) NextIndex(items []T) int { return r.base.NextIndex(items) }

func (r *ruleFunc[T]) Validate(item T) error {
	if err := r.base.Validate(item); err != nil {
		return err
	}
	if r.check == nil {
		return nil
	}
	return r.check(item)
}

func (r *ruleFunc[T]) Name() string { return PolicyName(r.base) }
