package queue

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator instance used by rule policies.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// WithRule decorates base with a go-playground/validator check.
// A non-empty tag validates the item itself (e.g. "gte=0", "required,max=64").
// An empty tag validates struct items against their `validate` field tags.
func WithRule[T any](base Policy[T], tag string) Policy[T] {
	v := Validator()
	return ValidateFunc(base, func(item T) error {
		var err error
		if tag == "" {
			err = v.Struct(item)
		} else {
			err = v.Var(item, tag)
		}
		if err != nil {
			return reject(item, err)
		}
		return nil
	})
}
