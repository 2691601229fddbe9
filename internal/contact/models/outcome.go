package models

import dErrors "rolodex/pkg/domain-errors"

// Outcome is the result of a business operation: either a value or a
// classified error, never both and never neither. The zero Outcome is not
// valid; build one with Succeed or Fail.
type Outcome[T any] struct {
	value T
	err   *dErrors.Error
	set   bool
}

// Succeed wraps a success value.
func Succeed[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, set: true}
}

// Fail wraps a classified error. A nil err is promoted to an internal error
// so the outcome still carries exactly one side.
func Fail[T any](err *dErrors.Error) Outcome[T] {
	if err == nil {
		err = dErrors.New(dErrors.CodeInternal, dErrors.DefaultInternalMessage)
	}
	return Outcome[T]{err: err, set: true}
}

// OK reports whether the outcome holds a value.
func (o Outcome[T]) OK() bool {
	return o.set && o.err == nil
}

// Value returns the success value, or T's zero value on failure.
func (o Outcome[T]) Value() T {
	return o.value
}

// Err returns the classified error, or nil on success. An unset outcome
// reports an internal error.
func (o Outcome[T]) Err() *dErrors.Error {
	if !o.set {
		return dErrors.New(dErrors.CodeInternal, dErrors.DefaultInternalMessage)
	}
	return o.err
}

// Unpack bridges to the (value, error) idiom at call sites that want it.
func (o Outcome[T]) Unpack() (T, error) {
	if err := o.Err(); err != nil {
		var zero T
		return zero, err
	}
	return o.value, nil
}
