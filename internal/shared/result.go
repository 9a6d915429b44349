package shared

// Result carries either a value or the reason an operation did not succeed.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Success wraps a successful value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Failure wraps a failure reason. A nil err is treated as a generic failure.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = ErrValidation
	}
	return Result[T]{err: err}
}

// OK reports whether the result holds a value.
func (r Result[T]) OK() bool { return r.ok }

// Value returns the value and whether it is present.
func (r Result[T]) Value() (T, bool) { return r.value, r.ok }

// Err returns the failure reason, nil on success.
func (r Result[T]) Err() error { return r.err }

// Unwrap converts the result back into Go's (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}
	var zero T
	return zero, r.err
}
