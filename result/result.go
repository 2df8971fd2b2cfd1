// Package result carries the outcome of every public catalog operation.
//
// A Result is either a success holding a value or a failure holding a user
// facing message, a Kind and the underlying error. Expected failures
// (validation, not found, connectivity, unexpected errors) are never returned
// as bare errors from the catalog services; they are folded into a Result.
package result

// Result is immutable once built.
type Result[T any] struct {
	value   T
	ok      bool
	kind    Kind
	message string
	err     error
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

func failure[T any](kind Kind, message string, err error) Result[T] {
	return Result[T]{kind: kind, message: message, err: err}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.ok }

// Value returns the success value, or the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Message returns the user facing failure message, empty on success.
func (r Result[T]) Message() string { return r.message }

// Kind classifies the failure. Successful results report KindNone.
func (r Result[T]) Kind() Kind { return r.kind }

// Err returns the classified error behind a failure, nil on success.
func (r Result[T]) Err() error { return r.err }

// Unwrap converts the result into the usual Go (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}
	var zero T
	return zero, r.err
}

// Map converts the success value while keeping failures intact.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return failure[U](r.kind, r.message, r.err)
	}
	return Success(fn(r.value))
}
