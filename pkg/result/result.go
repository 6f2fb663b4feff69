// Package result provides the success/failure wrapper returned across layer
// boundaries and the recovery combinators used by the repositories.
//
// Ordinary errors are folded into a Result. Context cancellation is never
// folded: it is handed back to the caller as a plain error so the scheduler
// keeps observing it.
package result

import (
	"context"
	"errors"
)

// Result carries either a value or an error.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result holding v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail returns a failed Result holding err.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("result: nil error")
	}
	return Result[T]{err: err}
}

// Get returns the value and error in the usual Go form.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// IsOk reports whether the Result is a success.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Value returns the held value. It is the zero value for failures.
func (r Result[T]) Value() T {
	return r.value
}

// ValueOr returns the held value, or def for failures.
func (r Result[T]) ValueOr(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

// IsCancellation reports whether err is a cancellation signal for ctx.
// context.Canceled always counts; any other error counts once ctx is done,
// since the operation was aborted by the enclosing task.
func IsCancellation(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return ctx != nil && ctx.Err() != nil
}

// Catching runs fn and folds ordinary errors into a failed Result.
// A cancellation is returned as the second value with an empty Result.
func Catching[T any](ctx context.Context, fn func(context.Context) (T, error)) (Result[T], error) {
	v, err := fn(ctx)
	if err == nil {
		return Ok(v), nil
	}
	if IsCancellation(ctx, err) {
		return Result[T]{}, cancellationError(ctx, err)
	}
	return Fail[T](err), nil
}

// Recover runs fn and substitutes fallback for any ordinary error, so the
// returned Result is always a success. Cancellation still propagates.
func Recover[T any](ctx context.Context, fallback T, fn func(context.Context) (T, error)) (Result[T], error) {
	r, err := Catching(ctx, fn)
	if err != nil {
		return r, err
	}
	return Ok(r.ValueOr(fallback)), nil
}

func cancellationError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if cerr := ctx.Err(); cerr != nil {
		return errors.Join(cerr, err)
	}
	return err
}
