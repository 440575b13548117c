// Package task hands a synchronous computation to a background goroutine and
// gives the caller a handle to poll or wait on.
package task

import (
	"context"
	"fmt"
)

// Task is the handle of a computation running in the background.
type Task[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// Go starts fn on a new goroutine. The context is passed through to fn; the task
// itself never cancels a running computation.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		t.result, t.err = fn(ctx)
	}()
	return t
}

// Done is closed once the computation has returned.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Poll returns the result without blocking. ok is false while the task is still running.
func (t *Task[T]) Poll() (result T, ok bool, err error) {
	select {
	case <-t.done:
		return t.result, true, t.err
	default:
		var zero T
		return zero, false, nil
	}
}

// Wait blocks until the task finishes or ctx is done. Abandoning a task through
// ctx leaves the computation running to completion in the background.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
