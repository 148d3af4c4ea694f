package contract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrAlreadyCompleted is returned for every signal after the first.
var ErrAlreadyCompleted = errors.New("completion already settled")

// PanicError is the failure recorded when asynchronous work panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("async work panicked: %v", e.Value) }

// Completion is the result of an async method: settled exactly once with a
// value or a failure. Later signals are rejected and counted.
type Completion[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	settled bool
	value   T
	err     error
	extra   atomic.Int64
}

func NewCompletion[T any]() *Completion[T] {
	return &Completion[T]{done: make(chan struct{})}
}

func (c *Completion[T]) settle(v T, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settled {
		c.extra.Add(1)
		return ErrAlreadyCompleted
	}
	c.settled = true
	c.value, c.err = v, err
	close(c.done)
	return nil
}

// Fulfil settles c with a value.
func (c *Completion[T]) Fulfil(v T) error { return c.settle(v, nil) }

// Fail settles c with a failure. A nil error is recorded as a failure too.
func (c *Completion[T]) Fail(err error) error {
	if err == nil {
		err = errors.New("async work failed without an error")
	}
	var zero T
	return c.settle(zero, err)
}

// Done is closed once c is settled.
func (c *Completion[T]) Done() <-chan struct{} { return c.done }

// Wait blocks until c is settled or ctx ends.
func (c *Completion[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.value, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Rejected counts the signals that arrived after settlement.
func (c *Completion[T]) Rejected() int64 { return c.extra.Load() }

// Go runs fn on its own goroutine and settles the returned completion with
// its result. A panic in fn becomes a *PanicError failure.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Completion[T] {
	c := NewCompletion[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = c.Fail(&PanicError{Value: r})
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			_ = c.Fail(err)
			return
		}
		_ = c.Fulfil(v)
	}()
	return c
}
