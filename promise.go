package vsync

import (
	"context"
	"sync"
)

// Promise models the completion of a scheduled task or animation series.
// It settles exactly once, with a nil error on success.
type Promise struct {
	err  error
	done chan struct{}
	once sync.Once
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

func rejectedPromise(err error) *Promise {
	p := newPromise()
	p.settle(err)
	return p
}

// settle resolves (nil) or rejects (non-nil) the promise, only the first
// call has any effect.
func (p *Promise) settle(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done returns a channel that is closed once the promise has settled.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Err returns the error the promise settled with, or nil if it resolved
// successfully, or has not yet settled.
func (p *Promise) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Settled reports whether the promise has settled.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the promise settles, returning its error, or until ctx
// is done, returning ctx.Err().
//
// This method must not be called from within a phase of the Scheduler that
// would settle it.
func (p *Promise) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return p.err
	}
}

// RunPromise submits task as per Run, returning a Promise that settles after
// the task's final phase has run, with the first error (e.g. a
// [*PanicError]) from either of its phases.
func (x *Scheduler) RunPromise(task Task) *Promise {
	p := newPromise()
	x.submit(&entry{task: task, done: p.settle})
	return p
}

// MeasurePromise is shorthand for RunPromise(Task{Measure: fn}).
func (x *Scheduler) MeasurePromise(fn func()) *Promise {
	return x.RunPromise(Task{Measure: fn})
}

// MutatePromise is shorthand for RunPromise(Task{Mutate: fn}).
func (x *Scheduler) MutatePromise(fn func()) *Promise {
	return x.RunPromise(Task{Mutate: fn})
}
