package vsync

import (
	"context"
	"time"
)

// SeriesMutator is invoked once per frame of an animation series. The frame
// value is configured by [WithSeriesTiming], and is measured on the frame
// times passed by the clock source, relative to the series' first frame
// (for which it is always 0). Calling next, before returning, requests
// another frame, otherwise the series completes.
type SeriesMutator func(frame time.Duration, next func())

// series is the state of a running RunAnimMutateSeries.
type series struct {
	ctx       context.Context
	scheduler *Scheduler
	mutator   SeriesMutator
	promise   *Promise
	anim      func() bool
	start     time.Time // frame time of the first step
	prev      time.Time
	begun     bool
	stepping  bool
	requested bool
}

// RunAnim submits task as per Run, if the surface is visible, returning
// true. If it is not visible, it returns false, without submitting anything.
func (x *Scheduler) RunAnim(task Task) bool {
	if !task.valid() {
		panic(`vsync: task has no phases`)
	}
	if !x.CanAnimate() {
		return false
	}
	x.Run(task)
	return true
}

// CreateAnimTask returns a function that performs RunAnim(task) each time it
// is called, returning the result.
func (x *Scheduler) CreateAnimTask(task Task) func() bool {
	if !task.valid() {
		panic(`vsync: task has no phases`)
	}
	return func() bool { return x.RunAnim(task) }
}

// RunAnimMutateSeries runs mutator in the mutate phase of successive frames,
// for as long as it keeps requesting another frame, and the surface stays
// visible.
//
// The returned Promise resolves once mutator returns without calling next.
// It rejects with [ErrNotVisible] if the surface is hidden at the time of
// the call (mutator is never invoked), or is found hidden at a later frame
// boundary. It rejects with ctx.Err() if ctx is done at a frame boundary,
// and with a [*PanicError] if mutator panics.
func (x *Scheduler) RunAnimMutateSeries(ctx context.Context, mutator SeriesMutator) *Promise {
	if mutator == nil {
		panic(`vsync: nil series mutator`)
	}
	if !x.CanAnimate() {
		return rejectedPromise(ErrNotVisible)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := &series{
		ctx:       ctx,
		scheduler: x,
		mutator:   mutator,
		promise:   newPromise(),
	}
	s.anim = x.CreateAnimTask(Task{Mutate: s.step})

	if !s.anim() {
		s.promise.settle(ErrNotVisible)
	}

	return s.promise
}

func (s *series) step() {
	if err := s.ctx.Err(); err != nil {
		s.promise.settle(err)
		return
	}
	if !s.scheduler.CanAnimate() {
		s.promise.settle(ErrNotVisible)
		return
	}

	now := s.scheduler.frameTime
	if !s.begun {
		s.start, s.prev, s.begun = now, now, true
	}
	frame := now.Sub(s.start)
	if s.scheduler.seriesTiming == SeriesTimingDelta {
		frame = now.Sub(s.prev)
	}
	s.prev = now

	s.requested = false
	s.stepping = true
	err := s.scheduler.runPhase(PhaseMutate, func() { s.mutator(frame, s.next) })
	s.stepping = false

	switch {
	case err != nil:
		s.promise.settle(err)
	case !s.requested:
		s.promise.settle(nil)
	case !s.anim():
		s.promise.settle(ErrNotVisible)
	}
}

// next only counts while the mutator is running.
func (s *series) next() {
	if s.stepping {
		s.requested = true
	}
}
