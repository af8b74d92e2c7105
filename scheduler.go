package vsync

import (
	"fmt"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// Scheduler batches tasks into frame-synchronized passes, running every
// pending measure phase before any pending mutate phase.
//
// Instances must be initialized using the New factory.
type Scheduler struct {
	// Prevent copying
	_ [0]func()

	logger       *logiface.Logger[logiface.Event]
	limiter      *catrate.Limiter
	visibility   Visibility
	native       ClockSource // nil if the host has no native primitive
	fallback     *PeriodicSource
	onError      func(err error)
	unsubscribe  func()
	frameTime    time.Time // of the running pass, owned by it
	deferredAt   time.Time // frame time of a firing deferred while re-arming
	queue        taskQueue
	stats        counters
	closeOnce    sync.Once
	mu           sync.Mutex // guards queue, armed, running and the re-arm state
	seriesTiming SeriesTiming
	armed        bool
	running      bool
	rearming     bool
	deferred     bool
}

// New initializes a Scheduler. Close should be called once it is no longer
// needed, to stop observing visibility changes.
func New(opts ...Option) (*Scheduler, error) {
	cfg, err := resolveSchedulerOptions(opts)
	if err != nil {
		return nil, err
	}

	limiter, err := newErrorLimiter(cfg.errorRates)
	if err != nil {
		return nil, err
	}

	x := &Scheduler{
		logger:       cfg.logger,
		limiter:      limiter,
		visibility:   cfg.visibility,
		fallback:     NewPeriodicSource(cfg.clock, cfg.period),
		onError:      cfg.onError,
		seriesTiming: cfg.seriesTiming,
	}

	if cfg.native != nil {
		x.native = nativeSource{host: cfg.native}
	}

	if x.visibility != nil {
		x.unsubscribe = x.visibility.OnVisibilityChanged(x.onVisibilityChanged)
	}

	return x, nil
}

func newErrorLimiter(rates map[time.Duration]int) (limiter *catrate.Limiter, err error) {
	if len(rates) == 0 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			limiter, err = nil, fmt.Errorf("vsync: invalid error rate limits: %v", r)
		}
	}()
	return catrate.NewLimiter(rates), nil
}

// Close stops observing visibility changes. Tasks already submitted, and
// tasks submitted after Close, still run, using the clock source selected by
// the last observed visibility at the time of arming.
func (x *Scheduler) Close() error {
	x.closeOnce.Do(func() {
		if x.unsubscribe != nil {
			x.unsubscribe()
		}
	})
	return nil
}

// Run submits task to the next pass, arming the scheduler if it is idle.
// A panic will occur if task has neither phase.
func (x *Scheduler) Run(task Task) {
	x.submit(&entry{task: task})
}

// Measure is shorthand for Run(Task{Measure: fn}).
func (x *Scheduler) Measure(fn func()) {
	x.Run(Task{Measure: fn})
}

// Mutate is shorthand for Run(Task{Mutate: fn}).
func (x *Scheduler) Mutate(fn func()) {
	x.Run(Task{Mutate: fn})
}

// CanAnimate reports whether the surface is currently visible. It is always
// true if no [Visibility] was configured.
func (x *Scheduler) CanAnimate() bool {
	return x.visibility == nil || x.visibility.IsVisible()
}

// State returns whether a pass is currently requested.
func (x *Scheduler) State() SchedulerState {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.armed {
		return StateArmed
	}
	return StateIdle
}

// Pending returns the number of tasks waiting for the next pass.
func (x *Scheduler) Pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.queue.len()
}

// Stats returns a snapshot of the scheduler's counters.
func (x *Scheduler) Stats() Stats {
	return x.stats.snapshot()
}

func (x *Scheduler) submit(e *entry) {
	if !e.task.valid() {
		panic(`vsync: task has no phases`)
	}

	x.mu.Lock()
	x.queue.push(e)
	if x.armed {
		x.mu.Unlock()
		return
	}
	x.armed = true
	x.mu.Unlock()

	x.request(`submit`)
}

// source selects the clock source for the current visibility.
func (x *Scheduler) source() (ClockSource, string) {
	if x.native != nil && x.CanAnimate() {
		x.stats.nativeRequests.Add(1)
		return x.native, `native`
	}
	x.stats.fallbackRequests.Add(1)
	return x.fallback, `fallback`
}

// request asks the current clock source for a pass, it must not be called
// with mu held.
func (x *Scheduler) request(reason string) {
	source, name := x.source()
	x.logArmed(name, reason)
	source.RequestCallback(x.executePass)
}

func (x *Scheduler) onVisibilityChanged() {
	x.stats.visibilityChanges.Add(1)

	x.mu.Lock()
	armed := x.armed
	x.mu.Unlock()

	x.logVisibilityChanged(x.CanAnimate(), armed)

	// the stale request is left outstanding, and will find the queue empty
	if armed {
		x.request(`visibility`)
	}
}

// executePass runs one pass, and is the callback for every clock source.
// It is safe to call redundantly: with an empty queue it does nothing.
//
// Passes never overlap. A firing that arrives while phases are running
// (from another goroutine, or reentrantly) is dropped, as only tasks
// submitted during the running pass can be pending, and that pass re-arms
// for them once it completes. A firing that arrives while the pass is
// re-arming, e.g. from a source that calls back synchronously, is deferred,
// and run as the next iteration of the same call, so a chain of passes
// never deepens the stack.
func (x *Scheduler) executePass(now time.Time) {
	x.mu.Lock()
	if x.running {
		if x.rearming && !x.deferred {
			x.deferred = true
			x.deferredAt = now
			x.mu.Unlock()
			return
		}
		x.mu.Unlock()
		x.stats.emptyPasses.Add(1)
		return
	}
	if x.queue.len() == 0 {
		x.mu.Unlock()
		x.stats.emptyPasses.Add(1)
		return
	}
	x.running = true
	batch := x.queue.take()
	x.mu.Unlock()

	for {
		x.runPass(now, batch)

		x.mu.Lock()
		x.armed = x.queue.len() != 0
		if !x.armed {
			x.running = false
			x.mu.Unlock()
			return
		}
		x.rearming = true
		x.mu.Unlock()

		x.request(`nested`)

		x.mu.Lock()
		x.rearming = false
		if !x.deferred {
			x.running = false
			x.mu.Unlock()
			return
		}
		x.deferred = false
		now = x.deferredAt
		batch = x.queue.take()
		x.mu.Unlock()
	}
}

// runPass runs the measure sweep, then the mutate sweep, over batch.
func (x *Scheduler) runPass(now time.Time, batch []*entry) {
	start := time.Now()
	x.frameTime = now
	x.stats.passes.Add(1)
	x.stats.tasks.Add(uint64(len(batch)))

	for _, phase := range [...]Phase{PhaseMeasure, PhaseMutate} {
		for _, e := range batch {
			if fn := e.phase(phase); fn != nil {
				e.record(x.runPhase(phase, fn))
			}
			if e.task.finalPhase() == phase {
				e.complete()
			}
		}
	}

	x.logPass(len(batch), time.Since(start))
}

// runPhase calls fn, recovering and reporting any panic.
func (x *Scheduler) runPhase(phase Phase, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Phase: phase, Value: r}
			x.stats.phasePanics.Add(1)
			x.report(phase, err)
		}
	}()
	fn()
	return nil
}
