package vsync

import (
	"sync"
	"time"
)

// DefaultPeriod is the fallback frame period, approximating 60 frames per
// second.
const DefaultPeriod = 16 * time.Millisecond

// PeriodicSource is the fallback [ClockSource], emulating a steady frame
// cadence with one-shot timers aligned to a fixed grid.
//
// The first request establishes the grid origin. Each later request targets
// the smallest grid point (origin + k*period) strictly after the previous
// firing, rather than one period from now, so irregular request times do
// not drift the cadence. If that point has already passed (the source was
// idle), the timer fires immediately, on behalf of the latest grid point not
// after now, which the following request is then aligned to.
//
// Only one timer is outstanding at a time: requests made while it is
// pending are coalesced into its firing.
//
// Instances must be initialized using the NewPeriodicSource factory.
type PeriodicSource struct {
	clock     Clock
	origin    time.Time
	target    time.Time // grid point of the outstanding timer, may be past
	lastFire  time.Time // grid point of the most recent firing
	pending   []func(now time.Time)
	period    time.Duration
	mu        sync.Mutex
	started   bool
	fired     bool
	scheduled bool
}

var _ ClockSource = (*PeriodicSource)(nil)

// NewPeriodicSource initializes a PeriodicSource. A nil clock defaults to
// [SystemClock]. A panic will occur if period is not positive.
func NewPeriodicSource(clock Clock, period time.Duration) *PeriodicSource {
	if period <= 0 {
		panic(ErrInvalidPeriod)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &PeriodicSource{
		clock:  clock,
		period: period,
	}
}

// Period returns the grid period.
func (x *PeriodicSource) Period() time.Duration {
	return x.period
}

// Outstanding reports whether a timer is currently pending.
func (x *PeriodicSource) Outstanding() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.scheduled
}

// RequestCallback registers fn to be called on the next grid firing.
func (x *PeriodicSource) RequestCallback(fn func(now time.Time)) {
	x.mu.Lock()
	x.pending = append(x.pending, fn)
	if x.scheduled {
		x.mu.Unlock()
		return
	}

	now := x.clock.Now()
	if !x.started {
		x.origin = now
		x.started = true
	}
	x.target = x.nextGridPoint(now)
	x.scheduled = true
	delay := max(x.target.Sub(now), 0)
	x.mu.Unlock()

	x.clock.AfterFunc(delay, x.fire)
}

// nextGridPoint must be called with mu held.
func (x *PeriodicSource) nextGridPoint(now time.Time) time.Time {
	after := now
	if x.fired {
		after = x.lastFire
	}

	k := after.Sub(x.origin)/x.period + 1
	point := x.origin.Add(k * x.period)

	if point.Before(now) {
		k = now.Sub(x.origin) / x.period
		point = x.origin.Add(k * x.period)
	}

	return point
}

func (x *PeriodicSource) fire() {
	x.mu.Lock()
	x.lastFire = x.target
	x.fired = true
	x.scheduled = false
	callbacks := x.pending
	x.pending = nil
	x.mu.Unlock()

	now := x.clock.Now()
	for _, fn := range callbacks {
		fn(now)
	}
}
