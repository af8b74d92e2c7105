// Package vsynctest provides test doubles for the vsync package.
package vsynctest

import (
	"sort"
	"sync"
	"time"
)

// Epoch is the initial time of a FakeClock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// FakeClock provides controllable time, and timers that fire only when the
// clock is advanced, on the goroutine calling Advance. It implements
// vsync.Clock. All methods are safe for concurrent use.
type FakeClock struct {
	now    time.Time
	timers []fakeTimer
	seq    uint64
	mu     sync.Mutex
}

type fakeTimer struct {
	when time.Time
	fn   func()
	seq  uint64
}

// NewFakeClock returns a FakeClock starting at Epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: Epoch}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Since returns the fake time elapsed since Epoch.
func (c *FakeClock) Since() time.Duration {
	return c.Now().Sub(Epoch)
}

// AfterFunc registers fn to be called once the clock reaches now+d. It never
// calls fn synchronously, even if d <= 0.
func (c *FakeClock) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	c.seq++
	c.timers = append(c.timers, fakeTimer{when: c.now.Add(d), fn: fn, seq: c.seq})
	c.mu.Unlock()
}

// Pending returns the number of timers that have not yet fired.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward by d, firing due timers in deadline order
// (then registration order), with the clock set to each timer's deadline.
// Timers registered by those callbacks also fire, if due within d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.advanceTo(c.now.Add(d))
}

// AdvanceTo moves the clock forward to t, as per Advance. It does nothing if
// t is not after the current time.
func (c *FakeClock) AdvanceTo(t time.Time) {
	c.mu.Lock()
	if !t.After(c.now) {
		c.mu.Unlock()
		return
	}
	c.advanceTo(t)
}

// advanceTo must be called with mu held, and releases it.
func (c *FakeClock) advanceTo(target time.Time) {
	for {
		sort.SliceStable(c.timers, func(i, j int) bool {
			if c.timers[i].when.Equal(c.timers[j].when) {
				return c.timers[i].seq < c.timers[j].seq
			}
			return c.timers[i].when.Before(c.timers[j].when)
		})

		if len(c.timers) == 0 || c.timers[0].when.After(target) {
			c.now = target
			c.mu.Unlock()
			return
		}

		t := c.timers[0]
		c.timers = c.timers[1:]
		if t.when.After(c.now) {
			c.now = t.when
		}
		c.mu.Unlock()

		t.fn()

		c.mu.Lock()
	}
}
