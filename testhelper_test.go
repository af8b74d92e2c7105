package vsync

import (
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-vsync/vsynctest"
)

// testHarness wires a Scheduler to fake time, a frame loop, and a settable
// visibility, so passes only run when a test says so.
type testHarness struct {
	t          *testing.T
	scheduler  *Scheduler
	clock      *vsynctest.FakeClock
	frames     *FrameLoop
	visibility *VisibilityState
}

func newTestHarness(t *testing.T, visible bool, opts ...Option) *testHarness {
	t.Helper()
	h := &testHarness{
		t:          t,
		clock:      vsynctest.NewFakeClock(),
		frames:     NewFrameLoop(),
		visibility: NewVisibilityState(visible),
	}
	opts = append([]Option{
		WithClock(h.clock),
		WithFrameRequester(h.frames),
		WithVisibility(h.visibility),
	}, opts...)
	s, err := New(opts...)
	if err != nil {
		t.Fatal("New failed:", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	h.scheduler = s
	return h
}

// frame advances the fake clock by one default period, then steps the frame
// loop at the new time, so both backends get a chance to fire.
func (h *testHarness) frame() {
	h.clock.Advance(DefaultPeriod)
	h.frames.Step(h.clock.Now())
}

// recorder collects labels in order, safe for concurrent use.
type recorder struct {
	events []string
	mu     sync.Mutex
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) fn(event string) func() {
	return func() { r.add(event) }
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
