package vsync

import (
	"sync"
	"time"
)

// FrameLoop is a [FrameRequester] driven by the host's render loop, which
// must call Step once per frame.
//
// Callbacks requested before a Step are called by that Step. Callbacks
// requested during a Step (e.g. by a pass re-arming) wait for the next one.
// The zero value is ready to use.
type FrameLoop struct {
	pending []func(now time.Time)
	frames  uint64
	mu      sync.Mutex
}

var _ FrameRequester = (*FrameLoop)(nil)

// NewFrameLoop returns a new FrameLoop.
func NewFrameLoop() *FrameLoop {
	return new(FrameLoop)
}

// RequestFrame registers fn to be called on the next Step.
func (x *FrameLoop) RequestFrame(fn func(now time.Time)) {
	x.mu.Lock()
	x.pending = append(x.pending, fn)
	x.mu.Unlock()
}

// Step runs one frame, calling every callback requested before it, in
// request order, and returns the number called.
func (x *FrameLoop) Step(now time.Time) int {
	x.mu.Lock()
	callbacks := x.pending
	x.pending = nil
	x.frames++
	x.mu.Unlock()

	for _, fn := range callbacks {
		fn(now)
	}

	return len(callbacks)
}

// Pending returns the number of callbacks waiting for the next Step.
func (x *FrameLoop) Pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.pending)
}

// Frames returns the number of times Step has been called.
func (x *FrameLoop) Frames() uint64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.frames
}
