package vsync

import (
	"time"
)

type (
	// Clock provides time, and one-shot delayed callbacks. The default is
	// [SystemClock]. Tests may inject a fake, e.g. vsynctest.FakeClock.
	Clock interface {
		Now() time.Time
		// AfterFunc calls fn, once, after at least d has elapsed. It may be
		// called on any goroutine.
		AfterFunc(d time.Duration, fn func())
	}

	// SystemClock implements Clock using the time package.
	SystemClock struct{}

	// ClockSource abstracts "call me once, roughly one frame from now".
	//
	// RequestCallback must call fn at most once per request, passing the
	// frame time. Requests cannot be cancelled.
	ClockSource interface {
		RequestCallback(fn func(now time.Time))
	}

	// FrameRequester models the host's native per-frame callback primitive.
	// RequestFrame must call fn once, near the next rendering frame. It may
	// call fn synchronously, passes chained that way run iteratively.
	FrameRequester interface {
		RequestFrame(fn func(now time.Time))
	}

	// FrameFunc adapts a function to a FrameRequester.
	FrameFunc func(fn func(now time.Time))

	// nativeSource is the ClockSource backed by a FrameRequester.
	nativeSource struct {
		host FrameRequester
	}
)

var (
	_ Clock          = SystemClock{}
	_ FrameRequester = FrameFunc(nil)
	_ ClockSource    = nativeSource{}
)

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// RequestFrame calls f(fn).
func (f FrameFunc) RequestFrame(fn func(now time.Time)) { f(fn) }

func (x nativeSource) RequestCallback(fn func(now time.Time)) {
	x.host.RequestFrame(fn)
}
