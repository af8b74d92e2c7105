package vsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunAnim_hidden(t *testing.T) {
	h := newTestHarness(t, false)
	var ran bool

	assert.False(t, h.scheduler.RunAnim(Task{Mutate: func() { ran = true }}))

	assert.Equal(t, StateIdle, h.scheduler.State())
	assert.Equal(t, 0, h.scheduler.Pending())
	assert.Equal(t, 0, h.frames.Pending())
	assert.Equal(t, 0, h.clock.Pending())

	h.frame()
	assert.False(t, ran)
}

func TestScheduler_RunAnim_visible(t *testing.T) {
	h := newTestHarness(t, true)
	var r recorder

	require.True(t, h.scheduler.RunAnim(Task{Measure: r.fn("measure"), Mutate: r.fn("mutate")}))
	require.Equal(t, StateArmed, h.scheduler.State())

	h.frame()
	assert.Equal(t, []string{"measure", "mutate"}, r.get())
}

func TestScheduler_CreateAnimTask(t *testing.T) {
	h := newTestHarness(t, true)
	var count int
	anim := h.scheduler.CreateAnimTask(Task{Mutate: func() { count++ }})

	assert.True(t, anim())
	assert.True(t, anim())
	h.frame()
	assert.Equal(t, 2, count, "each call submits once")

	h.visibility.Set(false)
	assert.False(t, anim())
	h.frame()
	assert.Equal(t, 2, count)
}

func TestScheduler_CreateAnimTask_panicsOnEmptyTask(t *testing.T) {
	h := newTestHarness(t, true)
	assert.Panics(t, func() { h.scheduler.CreateAnimTask(Task{}) })
	assert.Panics(t, func() { h.scheduler.RunAnim(Task{}) })
}

func TestScheduler_RunAnimMutateSeries_hidden(t *testing.T) {
	h := newTestHarness(t, false)
	var calls int

	p := h.scheduler.RunAnimMutateSeries(context.Background(), func(time.Duration, func()) { calls++ })

	require.True(t, p.Settled(), "rejects immediately")
	assert.ErrorIs(t, p.Err(), ErrNotVisible)
	assert.Equal(t, StateIdle, h.scheduler.State())

	h.frame()
	assert.Equal(t, 0, calls)
}

func TestScheduler_RunAnimMutateSeries_elapsed(t *testing.T) {
	h := newTestHarness(t, true)
	var frames []time.Duration

	p := h.scheduler.RunAnimMutateSeries(context.Background(), func(frame time.Duration, next func()) {
		frames = append(frames, frame)
		if len(frames) < 3 {
			next()
		}
	})

	for i := 0; i < 5 && !p.Settled(); i++ {
		h.frame()
	}

	require.True(t, p.Settled())
	assert.NoError(t, p.Err())
	assert.Equal(t, []time.Duration{0, ms(16), ms(32)}, frames)
	assert.Equal(t, StateIdle, h.scheduler.State())
	assert.Equal(t, uint64(3), h.scheduler.Stats().Passes)
}

func TestScheduler_RunAnimMutateSeries_delta(t *testing.T) {
	h := newTestHarness(t, true, WithSeriesTiming(SeriesTimingDelta))
	var frames []time.Duration

	p := h.scheduler.RunAnimMutateSeries(nil, func(frame time.Duration, next func()) {
		frames = append(frames, frame)
		if len(frames) < 3 {
			next()
		}
	})

	h.frame()
	h.clock.Advance(ms(4)) // a late frame
	h.frame()
	h.frame()

	require.True(t, p.Settled())
	assert.NoError(t, p.Err())
	assert.Equal(t, []time.Duration{0, ms(20), ms(16)}, frames)
}

// hostSeriesFrames runs a series, one frame per time, on a scheduler using the system
// clock, stepping a FrameLoop with the given frame times, which share no
// timebase with the clock.
func hostSeriesFrames(t *testing.T, timing SeriesTiming, times ...time.Time) []time.Duration {
	t.Helper()
	frames := NewFrameLoop()
	s, err := New(WithFrameRequester(frames), WithSeriesTiming(timing))
	require.NoError(t, err)
	defer s.Close()

	var got []time.Duration
	p := s.RunAnimMutateSeries(context.Background(), func(frame time.Duration, next func()) {
		got = append(got, frame)
		if len(got) < len(times) {
			next()
		}
	})

	for _, now := range times {
		require.Equal(t, 1, frames.Step(now))
	}

	require.True(t, p.Settled())
	require.NoError(t, p.Err())
	return got
}

func TestScheduler_RunAnimMutateSeries_hostFrameTimes(t *testing.T) {
	base := time.Unix(1000, 0)
	times := []time.Time{base, base.Add(ms(16)), base.Add(ms(40))}

	t.Run("elapsed", func(t *testing.T) {
		assert.Equal(t, []time.Duration{0, ms(16), ms(40)}, hostSeriesFrames(t, SeriesTimingElapsed, times...))
	})

	t.Run("delta", func(t *testing.T) {
		assert.Equal(t, []time.Duration{0, ms(16), ms(24)}, hostSeriesFrames(t, SeriesTimingDelta, times...))
	})
}

func TestScheduler_RunAnimMutateSeries_frameFuncHost(t *testing.T) {
	// frame times from a host counter, unrelated to any clock
	var frame int64
	s, err := New(WithFrameRequester(FrameFunc(func(fn func(now time.Time)) {
		frame++
		fn(time.UnixMilli(frame * 10))
	})))
	require.NoError(t, err)
	defer s.Close()

	var got []time.Duration
	p := s.RunAnimMutateSeries(context.Background(), func(elapsed time.Duration, next func()) {
		got = append(got, elapsed)
		if len(got) < 4 {
			next()
		}
	})

	require.True(t, p.Settled())
	assert.NoError(t, p.Err())
	assert.Equal(t, []time.Duration{0, ms(10), ms(20), ms(30)}, got)
}

func TestScheduler_RunAnimMutateSeries_hiddenMidSeries(t *testing.T) {
	h := newTestHarness(t, true)
	var calls int

	p := h.scheduler.RunAnimMutateSeries(context.Background(), func(_ time.Duration, next func()) {
		calls++
		next()
	})

	h.frame()
	require.Equal(t, 1, calls)
	require.False(t, p.Settled())

	h.visibility.Set(false)
	h.frame()

	require.True(t, p.Settled())
	assert.ErrorIs(t, p.Err(), ErrNotVisible)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateIdle, h.scheduler.State())
}

func TestScheduler_RunAnimMutateSeries_contextCanceled(t *testing.T) {
	h := newTestHarness(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls int

	p := h.scheduler.RunAnimMutateSeries(ctx, func(_ time.Duration, next func()) {
		calls++
		next()
	})

	h.frame()
	h.frame()
	cancel()
	h.frame()

	require.True(t, p.Settled())
	assert.ErrorIs(t, p.Err(), context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestScheduler_RunAnimMutateSeries_mutatorPanics(t *testing.T) {
	var reported []error
	h := newTestHarness(t, true, WithErrorHandler(func(err error) { reported = append(reported, err) }))
	cause := errors.New("boom")

	p := h.scheduler.RunAnimMutateSeries(context.Background(), func(_ time.Duration, next func()) {
		next()
		panic(cause)
	})

	h.frame()

	require.True(t, p.Settled())
	var panicErr *PanicError
	require.True(t, errors.As(p.Err(), &panicErr))
	assert.Equal(t, PhaseMutate, panicErr.Phase)
	assert.ErrorIs(t, p.Err(), cause)
	assert.Len(t, reported, 1)
	assert.Equal(t, StateIdle, h.scheduler.State(), "no further frames")
}

func TestScheduler_RunAnimMutateSeries_nextAfterReturnIgnored(t *testing.T) {
	h := newTestHarness(t, true)
	var saved func()
	var calls int

	p := h.scheduler.RunAnimMutateSeries(context.Background(), func(_ time.Duration, next func()) {
		calls++
		saved = next
	})

	h.frame()
	require.True(t, p.Settled())
	saved()
	h.frame()

	assert.NoError(t, p.Err())
	assert.Equal(t, 1, calls)
}

func TestScheduler_RunAnimMutateSeries_nilMutator(t *testing.T) {
	h := newTestHarness(t, true)
	assert.Panics(t, func() { h.scheduler.RunAnimMutateSeries(context.Background(), nil) })
}
