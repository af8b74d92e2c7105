package vsync

import (
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

// SeriesTiming selects the frame timing value passed to a [SeriesMutator].
type SeriesTiming int

const (
	// SeriesTimingElapsed passes the time since the series started.
	SeriesTimingElapsed SeriesTiming = iota
	// SeriesTimingDelta passes the time since the previous frame of the
	// series (or since it started, for the first frame).
	SeriesTimingDelta
)

// schedulerOptions holds configuration options for Scheduler creation.
type schedulerOptions struct {
	logger       *logiface.Logger[logiface.Event]
	visibility   Visibility
	native       FrameRequester
	clock        Clock
	onError      func(err error)
	errorRates   map[time.Duration]int
	period       time.Duration
	seriesTiming SeriesTiming
}

// Option configures a Scheduler instance.
type Option interface {
	applyScheduler(*schedulerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (o *optionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applySchedulerFunc(opts)
}

// WithLogger attaches a structured logger. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithVisibility sets the visibility oracle. Without one, the surface is
// treated as always visible.
func WithVisibility(visibility Visibility) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.visibility = visibility
		return nil
	}}
}

// WithFrameRequester sets the host's native per-frame primitive, used while
// visible. Without one, the periodic fallback is used unconditionally.
func WithFrameRequester(native FrameRequester) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.native = native
		return nil
	}}
}

// WithClock sets the time source and timers of the periodic fallback.
// Defaults to [SystemClock].
func WithClock(clock Clock) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.clock = clock
		return nil
	}}
}

// WithPeriod sets the grid period of the periodic fallback.
// Defaults to [DefaultPeriod].
func WithPeriod(period time.Duration) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if period <= 0 {
			return ErrInvalidPeriod
		}
		opts.period = period
		return nil
	}}
}

// WithErrorHandler sets a handler receiving every error from a phase,
// typically a [*PanicError]. It is called on the pass goroutine, and must
// not block.
func WithErrorHandler(handler func(err error)) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.onError = handler
		return nil
	}}
}

// WithErrorRateLimits sets the per-phase rate limits applied to logging of
// phase errors, in the format accepted by catrate.NewLimiter. A nil or empty
// map disables limiting. The error handler is never rate limited.
// Defaults to 10 per second and 100 per minute.
func WithErrorRateLimits(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.errorRates = rates
		return nil
	}}
}

// WithSeriesTiming selects the frame timing value passed to series mutators.
// Defaults to [SeriesTimingElapsed].
func WithSeriesTiming(timing SeriesTiming) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		switch timing {
		case SeriesTimingElapsed, SeriesTimingDelta:
			opts.seriesTiming = timing
			return nil
		default:
			return fmt.Errorf("vsync: invalid series timing: %d", timing)
		}
	}}
}

// resolveSchedulerOptions applies Option instances to schedulerOptions.
func resolveSchedulerOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		clock:  SystemClock{},
		period: DefaultPeriod,
		errorRates: map[time.Duration]int{
			time.Second: 10,
			time.Minute: 100,
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.clock == nil {
		cfg.clock = SystemClock{}
	}
	return cfg, nil
}
