package vsync

import (
	"time"
)

// logArmed logs a callback request, from the named backend.
func (x *Scheduler) logArmed(source string, reason string) {
	x.logger.Debug().
		Str(`source`, source).
		Str(`reason`, reason).
		Log(`vsync: requested frame callback`)
}

func (x *Scheduler) logVisibilityChanged(visible, armed bool) {
	x.logger.Debug().
		Bool(`visible`, visible).
		Bool(`armed`, armed).
		Log(`vsync: visibility changed`)
}

func (x *Scheduler) logPass(tasks int, took time.Duration) {
	x.logger.Trace().
		Int(`tasks`, tasks).
		Dur(`took`, took).
		Log(`vsync: pass complete`)
}

// report delivers a phase error to the error handler, and logs it, subject
// to the per-phase rate limit.
func (x *Scheduler) report(phase Phase, err error) {
	if x.onError != nil {
		x.onError(err)
	}

	if x.logger == nil {
		return
	}

	if _, ok := x.limiter.Allow(phase); !ok {
		x.stats.suppressedLogs.Add(1)
		return
	}

	x.logger.Err().
		Str(`phase`, phase.String()).
		Err(err).
		Log(`vsync: phase failed`)
}
