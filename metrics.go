package vsync

import (
	"sync/atomic"
)

// Stats is a point-in-time snapshot of a Scheduler's counters.
type Stats struct {
	// Passes is the number of passes that ran at least one task.
	Passes uint64
	// EmptyPasses is the number of clock firings that found the queue empty,
	// i.e. redundant requests, after a visibility change.
	EmptyPasses uint64
	// Tasks is the number of tasks taken by passes.
	Tasks uint64
	// PhasePanics is the number of phases that panicked.
	PhasePanics uint64
	// SuppressedLogs is the number of phase errors not logged, due to rate
	// limiting.
	SuppressedLogs uint64
	// NativeRequests is the number of callbacks requested from the native
	// frame primitive.
	NativeRequests uint64
	// FallbackRequests is the number of callbacks requested from the
	// periodic fallback.
	FallbackRequests uint64
	// VisibilityChanges is the number of visibility notifications observed.
	VisibilityChanges uint64
}

// counters backs Stats. All fields are updated atomically.
type counters struct {
	passes            atomic.Uint64
	emptyPasses       atomic.Uint64
	tasks             atomic.Uint64
	phasePanics       atomic.Uint64
	suppressedLogs    atomic.Uint64
	nativeRequests    atomic.Uint64
	fallbackRequests  atomic.Uint64
	visibilityChanges atomic.Uint64
}

func (x *counters) snapshot() Stats {
	return Stats{
		Passes:            x.passes.Load(),
		EmptyPasses:       x.emptyPasses.Load(),
		Tasks:             x.tasks.Load(),
		PhasePanics:       x.phasePanics.Load(),
		SuppressedLogs:    x.suppressedLogs.Load(),
		NativeRequests:    x.nativeRequests.Load(),
		FallbackRequests:  x.fallbackRequests.Load(),
		VisibilityChanges: x.visibilityChanges.Load(),
	}
}
