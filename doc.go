// Package vsync batches layout reads and writes into frame-synchronized
// passes, to avoid "layout thrashing".
//
// # Architecture
//
// A [Scheduler] collects [Task] values, each split into a measure (read)
// phase and a mutate (write) phase. Once per frame it runs a pass over
// everything pending: all measure phases in submission order, then all
// mutate phases in submission order. Tasks submitted while a pass is running
// land in the next pass.
//
// Frames come from one of two [ClockSource] backends:
//   - the host's native per-frame primitive, a [FrameRequester] such as
//     [FrameLoop], used while the surface is visible
//   - a [PeriodicSource], which fires on a fixed grid (16ms by default),
//     used while the surface is hidden, or always if the host has no native
//     primitive
//
// Visibility is read from a [Visibility] oracle, e.g. [VisibilityState].
// When visibility changes while a pass is pending, the scheduler requests
// another callback from the matching backend, without cancelling the stale
// one. Whichever fires second finds the queue empty and does nothing.
//
// # Promises and animations
//
// [Scheduler.RunPromise] and friends return a [Promise] that settles once
// the task's own phases have run. [Scheduler.RunAnim],
// [Scheduler.CreateAnimTask] and [Scheduler.RunAnimMutateSeries] only
// schedule work while the surface is visible.
//
// # Thread Safety
//
// All Scheduler methods may be called from any goroutine, including from
// within a phase. Passes never overlap, so phases observe a single-threaded
// model regardless of which goroutine a clock source fires on. Blocking on a
// [Promise] from within a phase of the same Scheduler will deadlock.
//
// # Usage
//
//	visibility := vsync.NewVisibilityState(true)
//	frames := vsync.NewFrameLoop()
//	scheduler, err := vsync.New(
//	    vsync.WithVisibility(visibility),
//	    vsync.WithFrameRequester(frames),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scheduler.Close()
//
//	var height int
//	scheduler.Run(vsync.Task{
//	    Measure: func() { height = readHeight() },
//	    Mutate:  func() { writeHeight(height * 2) },
//	})
//
//	// in the host render loop, once per frame
//	frames.Step(time.Now())
package vsync
