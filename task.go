package vsync

type (
	// Task is a unit of work split into a read phase and a write phase.
	// At least one of Measure or Mutate must be non-nil, a nil phase is
	// skipped.
	//
	// Measure should only read layout-affecting state, Mutate may change it.
	// Within a pass, every Measure runs before any Mutate.
	Task struct {
		Measure func()
		Mutate  func()
	}

	// entry is a queued task, plus an optional completion hook, called after
	// the task's final phase, with the first error from any of its phases.
	entry struct {
		done func(err error)
		err  error
		task Task
	}

	// taskQueue is the pending queue, drained by snapshot-and-swap.
	taskQueue struct {
		entries []*entry
	}
)

func (x Task) valid() bool {
	return x.Measure != nil || x.Mutate != nil
}

// finalPhase returns the phase after which the task is complete.
func (x Task) finalPhase() Phase {
	if x.Mutate != nil {
		return PhaseMutate
	}
	return PhaseMeasure
}

func (x *entry) phase(p Phase) func() {
	switch p {
	case PhaseMeasure:
		return x.task.Measure
	case PhaseMutate:
		return x.task.Mutate
	default:
		return nil
	}
}

func (x *entry) record(err error) {
	if err != nil && x.err == nil {
		x.err = err
	}
}

func (x *entry) complete() {
	if x.done != nil {
		x.done(x.err)
	}
}

func (x *taskQueue) push(e *entry) {
	x.entries = append(x.entries, e)
}

func (x *taskQueue) len() int {
	return len(x.entries)
}

// take returns the current entries, replacing them with an empty queue.
func (x *taskQueue) take() []*entry {
	entries := x.entries
	x.entries = nil
	return entries
}
