package lifecycle

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the callback. It returns false if the callback already ran
	// or the timer was already stopped.
	Stop() bool
}

// Scheduler creates timers. The default implementation wraps time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler schedules callbacks on the runtime timer heap.
var SystemScheduler Scheduler = systemScheduler{}
