package contact

import "time"

// Timer is the handle of a scheduled task. Stop cancels the task and reports
// whether it was still pending.
type Timer interface {
	Stop() bool
}

// Scheduler runs a task once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, task func()) Timer
}

// SystemScheduler schedules tasks on the runtime timer.
type SystemScheduler struct{}

// AfterFunc implements Scheduler with time.AfterFunc.
func (SystemScheduler) AfterFunc(d time.Duration, task func()) Timer {
	return time.AfterFunc(d, task)
}
