package scheduler

import "time"

// Scheduler fires a one-shot callback at a future instant. Delivery is
// at-least-once: callbacks must be idempotent, and there is no
// cancellation. An accepted offer simply turns the pending callback into
// a no-op.
type Scheduler interface {
	Schedule(at time.Time, fn func())
}

// Timer is the in-process implementation. Timers do not survive a process
// restart; the worker sweep re-drives any offer expiry that was lost.
type Timer struct{}

func NewTimer() *Timer {
	return &Timer{}
}

func (t *Timer) Schedule(at time.Time, fn func()) {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, fn)
}

var _ Scheduler = (*Timer)(nil)
