package game

import (
	"time"

	"github.com/coder/quartz"
)

// Timer is a cancellable handle for a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// fired or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// ClockScheduler schedules on a quartz clock. When Post is set the callback
// is handed to Post instead of running on the clock's goroutine, which lets
// a room run timer callbacks on its own event loop.
type ClockScheduler struct {
	Clock quartz.Clock
	Post  func(func())
}

// AfterFunc implements Scheduler.
func (s ClockScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	clock := s.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	post := s.Post
	return clock.AfterFunc(d, func() {
		if post != nil {
			post(fn)
			return
		}
		fn()
	}, "game", "phase")
}
