// Package scheduler provides the deferred single-shot callback primitive the
// workflow engine uses to chain auto-progressions.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler runs fn once after the delay. The returned cancel function stops
// the callback if it has not fired yet; stale callbacks are additionally
// neutralized by the engine's own staleness guard, so a missed cancel is
// harmless.
type Scheduler interface {
	After(delay time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules callbacks on the process timer wheel.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// NewTimerScheduler creates a timer-backed scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[*time.Timer]struct{})}
}

func (s *TimerScheduler) After(delay time.Duration, fn func()) func() {
	// Arm and register under the lock: a near-zero delay may fire the
	// callback before After returns. The callback reads the timer pointer
	// only while holding the lock, after this critical section published it.
	s.mu.Lock()

	var timer *time.Timer

	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		s.mu.Unlock()

		fn()
	})

	s.timers[timer] = struct{}{}
	s.mu.Unlock()

	return func() {
		timer.Stop()
		s.forget(timer)
	}
}

// Stop cancels every pending callback. Used on shutdown.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for timer := range s.timers {
		timer.Stop()
		delete(s.timers, timer)
	}
}

func (s *TimerScheduler) forget(timer *time.Timer) {
	s.mu.Lock()
	delete(s.timers, timer)
	s.mu.Unlock()
}
