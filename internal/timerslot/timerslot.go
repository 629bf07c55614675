// Package timerslot holds at most one pending timer or ticker at a time.
// Arming a slot always stops whatever it held before, so repeated
// disconnects or resyncs never accumulate timers.
//
// Slots are not safe for concurrent use; each one belongs to a single
// event loop goroutine that also reads from C.
package timerslot

import (
	"time"

	"k8s.io/utils/clock"
)

// Timer is a single-slot one-shot timer.
type Timer struct {
	clock clock.Clock
	timer clock.Timer
}

func NewTimer(c clock.Clock) *Timer {
	return &Timer{clock: c}
}

// Arm cancels any pending timer and schedules a new one after d.
func (t *Timer) Arm(d time.Duration) {
	t.Stop()
	t.timer = t.clock.NewTimer(d)
}

// Stop cancels the pending timer, if any.
func (t *Timer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Pending reports whether a timer is armed and has not been consumed.
func (t *Timer) Pending() bool {
	return t.timer != nil
}

// C returns the channel of the armed timer, or nil when the slot is empty.
// A nil channel blocks forever in a select, which disables the case.
func (t *Timer) C() <-chan time.Time {
	if t.timer == nil {
		return nil
	}
	return t.timer.C()
}

// Fired clears the slot after the owner received from C.
func (t *Timer) Fired() {
	t.timer = nil
}

// Ticker is a single-slot periodic ticker.
type Ticker struct {
	clock  clock.WithTicker
	ticker clock.Ticker
}

func NewTicker(c clock.WithTicker) *Ticker {
	return &Ticker{clock: c}
}

// Restart stops the current ticker, if any, and starts a new one with period d.
func (t *Ticker) Restart(d time.Duration) {
	t.Stop()
	t.ticker = t.clock.NewTicker(d)
}

func (t *Ticker) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}

func (t *Ticker) Running() bool {
	return t.ticker != nil
}

// C returns the tick channel, or nil when stopped.
func (t *Ticker) C() <-chan time.Time {
	if t.ticker == nil {
		return nil
	}
	return t.ticker.C()
}
