package uptime

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dvdash/dashboard/internal/timerslot"
	"k8s.io/utils/clock"
)

// TickInterval is the local extrapolation period between feed corrections.
const TickInterval = time.Second

// State is the last authoritative uptime value and when it was received.
type State struct {
	BaseSeconds int64
	LastSync    time.Time
}

// Extrapolator keeps a locally ticking uptime counter that the feed corrects.
// It belongs to the dashboard event loop and is not safe for concurrent use.
type Extrapolator struct {
	clock   clock.WithTicker
	ticker  *timerslot.Ticker
	state   *State
	display int64
}

func New(c clock.WithTicker) *Extrapolator {
	return &Extrapolator{clock: c, ticker: timerslot.NewTicker(c)}
}

// Correct replaces the base value with an authoritative reading and restarts
// the local tick. The displayed value may jump in either direction.
func (e *Extrapolator) Correct(seconds float64) {
	base := int64(0)
	if !math.IsNaN(seconds) && seconds > 0 {
		base = int64(math.Floor(seconds))
	}
	e.state = &State{BaseSeconds: base, LastSync: e.clock.Now()}
	e.display = base
	e.ticker.Restart(TickInterval)
}

// Tick recomputes the display value from the time elapsed since the last
// correction and returns it.
func (e *Extrapolator) Tick() int64 {
	if e.state == nil {
		return 0
	}
	elapsed := e.clock.Since(e.state.LastSync)
	if elapsed < 0 {
		elapsed = 0
	}
	e.display = e.state.BaseSeconds + int64(elapsed/time.Second)
	return e.display
}

// Display returns the value computed at the last correction or tick.
func (e *Extrapolator) Display() int64 {
	return e.display
}

// Synced reports whether a correction has been received.
func (e *Extrapolator) Synced() bool {
	return e.state != nil
}

// State returns a copy of the current state, or false before the first correction.
func (e *Extrapolator) State() (State, bool) {
	if e.state == nil {
		return State{}, false
	}
	return *e.state, true
}

// C is the tick channel; nil until the first correction.
func (e *Extrapolator) C() <-chan time.Time {
	return e.ticker.C()
}

func (e *Extrapolator) Stop() {
	e.ticker.Stop()
}

// Label renders the uptime line shown in the page header.
func Label(seconds int64, synced bool) string {
	if !synced {
		return "Service uptime: Loading…"
	}
	return fmt.Sprintf("Service uptime: %ds", seconds)
}

// Humanize renders seconds as "3d 4h 5m 6s", omitting leading zero units.
func Humanize(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}
	d := seconds / 86400
	h := seconds % 86400 / 3600
	m := seconds % 3600 / 60
	s := seconds % 60

	var parts []string
	if d > 0 {
		parts = append(parts, fmt.Sprintf("%dd", d))
	}
	if d > 0 || h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if d > 0 || h > 0 || m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))
	return strings.Join(parts, " ")
}
