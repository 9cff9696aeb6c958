// Package util provides performance timing helpers
package util

import (
	"time"
)

// Timer represents an active timing operation
type Timer struct {
	name  string
	start time.Time
}

// StartTimer starts a new timer for the given operation name. Timings are
// reported through the debug logger only, so the returned timer is inert
// unless debug mode is on.
func StartTimer(name string) *Timer {
	if !IsDebug {
		return nil
	}
	return &Timer{name: name, start: time.Now()}
}

// StopAndLog stops the timer and logs the duration
func (t *Timer) StopAndLog() time.Duration {
	if t == nil {
		return 0
	}
	duration := time.Since(t.start)
	Debugf("[PERF] %s took %v", t.name, duration)
	return duration
}
