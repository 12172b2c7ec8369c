package logic

import "time"

// Heartbeat gates a periodic liveness report on the tick clock.
type Heartbeat struct {
	interval Millis
	last     Millis
}

// NewHeartbeat creates a heartbeat that first fires one interval after start.
// An interval <= 0 disables it.
func NewHeartbeat(interval time.Duration, start Millis) *Heartbeat {
	if interval <= 0 {
		return &Heartbeat{}
	}
	return &Heartbeat{interval: Millis(interval.Milliseconds()), last: start}
}

// Due reports whether a heartbeat should be sent at now, and if so records it.
func (h *Heartbeat) Due(now Millis) bool {
	if h.interval == 0 {
		return false
	}
	if !Elapsed(now, h.last, h.interval) {
		return false
	}
	h.last = now
	return true
}
