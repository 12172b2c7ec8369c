// Package clock provides the wrapping millisecond counter the scheduler runs on.
package clock

import (
	"time"

	bclock "github.com/benbjohnson/clock"
)

// Millis is a monotonically increasing millisecond count that wraps modulo 2^32.
type Millis uint32

// Source reads Millis relative to the instant it was created.
type Source struct {
	clk  bclock.Clock
	boot time.Time
}

// NewSource starts a counter at zero on clk. A nil clk uses the wall clock.
func NewSource(clk bclock.Clock) *Source {
	if clk == nil {
		clk = bclock.New()
	}
	return &Source{clk: clk, boot: clk.Now()}
}

// Now returns the milliseconds elapsed since boot, truncated to 32 bits.
func (s *Source) Now() Millis {
	return Millis(uint32(s.clk.Since(s.boot).Milliseconds()))
}

// After returns a channel that fires once d has passed on the underlying clock.
func (s *Source) After(d time.Duration) <-chan time.Time {
	return s.clk.After(d)
}
