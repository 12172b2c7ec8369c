package logic

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/sweeney/env-sensor/internal/config"
)

// Sampler reads all immediate sensors once per tick. It keeps no memory of
// earlier ticks: no averaging, hysteresis or debounce.
type Sampler struct {
	analog  AnalogReader
	digital DigitalReader
}

// NewSampler creates a Sampler over the given readers.
func NewSampler(analog AnalogReader, digital DigitalReader) *Sampler {
	return &Sampler{analog: analog, digital: digital}
}

// Sample returns a fresh snapshot. A failed read leaves its field at the
// value the reader returned (zero for the shipped readers); the failures are
// returned combined so the caller can log them, and the snapshot is usable
// regardless.
func (s *Sampler) Sample() (Snapshot, error) {
	var snap Snapshot
	var errs error

	read := func(name string, ch int, dst *int) {
		v, err := s.analog.ReadChannel(ch)
		*dst = v
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %s channel %d: %w", name, ch, err))
		}
	}
	read("gas", config.ChannelGas, &snap.Gas)
	read("sound", config.ChannelSound, &snap.Sound)
	read("water", config.ChannelWater, &snap.Water)

	// A failed line request yields no level at all; both flags stay false
	// rather than decoding the zero value against an active-LOW line.
	motion, vibration, err := s.digital.ReadLevels()
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("read digital lines: %w", err))
		return snap, errs
	}
	snap.Motion = motion == config.MotionActive
	snap.Vibration = vibration == config.VibrationActive

	return snap, errs
}
