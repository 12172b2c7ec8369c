// Package gpio provides digital line access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/env-sensor/internal/config"

// Reader reads the raw levels of the sensor input lines.
type Reader interface {
	// ReadLevels returns the raw levels of the motion and vibration lines.
	// Levels are not interpreted here; active-level policy belongs to the
	// sampler.
	ReadLevels() (motion, vibration config.Level, err error)

	// Close releases GPIO resources.
	Close() error
}

// Writer drives the two indicator output lines.
type Writer interface {
	SetOutputs(primary, secondary bool) error
	Close() error
}

func level(on bool) int {
	if on {
		return int(config.High)
	}
	return int(config.Low)
}
