//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/env-sensor/internal/config"
)

// RealLines is not available on non-Linux platforms.
type RealLines struct{}

// NewRealLines returns an error on non-Linux platforms.
func NewRealLines(chipName string) (*RealLines, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// ReadLevels is not implemented on non-Linux platforms.
func (r *RealLines) ReadLevels() (config.Level, config.Level, error) {
	return config.Low, config.Low, errors.New("gpio: not supported")
}

// SetOutputs is not implemented on non-Linux platforms.
func (r *RealLines) SetOutputs(primary, secondary bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealLines) Close() error {
	return nil
}
