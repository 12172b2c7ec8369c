package gpio

import (
	"errors"

	"github.com/sweeney/env-sensor/internal/config"
)

// FakeLines is a test double that returns scripted input levels and records
// every output write. It implements both Reader and Writer.
type FakeLines struct {
	// Samples contains scripted input levels to return.
	// Each call to ReadLevels() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Outputs records every SetOutputs call in order.
	Outputs []Output

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by ReadLevels()
	ReadError error

	// WriteError, if set, will be returned by SetOutputs()
	WriteError error

	// CloseError, if set, will be returned by Close()
	CloseError error
}

// Sample represents a single raw reading of the input lines.
type Sample struct {
	Motion    config.Level
	Vibration config.Level
}

// Output represents one SetOutputs call.
type Output struct {
	Primary   bool
	Secondary bool
}

// Idle is the sample for a quiet room: motion line low, vibration line high.
var Idle = Sample{Motion: config.Low, Vibration: config.High}

// NewFakeLines creates a FakeLines with the given samples.
func NewFakeLines(samples []Sample) *FakeLines {
	return &FakeLines{Samples: samples}
}

// ReadLevels returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeLines) ReadLevels() (config.Level, config.Level, error) {
	if f.ReadError != nil {
		return config.Low, config.Low, f.ReadError
	}

	if len(f.Samples) == 0 {
		return config.Low, config.Low, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.Motion, sample.Vibration, nil
}

// SetOutputs records the requested output levels.
func (f *FakeLines) SetOutputs(primary, secondary bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Outputs = append(f.Outputs, Output{Primary: primary, Secondary: secondary})
	return nil
}

// Last returns the most recent output write, if any.
func (f *FakeLines) Last() (Output, bool) {
	if len(f.Outputs) == 0 {
		return Output{}, false
	}
	return f.Outputs[len(f.Outputs)-1], true
}

// Close marks the lines as closed.
func (f *FakeLines) Close() error {
	f.Closed = true
	return f.CloseError
}

// Reset resets the fake to the beginning of samples.
func (f *FakeLines) Reset() {
	f.index = 0
	f.Outputs = nil
	f.Closed = false
}
