package climate

import "math"

// Reading is one scripted FakeSensor result.
type Reading struct {
	Temperature float64
	Humidity    float64
	Err         error
}

// Failed is a scripted reading that reports a sensor timeout.
var Failed = Reading{Temperature: math.NaN(), Humidity: math.NaN(), Err: ErrNoReading}

// FakeSensor returns scripted readings in order, repeating the last one.
type FakeSensor struct {
	Readings []Reading
	Calls    int
}

// NewFakeSensor creates a FakeSensor with the given script.
func NewFakeSensor(readings ...Reading) *FakeSensor {
	return &FakeSensor{Readings: readings}
}

// ReadClimate returns the next scripted reading.
func (f *FakeSensor) ReadClimate() (float64, float64, error) {
	i := f.Calls
	f.Calls++
	if len(f.Readings) == 0 {
		return math.NaN(), math.NaN(), ErrNoReading
	}
	if i >= len(f.Readings) {
		i = len(f.Readings) - 1
	}
	r := f.Readings[i]
	return r.Temperature, r.Humidity, r.Err
}
