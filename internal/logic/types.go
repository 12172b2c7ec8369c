// Package logic contains the tick scheduler of the sensor node: the timer
// gate, sensor sampling, the throttled climate cache, telemetry emission,
// display paging and rendering, and the actuation policy.
//
// Hardware is reached only through the small interfaces declared here, and
// time is always injected as a clock.Millis captured once per tick.
package logic

import (
	"github.com/sweeney/env-sensor/internal/clock"
	"github.com/sweeney/env-sensor/internal/config"
)

// Millis is the wrapping millisecond counter the gates compare.
type Millis = clock.Millis

// AnalogReader returns the raw conversion result of one analog channel.
type AnalogReader interface {
	ReadChannel(ch int) (int, error)
}

// DigitalReader returns the raw levels of the motion and vibration lines.
type DigitalReader interface {
	ReadLevels() (motion, vibration config.Level, err error)
}

// ClimateSensor performs one humidity/temperature measurement. A failed
// measurement is reported either as an error or as NaN in a value.
type ClimateSensor interface {
	ReadClimate() (temperature, humidity float64, err error)
}

// Display accepts one fixed-width line of text at a row.
type Display interface {
	WriteLine(row int, text []byte) error
}

// OutputWriter drives the two indicator outputs.
type OutputWriter interface {
	SetOutputs(primary, secondary bool) error
}

// Snapshot holds the instantaneous sensor values of a single tick.
type Snapshot struct {
	Gas       int
	Sound     int
	Water     int
	Motion    bool
	Vibration bool
}

// Climate is the cached humidity/temperature pair.
// Valid is false until the first successful read and never reverts.
type Climate struct {
	Temperature float64
	Humidity    float64
	Valid       bool
}

// Actuation is the pair of output signals derived from motion.
type Actuation struct {
	Primary   bool
	Secondary bool
}

// PageState is the display pager's state.
type PageState struct {
	Index            int
	LastTransitionAt Millis
}
