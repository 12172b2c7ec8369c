// Package config holds the build-time configuration of the sensor node.
// Periods, pins and display geometry are constants; nothing here is
// adjustable while the process runs.
package config

import "time"

// Scheduler periods in milliseconds of the monotonic counter.
const (
	ClimatePeriodMs   = 2000 // throttled humidity/temperature sampling
	TelemetryPeriodMs = 1000 // one telemetry line per second
	PagePeriodMs      = 3000 // display page rotation
)

// TickDelay is the fixed pause at the end of every tick. It bounds the tick
// rate only; gate periods are measured against the clock.
const TickDelay = 120 * time.Millisecond

// Level is a raw digital line level.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

// Active levels: the motion detector drives its line HIGH when triggered,
// the vibration switch pulls its line LOW.
const (
	MotionActive    = High
	VibrationActive = Low
)

// Digital line offsets on the GPIO chip (BCM numbering).
const (
	PinMotion    = 17
	PinVibration = 27
	PinIndicator = 22 // primary output
	PinBuzzer    = 23 // secondary output
)

// DefaultGPIOChip is the character device the lines are requested from.
const DefaultGPIOChip = "gpiochip0"

// ADC channels (ADS1115 single-ended inputs) per analog sensor.
const (
	ChannelGas   = 0
	ChannelSound = 1
	ChannelWater = 2
)

// I2C addresses on the shared bus.
const (
	AddrADC     = 0x48
	AddrClimate = 0x38
	AddrDisplay = 0x27
)

// DefaultI2CBus is the periph bus name opened at startup.
const DefaultI2CBus = "/dev/i2c-1"

// Display geometry.
const (
	DisplayWidth  = 16
	DisplayHeight = 2
)

// HistoryWindow is the number of telemetry records kept for the status page.
const HistoryWindow = 300
