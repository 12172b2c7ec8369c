// Package climate reads the humidity/temperature sensor.
package climate

import (
	"errors"
	"fmt"
	"math"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/aht20"
)

// Sensor performs one humidity/temperature measurement.
type Sensor interface {
	// ReadClimate returns temperature in degrees Celsius and relative
	// humidity in percent. A failed measurement returns NaN for both values
	// together with the error.
	ReadClimate() (temperature, humidity float64, err error)
}

// measurer is the part of the AHT20 driver this package uses.
type measurer interface {
	Read() error
	Celsius() float32
	RelHumidity() float32
}

// AHT20 reads an AHT20 sensor over I2C.
type AHT20 struct {
	dev measurer
}

// NewAHT20 configures an AHT20 at addr on bus. Any bus with a
// Tx(addr, w, r) method works, including a periph i2c.Bus.
func NewAHT20(bus drivers.I2C, addr uint16) *AHT20 {
	d := aht20.New(bus)
	d.Address = addr
	d.Configure()
	return &AHT20{dev: &d}
}

// ReadClimate triggers a measurement and waits for the result.
func (a *AHT20) ReadClimate() (float64, float64, error) {
	if err := a.dev.Read(); err != nil {
		return math.NaN(), math.NaN(), fmt.Errorf("aht20: %w", err)
	}
	return float64(a.dev.Celsius()), float64(a.dev.RelHumidity()), nil
}

// ErrNoReading is returned by FakeSensor when its script is empty.
var ErrNoReading = errors.New("climate: no reading")
