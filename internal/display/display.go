// Package display drives the two-line character display.
package display

import (
	"fmt"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"

	"github.com/sweeney/env-sensor/internal/config"
)

// Device is the cursor-addressed text interface of a character display.
type Device interface {
	SetCursor(x, y uint8)
	Print(data []byte)
}

// Panel writes whole fixed-width lines to a Device.
type Panel struct {
	dev    Device
	width  int
	height int
}

// NewPanel wraps dev with the configured display geometry.
func NewPanel(dev Device) *Panel {
	return &Panel{dev: dev, width: config.DisplayWidth, height: config.DisplayHeight}
}

// WriteLine positions the cursor at the start of row and prints text.
// text must be exactly one display width long so every cell is rewritten.
func (p *Panel) WriteLine(row int, text []byte) error {
	if row < 0 || row >= p.height {
		return fmt.Errorf("display: row %d out of range", row)
	}
	if len(text) != p.width {
		return fmt.Errorf("display: line is %d bytes, want %d", len(text), p.width)
	}
	p.dev.SetCursor(0, uint8(row))
	p.dev.Print(text)
	return nil
}

// NewLCD configures an HD44780 behind a PCF8574 I2C backpack at addr and
// returns a Panel for it.
func NewLCD(bus drivers.I2C, addr uint8) (*Panel, error) {
	lcd := hd44780i2c.New(bus, addr)
	if err := lcd.Configure(hd44780i2c.Config{
		Width:  config.DisplayWidth,
		Height: config.DisplayHeight,
	}); err != nil {
		return nil, fmt.Errorf("configure lcd: %w", err)
	}
	lcd.ClearDisplay()
	return NewPanel(&lcd), nil
}
