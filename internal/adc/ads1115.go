package adc

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// ADS1115 register pointers.
const (
	regConversion = 0x00
	regConfig     = 0x01
)

// Config register fields for a single-shot, single-ended conversion at
// +-4.096V full scale and 860 samples per second, comparator disabled.
const (
	cfgStart      = 0x8000
	cfgMuxSingle  = 0x4000 // AINx vs GND; channel goes in bits 12-13
	cfgGain4V     = 0x0200
	cfgSingleShot = 0x0100
	cfgRate860    = 0x00E0
	cfgCompOff    = 0x0003

	// conversionTime covers one conversion at 860 SPS with margin.
	conversionTime = 2 * time.Millisecond
)

// NumChannels is the number of single-ended inputs.
const NumChannels = 4

// FullScale is the largest value ReadChannel returns. Conversions are
// reduced to the 10-bit range the analog sensor modules are rated in.
const FullScale = 1023

// scaleShift drops the 15 magnitude bits of a conversion to 10.
const scaleShift = 5

// ADS1115 is a 16-bit I2C ADC read in single-shot mode.
type ADS1115 struct {
	dev   i2c.Dev
	sleep func(time.Duration)
}

// NewADS1115 returns an ADC at addr on bus. The bus must already be open.
func NewADS1115(bus i2c.Bus, addr uint16) *ADS1115 {
	return &ADS1115{
		dev:   i2c.Dev{Bus: bus, Addr: addr},
		sleep: time.Sleep,
	}
}

// ReadChannel starts a conversion on ch, waits for it and returns the result
// scaled to 0..FullScale. Negative conversions read as 0.
func (a *ADS1115) ReadChannel(ch int) (int, error) {
	if ch < 0 || ch >= NumChannels {
		return 0, fmt.Errorf("ads1115: channel %d out of range", ch)
	}
	cfg := ConfigWord(ch)
	if err := a.dev.Tx([]byte{regConfig, byte(cfg >> 8), byte(cfg)}, nil); err != nil {
		return 0, fmt.Errorf("ads1115: start conversion: %w", err)
	}
	a.sleep(conversionTime)

	r := make([]byte, 2)
	if err := a.dev.Tx([]byte{regConversion}, r); err != nil {
		return 0, fmt.Errorf("ads1115: read conversion: %w", err)
	}
	return scale(int16(binary.BigEndian.Uint16(r))), nil
}

func scale(raw int16) int {
	if raw < 0 {
		return 0
	}
	return int(raw) >> scaleShift
}

// ConfigWord returns the config register value that starts a conversion on ch.
func ConfigWord(ch int) uint16 {
	return cfgStart | cfgMuxSingle | uint16(ch&0x3)<<12 | cfgGain4V | cfgSingleShot | cfgRate860 | cfgCompOff
}
