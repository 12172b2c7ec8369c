//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"

	"github.com/sweeney/env-sensor/internal/config"
)

// RealLines reads and drives lines on actual hardware using the Linux GPIO
// character device. It implements both Reader and Writer.
type RealLines struct {
	chip      *gpiocdev.Chip
	motion    *gpiocdev.Line
	vibration *gpiocdev.Line
	primary   *gpiocdev.Line
	secondary *gpiocdev.Line
}

// NewRealLines requests the sensor inputs and indicator outputs on chipName.
func NewRealLines(chipName string) (*RealLines, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	r := &RealLines{chip: chip}

	// The PIR output idles low; the vibration switch pulls its line low when
	// shaken, so it idles high on the internal pull-up.
	if r.motion, err = chip.RequestLine(config.PinMotion, gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		r.Close()
		return nil, fmt.Errorf("request motion pin %d: %w", config.PinMotion, err)
	}
	if r.vibration, err = chip.RequestLine(config.PinVibration, gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
		r.Close()
		return nil, fmt.Errorf("request vibration pin %d: %w", config.PinVibration, err)
	}
	if r.primary, err = chip.RequestLine(config.PinIndicator, gpiocdev.AsOutput(0)); err != nil {
		r.Close()
		return nil, fmt.Errorf("request indicator pin %d: %w", config.PinIndicator, err)
	}
	if r.secondary, err = chip.RequestLine(config.PinBuzzer, gpiocdev.AsOutput(0)); err != nil {
		r.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", config.PinBuzzer, err)
	}
	return r, nil
}

// ReadLevels returns the raw levels of the motion and vibration lines.
func (r *RealLines) ReadLevels() (config.Level, config.Level, error) {
	m, err := r.motion.Value()
	if err != nil {
		return config.Low, config.Low, fmt.Errorf("read motion pin: %w", err)
	}
	v, err := r.vibration.Value()
	if err != nil {
		return config.Low, config.Low, fmt.Errorf("read vibration pin: %w", err)
	}
	return config.Level(m), config.Level(v), nil
}

// SetOutputs drives both indicator lines.
func (r *RealLines) SetOutputs(primary, secondary bool) error {
	return multierr.Combine(
		wrap("set indicator pin", r.primary.SetValue(level(primary))),
		wrap("set buzzer pin", r.secondary.SetValue(level(secondary))),
	)
}

// Close drives the outputs low, returns every line to an input with
// pull-down (the Pi boot default) and releases the chip.
func (r *RealLines) Close() error {
	var errs error
	for _, out := range []*gpiocdev.Line{r.primary, r.secondary} {
		if out == nil {
			continue
		}
		errs = multierr.Append(errs, wrap("clear output", out.SetValue(0)))
	}
	for _, l := range []*gpiocdev.Line{r.motion, r.vibration, r.primary, r.secondary} {
		if l == nil {
			continue
		}
		errs = multierr.Append(errs, wrap("reconfigure line", l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown)))
		errs = multierr.Append(errs, wrap("close line", l.Close()))
	}
	if r.chip != nil {
		errs = multierr.Append(errs, wrap("close chip", r.chip.Close()))
	}
	return errs
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
