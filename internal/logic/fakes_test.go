package logic

import (
	"bytes"
	"errors"
	"math"

	"github.com/sweeney/env-sensor/internal/config"
)

// scriptedClimate returns scripted readings; after the script runs out it
// repeats the last entry.
type scriptedClimate struct {
	readings []climateRead
	calls    int
}

type climateRead struct {
	t, h float64
	err  error
}

var errSensor = errors.New("sensor timeout")

func okRead(t, h float64) climateRead { return climateRead{t: t, h: h} }
func nanRead() climateRead          { return climateRead{t: math.NaN(), h: math.NaN()} }
func errRead() climateRead          { return climateRead{t: math.NaN(), h: math.NaN(), err: errSensor} }

func (s *scriptedClimate) ReadClimate() (float64, float64, error) {
	i := s.calls
	s.calls++
	if len(s.readings) == 0 {
		return math.NaN(), math.NaN(), errSensor
	}
	if i >= len(s.readings) {
		i = len(s.readings) - 1
	}
	r := s.readings[i]
	return r.t, r.h, r.err
}

// stubAnalog returns fixed values per channel.
type stubAnalog struct {
	values map[int]int
	err    error
}

func (a *stubAnalog) ReadChannel(ch int) (int, error) {
	if a.err != nil {
		return 0, a.err
	}
	return a.values[ch], nil
}

// stubDigital returns fixed raw levels.
type stubDigital struct {
	motion, vibration config.Level
	err               error
}

func (d *stubDigital) ReadLevels() (config.Level, config.Level, error) {
	if d.err != nil {
		return 0, 0, d.err
	}
	return d.motion, d.vibration, nil
}

// idleDigital returns levels meaning "no motion, no vibration".
func idleDigital() *stubDigital {
	return &stubDigital{motion: config.Low, vibration: config.High}
}

// recordingDisplay keeps the last line written per row and counts writes.
type recordingDisplay struct {
	lines  [config.DisplayHeight][]byte
	writes int
	err    error
}

func (d *recordingDisplay) WriteLine(row int, text []byte) error {
	d.writes++
	if d.err != nil {
		return d.err
	}
	d.lines[row] = bytes.Clone(text)
	return nil
}

// recordingOutputs keeps every actuation it was asked for.
type recordingOutputs struct {
	history []Actuation
}

func (o *recordingOutputs) SetOutputs(primary, secondary bool) error {
	o.history = append(o.history, Actuation{Primary: primary, Secondary: secondary})
	return nil
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("port closed") }
