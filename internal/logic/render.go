package logic

import (
	"fmt"
	"strings"

	"github.com/sweeney/env-sensor/internal/config"
)

// DegreeSymbol is the HD44780 character ROM code for the degree sign.
const DegreeSymbol = 0xDF

// Fixed line-2 messages.
const (
	MotionMessage      = "Motion: DETECT"
	PlaceholderMessage = "Reading DHT..."
)

// degree is DegreeSymbol as a one-byte string; it is not valid UTF-8.
var degree = string([]byte{DegreeSymbol})

// Frame is the full content of the display: one fixed-width buffer per line.
// Every render fills every cell, so a shorter string never leaves characters
// of a longer one behind.
type Frame [config.DisplayHeight][config.DisplayWidth]byte

// Line returns row as a byte slice of exactly DisplayWidth bytes.
func (f *Frame) Line(row int) []byte { return f[row][:] }

// Text returns row as a string with the LCD degree code shown as U+00B0.
func (f *Frame) Text(row int) string {
	return strings.ReplaceAll(string(f[row][:]), degree, "°")
}

func (f *Frame) set(row int, text string) {
	n := copy(f[row][:], text)
	for i := n; i < config.DisplayWidth; i++ {
		f[row][i] = ' '
	}
}

// pageLabel pairs a sensor label with the snapshot field it shows.
type pageLabel struct {
	label string
	value func(Snapshot) int
}

var (
	labelGas   = pageLabel{"Gas", func(s Snapshot) int { return s.Gas }}
	labelSound = pageLabel{"Snd", func(s Snapshot) int { return s.Sound }}
	labelWater = pageLabel{"Wtr", func(s Snapshot) int { return s.Water }}
)

var pages = [PageCount][2]pageLabel{
	{labelGas, labelSound},
	{labelSound, labelWater},
	{labelWater, labelGas},
}

// Render builds the display frame for page with the current values.
// The space between the two line-1 values is dropped when both would not
// otherwise fit, so two four-digit values stay readable.
// Line 2 shows motion first, then the cached climate, then a placeholder.
func Render(page int, snap Snapshot, climate Climate) Frame {
	var f Frame

	p := pages[page%PageCount]
	first := fmt.Sprintf("%s:%d", p[0].label, p[0].value(snap))
	second := fmt.Sprintf("%s:%d", p[1].label, p[1].value(snap))
	if len(first)+1+len(second) <= config.DisplayWidth {
		first += " "
	}
	f.set(0, first+second)

	switch {
	case snap.Motion:
		f.set(1, MotionMessage)
	case climate.Valid:
		f.set(1, fmt.Sprintf("T:%.1f%sC H:%d%%", climate.Temperature, degree, int(climate.Humidity)))
	default:
		f.set(1, PlaceholderMessage)
	}
	return f
}
