package display

import "github.com/sweeney/env-sensor/internal/config"

// FakeDevice is an in-memory character display. Printing past the end of
// a row is dropped, like a real panel with line wrap disabled.
type FakeDevice struct {
	Cells  [config.DisplayHeight][config.DisplayWidth]byte
	x, y   int
	Prints int
}

// NewFakeDevice creates a blank FakeDevice.
func NewFakeDevice() *FakeDevice {
	f := &FakeDevice{}
	for y := range f.Cells {
		for x := range f.Cells[y] {
			f.Cells[y][x] = ' '
		}
	}
	return f
}

// SetCursor moves the write position.
func (f *FakeDevice) SetCursor(x, y uint8) {
	f.x, f.y = int(x), int(y)
}

// Print writes data from the cursor position.
func (f *FakeDevice) Print(data []byte) {
	f.Prints++
	for _, b := range data {
		if f.y < len(f.Cells) && f.x < len(f.Cells[f.y]) {
			f.Cells[f.y][f.x] = b
		}
		f.x++
	}
}

// Row returns the contents of row y.
func (f *FakeDevice) Row(y int) string {
	return string(f.Cells[y][:])
}
