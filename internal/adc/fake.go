package adc

import "fmt"

// FakeReader is a test double returning configured per-channel values.
type FakeReader struct {
	// Values maps a channel to the raw value it returns.
	Values map[int]int

	// Errors maps a channel to the error it returns.
	Errors map[int]error

	// Reads counts ReadChannel calls per channel.
	Reads map[int]int
}

// NewFakeReader creates a FakeReader with the given values.
func NewFakeReader(values map[int]int) *FakeReader {
	if values == nil {
		values = map[int]int{}
	}
	return &FakeReader{Values: values, Errors: map[int]error{}, Reads: map[int]int{}}
}

// ReadChannel returns the configured value or error for ch.
func (f *FakeReader) ReadChannel(ch int) (int, error) {
	f.Reads[ch]++
	if err := f.Errors[ch]; err != nil {
		return 0, fmt.Errorf("channel %d: %w", ch, err)
	}
	return f.Values[ch], nil
}
