// Package adc reads the analog sensor channels.
package adc

// Reader returns the raw conversion result of one channel.
type Reader interface {
	ReadChannel(ch int) (int, error)
}
