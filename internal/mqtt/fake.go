package mqtt

import (
	"time"

	"github.com/sweeney/env-sensor/internal/alert"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Readings contains all telemetry records that were published.
	Readings []telemetry.Record

	// Payloads contains the JSON telemetry payloads that were published.
	Payloads [][]byte

	// Alerts contains all alert events that were published.
	Alerts []alert.Event

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishTelemetry and PublishAlert.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishTelemetry records the reading.
func (f *FakePublisher) PublishTelemetry(rec telemetry.Record, at time.Time) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatTelemetryPayload(rec, at)
	if err != nil {
		return err
	}
	f.Readings = append(f.Readings, rec)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishAlert records the alert event.
func (f *FakePublisher) PublishAlert(event alert.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Alerts = append(f.Alerts, event)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.Readings = nil
	f.Payloads = nil
	f.Alerts = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
