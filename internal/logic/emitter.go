package logic

import (
	"fmt"
	"io"

	"github.com/sweeney/env-sensor/internal/telemetry"
)

// TelemetryEmitter writes one telemetry line per period.
type TelemetryEmitter struct {
	w          io.Writer
	period     Millis
	lastEmitAt Millis
	emitted    int
}

// NewTelemetryEmitter creates an emitter writing to w. The first line is
// written one full period after start.
func NewTelemetryEmitter(w io.Writer, period, start Millis) *TelemetryEmitter {
	return &TelemetryEmitter{w: w, period: period, lastEmitAt: start}
}

// MaybeEmit writes the record for snap and climate if the period has
// elapsed. It reports whether it fired and returns the record it built.
// lastEmitAt advances on every firing, including one whose write failed.
func (e *TelemetryEmitter) MaybeEmit(now Millis, snap Snapshot, climate Climate) (telemetry.Record, bool, error) {
	if !Elapsed(now, e.lastEmitAt, e.period) {
		return telemetry.Record{}, false, nil
	}
	e.lastEmitAt = now
	e.emitted++

	rec := NewRecord(snap, climate)
	if _, err := e.w.Write(telemetry.FormatLine(rec)); err != nil {
		return rec, true, fmt.Errorf("write telemetry: %w", err)
	}
	return rec, true, nil
}

// LastEmitAt returns the timestamp of the most recent emission.
func (e *TelemetryEmitter) LastEmitAt() Millis { return e.lastEmitAt }

// Emitted returns the number of emissions so far.
func (e *TelemetryEmitter) Emitted() int { return e.emitted }

// NewRecord builds the telemetry record for one tick.
func NewRecord(snap Snapshot, climate Climate) telemetry.Record {
	r := telemetry.Record{
		Gas:       snap.Gas,
		Sound:     snap.Sound,
		Water:     snap.Water,
		Motion:    snap.Motion,
		Vibration: snap.Vibration,
	}
	if climate.Valid {
		r.Temp = telemetry.Some(climate.Temperature)
		r.Humidity = telemetry.Some(climate.Humidity)
	}
	return r
}
