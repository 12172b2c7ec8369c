// Package alert evaluates telemetry records against fixed thresholds and
// rate-limits the resulting notifications.
package alert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/env-sensor/internal/clock"
	"github.com/sweeney/env-sensor/internal/logic"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

// DefaultCooldown is the minimum time between two notifications.
const DefaultCooldown = 60 * time.Second

// Severity ranks a set of alerts.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Kind identifies which condition raised an alert.
type Kind string

const (
	KindGas          Kind = "GAS"
	KindSound        Kind = "SOUND"
	KindWater        Kind = "WATER"
	KindVibration    Kind = "VIBRATION"
	KindTempHigh     Kind = "TEMP_HIGH"
	KindTempLow      Kind = "TEMP_LOW"
	KindHumidityHigh Kind = "HUMIDITY_HIGH"
	KindHumidityLow  Kind = "HUMIDITY_LOW"
	KindMotion       Kind = "MOTION"
)

// Alert is a single triggered condition.
type Alert struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (a Alert) String() string { return a.Message }

// Thresholds are the trigger levels. Analog and climate limits are strict:
// a reading equal to the limit does not alert.
type Thresholds struct {
	Gas          int
	Sound        int
	Water        int
	TempHigh     float64
	TempLow      float64
	HumidityHigh float64
	HumidityLow  float64
}

// DefaultThresholds returns the stock trigger levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Gas:          300,
		Sound:        500,
		Water:        300,
		TempHigh:     35,
		TempLow:      10,
		HumidityHigh: 80,
		HumidityLow:  20,
	}
}

// Evaluate returns the alerts raised by rec, in a fixed order. Missing
// climate values never alert.
func (t Thresholds) Evaluate(rec telemetry.Record) []Alert {
	var alerts []Alert
	add := func(k Kind, format string, args ...any) {
		alerts = append(alerts, Alert{Kind: k, Message: fmt.Sprintf(format, args...)})
	}

	if rec.Gas > t.Gas {
		add(KindGas, "HIGH GAS: %d", rec.Gas)
	}
	if rec.Sound > t.Sound {
		add(KindSound, "HIGH SOUND: %d", rec.Sound)
	}
	if rec.Water > t.Water {
		add(KindWater, "HIGH WATER: %d", rec.Water)
	}
	if rec.Vibration {
		add(KindVibration, "VIBRATION DETECTED")
	}
	if rec.Temp.Valid {
		switch {
		case rec.Temp.V > t.TempHigh:
			add(KindTempHigh, "HIGH TEMP: %s°C", num(rec.Temp.V))
		case rec.Temp.V < t.TempLow:
			add(KindTempLow, "LOW TEMP: %s°C", num(rec.Temp.V))
		}
	}
	if rec.Humidity.Valid {
		switch {
		case rec.Humidity.V > t.HumidityHigh:
			add(KindHumidityHigh, "HIGH HUMIDITY: %s%%", num(rec.Humidity.V))
		case rec.Humidity.V < t.HumidityLow:
			add(KindHumidityLow, "LOW HUMIDITY: %s%%", num(rec.Humidity.V))
		}
	}
	if rec.Motion {
		add(KindMotion, "MOTION DETECTED")
	}
	return alerts
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SeverityOf ranks a set of alerts: gas or vibration is critical, sound or
// water is a warning, anything else is informational.
func SeverityOf(alerts []Alert) Severity {
	sev := SeverityInfo
	for _, a := range alerts {
		switch a.Kind {
		case KindGas, KindVibration:
			return SeverityCritical
		case KindSound, KindWater:
			sev = SeverityWarning
		}
	}
	return sev
}

// Subject is a one-line summary suitable for a notification title.
func Subject(sev Severity) string {
	switch sev {
	case SeverityCritical:
		return "CRITICAL ALERT - Multiple Sensors Triggered!"
	case SeverityWarning:
		return "WARNING - Sensor Thresholds Exceeded!"
	default:
		return "Sensor Alert"
	}
}

// Event is a notification ready to publish.
type Event struct {
	Timestamp time.Time
	Severity  Severity
	Alerts    []Alert
	Record    telemetry.Record
}

// Summary joins the alert messages.
func (e Event) Summary() string {
	msgs := make([]string, len(e.Alerts))
	for i, a := range e.Alerts {
		msgs[i] = a.Message
	}
	return strings.Join(msgs, ", ")
}

// Notifier turns records into events, holding back any event that arrives
// within the cooldown of the previous one. The first event is never held
// back.
type Notifier struct {
	thresholds Thresholds
	cooldown   clock.Millis
	lastSentAt clock.Millis
	sent       bool
	suppressed int
}

// NewNotifier creates a Notifier.
func NewNotifier(t Thresholds, cooldown time.Duration) *Notifier {
	return &Notifier{
		thresholds: t,
		cooldown:   clock.Millis(cooldown / time.Millisecond),
	}
}

// Check evaluates rec at now. It returns an event and true when alerts
// fired and the cooldown allows a notification.
func (n *Notifier) Check(now clock.Millis, rec telemetry.Record) (Event, bool) {
	alerts := n.thresholds.Evaluate(rec)
	if len(alerts) == 0 {
		return Event{}, false
	}
	if n.sent && !logic.Elapsed(now, n.lastSentAt, n.cooldown) {
		n.suppressed++
		return Event{}, false
	}
	n.sent = true
	n.lastSentAt = now
	return Event{
		Severity: SeverityOf(alerts),
		Alerts:   alerts,
		Record:   rec,
	}, true
}

// Suppressed returns how many alerting records fell inside a cooldown.
func (n *Notifier) Suppressed() int { return n.suppressed }
