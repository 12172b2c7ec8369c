// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/env-sensor/internal/alert"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

// TopicTelemetry is the MQTT topic for periodic sensor readings.
const TopicTelemetry = "environment/monitor/sensor/telemetry"

// TopicAlerts is the MQTT topic for threshold alerts.
const TopicAlerts = "environment/monitor/sensor/alerts"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "environment/monitor/sensor/system"

// Publisher publishes monitor output to MQTT.
type Publisher interface {
	// PublishTelemetry sends one sensor reading taken at the given time.
	// Returns error if publishing fails (should not crash the process).
	PublishTelemetry(rec telemetry.Record, at time.Time) error

	// PublishAlert sends a rate-limited alert notification.
	PublishAlert(event alert.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// TelemetryPayload is the MQTT message payload for a sensor reading.
type TelemetryPayload struct {
	Sensor SensorPayload `json:"sensor"`
}

// SensorPayload wraps a reading with its wall-clock timestamp.
type SensorPayload struct {
	Timestamp string           `json:"timestamp"`
	Reading   telemetry.Record `json:"reading"`
}

// FormatTelemetryPayload creates the JSON payload for a sensor reading.
// Missing climate values are encoded as null.
func FormatTelemetryPayload(rec telemetry.Record, at time.Time) ([]byte, error) {
	return json.Marshal(TelemetryPayload{
		Sensor: SensorPayload{
			Timestamp: at.UTC().Format(time.RFC3339),
			Reading:   rec,
		},
	})
}

// AlertPayload is the MQTT message payload for an alert.
type AlertPayload struct {
	Alert AlertPayloadInner `json:"alert"`
}

// AlertPayloadInner contains the alert details.
type AlertPayloadInner struct {
	Timestamp string           `json:"timestamp"`
	Severity  string           `json:"severity"`
	Subject   string           `json:"subject"`
	Alerts    []string         `json:"alerts"`
	Reading   telemetry.Record `json:"reading"`
}

// FormatAlertPayload creates the JSON payload for an alert event.
func FormatAlertPayload(event alert.Event) ([]byte, error) {
	msgs := make([]string, len(event.Alerts))
	for i, a := range event.Alerts {
		msgs[i] = a.Message
	}
	return json.Marshal(AlertPayload{
		Alert: AlertPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Severity:  string(event.Severity),
			Subject:   alert.Subject(event.Severity),
			Alerts:    msgs,
			Reading:   event.Record,
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
