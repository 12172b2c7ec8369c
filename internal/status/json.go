package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/env-sensor/internal/config"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Ready         bool         `json:"ready"`
	Sensors       *SensorsJSON `json:"sensors,omitempty"`
	Display       []string     `json:"display,omitempty"`
	Page          int          `json:"page"`
	Outputs       OutputsJSON  `json:"outputs"`
	LastError     string       `json:"last_error,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// SensorsJSON is the latest sensor reading. Climate values are null until
// the first valid climate sample.
type SensorsJSON struct {
	Gas       int      `json:"gas"`
	Sound     int      `json:"sound"`
	Water     int      `json:"water"`
	Temp      *float64 `json:"temp"`
	Humidity  *float64 `json:"humidity"`
	Motion    bool     `json:"motion"`
	Vibration bool     `json:"vibration"`
}

// OutputsJSON reports the actuator levels.
type OutputsJSON struct {
	Primary   bool `json:"primary"`
	Secondary bool `json:"secondary"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of running totals.
type CountsJSON struct {
	Ticks           int `json:"ticks"`
	TickErrors      int `json:"tick_errors"`
	Emitted         int `json:"telemetry_emitted"`
	ClimateAttempts int `json:"climate_attempts"`
	ClimateFailures int `json:"climate_failures"`
	Alerts          int `json:"alerts"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	ClimateMs   int64  `json:"climate_ms"`
	TelemetryMs int64  `json:"telemetry_ms"`
	PageMs      int64  `json:"page_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	Telemetry   string `json:"telemetry_out"`
}

// HistoryJSON is the rolling telemetry window.
type HistoryJSON struct {
	Window int         `json:"window"`
	Count  int         `json:"count"`
	Points []PointJSON `json:"points"`
}

// PointJSON is one telemetry record in the history.
type PointJSON struct {
	Timestamp string           `json:"timestamp"`
	Reading   telemetry.Record `json:"reading"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Ready:         snap.Ticked,
		Page:          snap.Page,
		Outputs:       OutputsJSON{Primary: snap.Actuation.Primary, Secondary: snap.Actuation.Secondary},
		LastError:     snap.LastError,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts:        CountsJSON(snap.Counts),
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			ClimateMs:   snap.Config.ClimateMs,
			TelemetryMs: snap.Config.TelemetryMs,
			PageMs:      snap.Config.PageMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Telemetry:   snap.Config.Telemetry,
		},
	}

	if snap.Ticked {
		sensors := &SensorsJSON{
			Gas:       snap.Reading.Gas,
			Sound:     snap.Reading.Sound,
			Water:     snap.Reading.Water,
			Motion:    snap.Reading.Motion,
			Vibration: snap.Reading.Vibration,
		}
		if snap.Climate.Valid {
			temp, hum := snap.Climate.Temperature, snap.Climate.Humidity
			sensors.Temp = &temp
			sensors.Humidity = &hum
		}
		inner.Sensors = sensors
		inner.Display = snap.Lines[:]
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatHistory returns the JSON rolling telemetry window.
func FormatHistory(points []Point) []byte {
	h := HistoryJSON{
		Window: config.HistoryWindow,
		Count:  len(points),
		Points: make([]PointJSON, len(points)),
	}
	for i, p := range points {
		h.Points[i] = PointJSON{
			Timestamp: p.Time.UTC().Format(time.RFC3339),
			Reading:   p.Record,
		}
	}
	data, _ := json.Marshal(h)
	return data
}
