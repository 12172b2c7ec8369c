package status

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/env-sensor/internal/config"
	"github.com/sweeney/env-sensor/internal/logic"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

func tick(gas int, emitted bool) logic.TickResult {
	snap := logic.Snapshot{Gas: gas, Sound: 2, Water: 3}
	climate := logic.Climate{Temperature: 21.5, Humidity: 40, Valid: true}
	return logic.TickResult{
		Snapshot: snap,
		Climate:  climate,
		Frame:    logic.Render(0, snap, climate),
		Emitted:  emitted,
		Record:   logic.NewRecord(snap, climate),
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{TickMs: 120, TelemetryMs: 1000, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.TickMs != 120 {
		t.Errorf("Config.TickMs: got %d, want 120", snap.Config.TickMs)
	}
	if snap.Ticked {
		t.Error("expected Ticked=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	res := tick(412, true)
	res.Actuation = logic.Actuation{Primary: true, Secondary: true}
	tr.Update(res, logic.ClimateStats{Attempts: 4, Failures: 1}, nil)

	snap := tr.Snapshot()
	if !snap.Ticked {
		t.Error("expected Ticked=true")
	}
	if snap.Reading.Gas != 412 {
		t.Errorf("Gas: got %d, want 412", snap.Reading.Gas)
	}
	if snap.Lines[0] != "Gas:412 Snd:2   " {
		t.Errorf("line 1: got %q", snap.Lines[0])
	}
	if snap.Lines[1] != "T:21.5°C H:40%  " {
		t.Errorf("line 2: got %q", snap.Lines[1])
	}
	if !snap.Actuation.Primary {
		t.Error("expected primary output on")
	}
	want := Counts{Ticks: 1, Emitted: 1, ClimateAttempts: 4, ClimateFailures: 1}
	if snap.Counts != want {
		t.Errorf("Counts: got %+v, want %+v", snap.Counts, want)
	}
}

func TestUpdateRecordsTickErrors(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(tick(1, false), logic.ClimateStats{}, errors.New("sample: i2c nack"))
	tr.Update(tick(1, false), logic.ClimateStats{}, nil)

	snap := tr.Snapshot()
	if snap.Counts.Ticks != 2 || snap.Counts.TickErrors != 1 {
		t.Errorf("counts: %+v", snap.Counts)
	}
	if snap.LastError != "sample: i2c nack" {
		t.Errorf("LastError: got %q", snap.LastError)
	}
}

func TestHistoryWindow(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	total := config.HistoryWindow + 25
	for i := 0; i < total; i++ {
		tr.Update(tick(i, true), logic.ClimateStats{}, nil)
		tr.Update(tick(-1, false), logic.ClimateStats{}, nil)
	}

	h := tr.History()
	if len(h) != config.HistoryWindow {
		t.Fatalf("history length: got %d, want %d", len(h), config.HistoryWindow)
	}
	if h[0].Record.Gas != 25 {
		t.Errorf("oldest retained: got gas %d, want 25", h[0].Record.Gas)
	}
	if h[len(h)-1].Record.Gas != total-1 {
		t.Errorf("newest: got gas %d, want %d", h[len(h)-1].Record.Gas, total-1)
	}
	for i := 1; i < len(h); i++ {
		if h[i].Record.Gas != h[i-1].Record.Gas+1 {
			t.Fatalf("history out of order at %d", i)
		}
	}
}

func TestHistoryIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(tick(7, true), logic.ClimateStats{}, nil)

	h := tr.History()
	h[0].Record.Gas = 99

	if tr.History()[0].Record.Gas != 7 {
		t.Error("History should return a copy")
	}
}

func TestSetMQTTConnectedAndNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.50", SSID: "home"})
	tr.AddAlerts(2)

	snap := tr.Snapshot()
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	if snap.Network == nil || snap.Network.IP != "192.168.1.50" {
		t.Errorf("Network: %+v", snap.Network)
	}
	if snap.Counts.Alerts != 2 {
		t.Errorf("Alerts: got %d, want 2", snap.Counts.Alerts)
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{})
	tr.now = func() time.Time { return start.Add(90 * time.Second) }

	if got := tr.Snapshot().Uptime(); got != 90*time.Second {
		t.Errorf("Uptime: got %v, want 90s", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update(tick(j, true), logic.ClimateStats{}, nil)
				tr.SetMQTTConnected(j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tr.Snapshot()
				_ = tr.History()
			}
		}()
	}
	wg.Wait()

	if got := tr.Snapshot().Counts.Ticks; got != 400 {
		t.Errorf("Ticks: got %d, want 400", got)
	}
}

func TestFormatJSONBeforeFirstTick(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(5 * time.Second)}

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	inner := parsed["status"]
	if inner["ready"] != false {
		t.Errorf("ready: got %v", inner["ready"])
	}
	if _, ok := inner["sensors"]; ok {
		t.Error("sensors should be omitted before the first tick")
	}
	if _, ok := inner["event"]; ok {
		t.Error("web status should not carry an event")
	}
	if inner["uptime_seconds"] != float64(5) {
		t.Errorf("uptime_seconds: got %v", inner["uptime_seconds"])
	}
}

func TestFormatJSONSensors(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	res := tick(300, false)
	res.Snapshot.Motion = true
	res.Climate = logic.Climate{}
	tr.Update(res, logic.ClimateStats{}, nil)

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	s := parsed.Status.Sensors
	if s == nil {
		t.Fatal("expected sensors")
	}
	if s.Gas != 300 || !s.Motion {
		t.Errorf("sensors: %+v", s)
	}
	if s.Temp != nil || s.Humidity != nil {
		t.Error("invalid climate should be null")
	}
	if len(parsed.Status.Display) != config.DisplayHeight {
		t.Errorf("display lines: %v", parsed.Status.Display)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC),
		Network:   &NetworkInfo{Type: "ethernet", IP: "10.0.0.5", Status: "connected"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")
	if strings.Contains(string(data), "\n") {
		t.Error("MQTT payload should be compact")
	}

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGTERM" {
		t.Errorf("event/reason: %q/%q", parsed.Status.Event, parsed.Status.Reason)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("uptime: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if parsed.Status.Network == nil || parsed.Status.Network.IP != "10.0.0.5" {
		t.Errorf("network: %+v", parsed.Status.Network)
	}
}

func TestFormatHistory(t *testing.T) {
	points := []Point{
		{Time: time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC), Record: telemetry.Record{Gas: 1, Temp: telemetry.Some(20)}},
		{Time: time.Date(2026, 1, 1, 0, 0, 2, 0, time.UTC), Record: telemetry.Record{Gas: 2}},
	}

	want := `{"window":300,"count":2,"points":[` +
		`{"timestamp":"2026-01-01T00:00:01Z","reading":{"gas":1,"sound":0,"water":0,"temp":20,"humidity":null,"motion":0,"vibration":0}},` +
		`{"timestamp":"2026-01-01T00:00:02Z","reading":{"gas":2,"sound":0,"water":0,"temp":null,"humidity":null,"motion":0,"vibration":0}}]}`
	if got := string(FormatHistory(points)); got != want {
		t.Errorf("history:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestFormatHistoryEmpty(t *testing.T) {
	if got := string(FormatHistory(nil)); got != `{"window":300,"count":0,"points":[]}` {
		t.Errorf("empty history: %s", got)
	}
}
