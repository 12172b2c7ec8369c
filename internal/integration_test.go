package internal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/env-sensor/internal/adc"
	"github.com/sweeney/env-sensor/internal/alert"
	"github.com/sweeney/env-sensor/internal/climate"
	"github.com/sweeney/env-sensor/internal/clock"
	"github.com/sweeney/env-sensor/internal/config"
	"github.com/sweeney/env-sensor/internal/display"
	"github.com/sweeney/env-sensor/internal/gpio"
	"github.com/sweeney/env-sensor/internal/logic"
	"github.com/sweeney/env-sensor/internal/mqtt"
	"github.com/sweeney/env-sensor/internal/status"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

type node struct {
	lines   *gpio.FakeLines
	analog  *adc.FakeReader
	climate *climate.FakeSensor
	lcd     *display.FakeDevice
	stream  *bytes.Buffer
	monitor *logic.Monitor
}

func newNode(samples []gpio.Sample, readings ...climate.Reading) *node {
	n := &node{
		lines: gpio.NewFakeLines(samples),
		analog: adc.NewFakeReader(map[int]int{
			config.ChannelGas:   150,
			config.ChannelSound: 220,
			config.ChannelWater: 12,
		}),
		climate: climate.NewFakeSensor(readings...),
		lcd:     display.NewFakeDevice(),
		stream:  &bytes.Buffer{},
	}
	n.monitor = logic.NewMonitor(logic.Hardware{
		Analog:    n.analog,
		Digital:   n.lines,
		Climate:   n.climate,
		Display:   display.NewPanel(n.lcd),
		Outputs:   n.lines,
		Telemetry: n.stream,
	}, 0)
	return n
}

// run ticks from 0 to until (inclusive) every step milliseconds.
func (n *node) run(t *testing.T, until, step clock.Millis, each func(logic.TickResult)) {
	t.Helper()
	for now := clock.Millis(0); now <= until; now += step {
		res, err := n.monitor.Tick(now)
		if err != nil {
			t.Fatalf("t=%d: %v", now, err)
		}
		if each != nil {
			each(res)
		}
	}
}

// TestIntegrationStreamToAlerts runs the sensor node, then feeds its line
// stream to the alert consumer the way env-alerts does.
func TestIntegrationStreamToAlerts(t *testing.T) {
	motion := gpio.Sample{Motion: config.High, Vibration: config.High}
	samples := make([]gpio.Sample, 0, 60)
	for i := 0; i < 50; i++ {
		samples = append(samples, gpio.Idle)
	}
	samples = append(samples, motion) // t=6000ms

	n := newNode(samples, climate.Reading{Temperature: 36.5, Humidity: 50})
	n.run(t, 8000, 120, nil)

	notifier := alert.NewNotifier(alert.DefaultThresholds(), time.Minute)
	publisher := mqtt.NewFakePublisher()

	sc := bufio.NewScanner(n.stream)
	var at clock.Millis
	var records int
	for sc.Scan() {
		rec, err := telemetry.ParseLine(sc.Bytes())
		if err != nil {
			t.Fatalf("line %d does not parse: %v", records, err)
		}
		records++
		at += 1000
		if ev, ok := notifier.Check(at, rec); ok {
			publisher.PublishAlert(ev)
		}
	}

	if records != 7 {
		t.Errorf("records: got %d, want 7", records)
	}
	// 36.5°C arrives with the first climate sample; motion later in the
	// cooldown is held back.
	if len(publisher.Alerts) != 1 {
		t.Fatalf("alerts: got %d, want 1", len(publisher.Alerts))
	}
	ev := publisher.Alerts[0]
	if ev.Alerts[0].Kind != alert.KindTempHigh || ev.Severity != alert.SeverityInfo {
		t.Errorf("alert: %+v", ev)
	}
	if notifier.Suppressed() == 0 {
		t.Error("expected later alerting records to be suppressed")
	}
}

func TestIntegrationClimateRecovery(t *testing.T) {
	n := newNode([]gpio.Sample{gpio.Idle},
		climate.Failed, climate.Failed, climate.Reading{Temperature: 20, Humidity: 55})

	var line2 []string
	n.run(t, 7000, 1000, func(res logic.TickResult) {
		line2 = append(line2, strings.TrimRight(n.lcd.Row(1), " "))
	})

	// Climate attempts at 2000 and 4000 fail, 6000 succeeds.
	for i, l := range line2 {
		want := logic.PlaceholderMessage
		if i >= 6 {
			want = "T:20.0\xdfC H:55%"
		}
		if l != want {
			t.Errorf("t=%d: line 2 %q, want %q", i*1000, l, want)
		}
	}
	if st := n.monitor.ClimateStats(); st.Attempts != 3 || st.Failures != 2 {
		t.Errorf("climate stats: %+v", st)
	}
	if n.climate.Calls != 3 {
		t.Errorf("climate sensor read %d times, want 3", n.climate.Calls)
	}
}

func TestIntegrationStatusHistory(t *testing.T) {
	n := newNode([]gpio.Sample{gpio.Idle}, climate.Reading{Temperature: 22, Humidity: 41})
	tr := status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{})

	n.run(t, 5000, 250, func(res logic.TickResult) {
		tr.Update(res, n.monitor.ClimateStats(), nil)
	})

	var h status.HistoryJSON
	if err := json.Unmarshal(status.FormatHistory(tr.History()), &h); err != nil {
		t.Fatalf("invalid history: %v", err)
	}
	if h.Count != 5 {
		t.Fatalf("history points: got %d, want 5", h.Count)
	}
	if h.Points[0].Reading.Temp.Valid {
		t.Error("first point precedes the first climate sample")
	}
	last := h.Points[len(h.Points)-1].Reading
	if !last.Temp.Valid || last.Temp.V != 22 || last.Gas != 150 {
		t.Errorf("last point: %+v", last)
	}

	snap := tr.Snapshot()
	if snap.Counts.Emitted != 5 || snap.Counts.Ticks != 21 {
		t.Errorf("counts: %+v", snap.Counts)
	}
}

func TestIntegrationOutputsAlwaysMatchMotion(t *testing.T) {
	samples := []gpio.Sample{
		gpio.Idle,
		{Motion: config.High, Vibration: config.High},
		{Motion: config.High, Vibration: config.Low},
		gpio.Idle,
		{Motion: config.High, Vibration: config.High},
		gpio.Idle,
	}
	n := newNode(samples)

	var motions []bool
	n.run(t, clock.Millis(len(samples)-1)*120, 120, func(res logic.TickResult) {
		motions = append(motions, res.Snapshot.Motion)
	})

	if len(n.lines.Outputs) != len(samples) {
		t.Fatalf("output writes: got %d, want %d", len(n.lines.Outputs), len(samples))
	}
	for i, out := range n.lines.Outputs {
		if out.Primary != motions[i] || out.Secondary != motions[i] {
			t.Errorf("tick %d: outputs %+v with motion %v", i, out, motions[i])
		}
	}
}
