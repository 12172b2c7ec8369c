package logic

import (
	"bytes"
	"strings"
	"testing"
)

func TestEmitterOnePerPeriod(t *testing.T) {
	var buf bytes.Buffer
	e := NewTelemetryEmitter(&buf, 1000, 0)

	var fired []Millis
	for now := Millis(0); now <= 5000; now += 120 {
		if _, ok, err := e.MaybeEmit(now, Snapshot{}, Climate{}); err != nil {
			t.Fatalf("t=%d: %v", now, err)
		} else if ok {
			fired = append(fired, now)
		}
	}

	// Ticks at 120ms granularity: first tick at or past each period.
	want := []Millis{1080, 2160, 3240, 4320}
	if len(fired) != len(want) {
		t.Fatalf("emissions at %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("emission %d at %d, want %d", i, fired[i], want[i])
		}
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != len(want) {
		t.Errorf("lines written: got %d, want %d", len(lines), len(want))
	}
}

func TestEmitterExactPeriodTicks(t *testing.T) {
	var buf bytes.Buffer
	e := NewTelemetryEmitter(&buf, 1000, 0)

	for now := Millis(0); now <= 5000; now += 500 {
		_, ok, _ := e.MaybeEmit(now, Snapshot{}, Climate{})
		want := now != 0 && now%1000 == 0
		if ok != want {
			t.Errorf("t=%d: fired=%v, want %v", now, ok, want)
		}
	}
	if e.Emitted() != 5 {
		t.Errorf("emitted: got %d, want 5", e.Emitted())
	}
}

func TestEmitterLineContent(t *testing.T) {
	var buf bytes.Buffer
	e := NewTelemetryEmitter(&buf, 1000, 0)

	snap := Snapshot{Gas: 5, Sound: 6, Water: 7, Motion: true}
	rec, ok, err := e.MaybeEmit(1000, snap, Climate{Temperature: 19.5, Humidity: 33, Valid: true})
	if err != nil || !ok {
		t.Fatalf("expected emission, ok=%v err=%v", ok, err)
	}

	want := `{"gas":5,"sound":6,"water":7,"temp":19.5,"humidity":33,"motion":1,"vibration":0}` + "\n"
	if buf.String() != want {
		t.Errorf("line:\n got %q\nwant %q", buf.String(), want)
	}
	if rec.Gas != 5 || !rec.Temp.Valid {
		t.Errorf("record: %+v", rec)
	}
}

func TestEmitterWriteFailureKeepsCadence(t *testing.T) {
	e := NewTelemetryEmitter(failingWriter{}, 1000, 0)

	_, ok, err := e.MaybeEmit(1000, Snapshot{}, Climate{})
	if !ok || err == nil {
		t.Fatalf("expected fired with error, ok=%v err=%v", ok, err)
	}
	if e.LastEmitAt() != 1000 {
		t.Errorf("LastEmitAt: got %d, want 1000", e.LastEmitAt())
	}
	if _, ok, _ := e.MaybeEmit(1500, Snapshot{}, Climate{}); ok {
		t.Error("failed write must not cause a retry before the next period")
	}
}
