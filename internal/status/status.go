// Package status provides a thread-safe view of monitor state for the HTTP
// server and MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/env-sensor/internal/config"
	"github.com/sweeney/env-sensor/internal/logic"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

// NetworkInfo contains network state.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	ClimateMs   int64
	TelemetryMs int64
	PageMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	Telemetry   string // telemetry line stream destination
}

// Counts are running totals since start.
type Counts struct {
	Ticks           int
	TickErrors      int
	Emitted         int
	ClimateAttempts int
	ClimateFailures int
	Alerts          int
}

// Point is one telemetry record with the wall-clock time it was emitted.
type Point struct {
	Time   time.Time
	Record telemetry.Record
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Ticked        bool
	Reading       logic.Snapshot
	Climate       logic.Climate
	Page          int
	Lines         [config.DisplayHeight]string
	Actuation     logic.Actuation
	LastError     string
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	history []Point
	next    int
	window  int
	now     func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		window: config.HistoryWindow,
		now:    time.Now,
	}
}

// Update records the outcome of one tick. Called from the run loop on
// every tick; tickErr is the combined error the tick returned, if any.
func (t *Tracker) Update(res logic.TickResult, stats logic.ClimateStats, tickErr error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.snap
	s.Ticked = true
	s.Reading = res.Snapshot
	s.Climate = res.Climate
	s.Page = res.Page
	for row := range s.Lines {
		s.Lines[row] = res.Frame.Text(row)
	}
	s.Actuation = res.Actuation
	s.Counts.Ticks++
	s.Counts.ClimateAttempts = stats.Attempts
	s.Counts.ClimateFailures = stats.Failures
	if tickErr != nil {
		s.Counts.TickErrors++
		s.LastError = tickErr.Error()
	}
	if res.Emitted {
		s.Counts.Emitted++
		t.record(Point{Time: t.now(), Record: res.Record})
	}
}

// record appends p to the history window, overwriting the oldest point
// once the window is full. Caller holds the lock.
func (t *Tracker) record(p Point) {
	if len(t.history) < t.window {
		t.history = append(t.history, p)
		return
	}
	t.history[t.next] = p
	t.next = (t.next + 1) % t.window
}

// AddAlerts increments the alert counter.
func (t *Tracker) AddAlerts(n int) {
	t.mu.Lock()
	t.snap.Counts.Alerts += n
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}

// History returns the retained telemetry points, oldest first.
func (t *Tracker) History() []Point {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Point, 0, len(t.history))
	if len(t.history) < t.window {
		return append(out, t.history...)
	}
	out = append(out, t.history[t.next:]...)
	return append(out, t.history[:t.next]...)
}
