package main

import (
	"context"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/env-sensor/internal/alert"
	"github.com/sweeney/env-sensor/internal/clock"
	"github.com/sweeney/env-sensor/internal/logic"
	"github.com/sweeney/env-sensor/internal/mqtt"
	"github.com/sweeney/env-sensor/internal/status"
)

// loop owns the tick cycle and fans each tick's results out to MQTT, the
// alert notifier and the status tracker.
type loop struct {
	monitor    *logic.Monitor
	clock      *clock.Source
	delay      time.Duration
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	notifier   *alert.Notifier
	tracker    *status.Tracker
	heartbeat  *logic.Heartbeat
	wall       func() time.Time

	// wait returns the channel that ends the inter-tick delay. Defaults to
	// clock.After(delay).
	wait func() <-chan time.Time

	lastErr    string
	lastMotion bool
	lastVib    bool
	climate    climateState
}

// run ticks until a signal arrives or ctx is cancelled. Each tick reads the
// clock once and hands that reading to every gate.
func (l *loop) run(ctx context.Context, sig <-chan os.Signal) error {
	wait := l.wait
	if wait == nil {
		wait = func() <-chan time.Time { return l.clock.After(l.delay) }
	}

	for {
		now := l.clock.Now()
		res, err := l.monitor.Tick(now)
		l.handle(now, res, err)

		select {
		case s := <-sig:
			l.shutdown(s)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-wait():
		}
	}
}

func (l *loop) handle(now clock.Millis, res logic.TickResult, tickErr error) {
	l.logTransitions(res, tickErr)

	if res.Emitted {
		at := l.wall()
		if err := l.publisher.PublishTelemetry(res.Record, at); err != nil {
			log.Printf("telemetry publish error: %v", err)
		}
		if ev, ok := l.notifier.Check(now, res.Record); ok {
			ev.Timestamp = at
			log.Printf("alert %s: %s", ev.Severity, ev.Summary())
			if err := l.publisher.PublishAlert(ev); err != nil {
				log.Printf("alert publish error: %v", err)
			}
			if l.tracker != nil {
				l.tracker.AddAlerts(len(ev.Alerts))
			}
		}
	}

	if l.tracker != nil {
		l.tracker.Update(res, l.monitor.ClimateStats(), tickErr)
		if l.mqttStatus != nil {
			l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		}
	}

	if l.heartbeat.Due(now) {
		st := l.monitor.ClimateStats()
		log.Printf("heartbeat: emitted=%d climate_attempts=%d climate_failures=%d",
			l.monitor.Emitted(), st.Attempts, st.Failures)

		hbEvent := mqtt.SystemEvent{
			Timestamp: l.wall(),
			Event:     "HEARTBEAT",
		}
		if l.tracker != nil {
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				l.tracker.SetNetwork(net)
			}
			hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := l.publisher.PublishSystem(hbEvent); err != nil {
			log.Printf("heartbeat publish error: %v", err)
		}
	}
}

// logTransitions logs changes only; the tick rate is too high to log every
// tick.
func (l *loop) logTransitions(res logic.TickResult, tickErr error) {
	switch {
	case tickErr != nil && tickErr.Error() != l.lastErr:
		log.Printf("tick error: %v", tickErr)
		l.lastErr = tickErr.Error()
	case tickErr == nil && l.lastErr != "":
		log.Printf("tick recovered")
		l.lastErr = ""
	}

	if m := res.Snapshot.Motion; m != l.lastMotion {
		log.Printf("motion: %s", detected(m))
		l.lastMotion = m
	}
	if v := res.Snapshot.Vibration; v != l.lastVib {
		log.Printf("vibration: %s", detected(v))
		l.lastVib = v
	}

	if res.ClimateSampled {
		state := climateOK
		if res.ClimateErr != nil {
			state = climateFailing
		}
		if state != l.climate {
			if state == climateOK {
				log.Printf("climate: T=%.1fC H=%.0f%%", res.Climate.Temperature, res.Climate.Humidity)
			} else {
				log.Printf("climate read failed: %v", res.ClimateErr)
			}
			l.climate = state
		}
	}
}

type climateState int

const (
	climateUnknown climateState = iota
	climateOK
	climateFailing
)

func detected(on bool) string {
	if on {
		return "detected"
	}
	return "clear"
}

func (l *loop) shutdown(s os.Signal) {
	log.Printf("received %v, shutting down", s)
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	event := mqtt.SystemEvent{
		Timestamp: l.wall(),
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if l.tracker != nil {
		if l.mqttStatus != nil {
			l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}
