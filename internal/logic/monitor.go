package logic

import (
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/sweeney/env-sensor/internal/config"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

// Hardware groups the collaborators a Monitor drives.
type Hardware struct {
	Analog  AnalogReader
	Digital DigitalReader
	Climate ClimateSensor
	Display Display
	Outputs OutputWriter
	// Telemetry receives the telemetry line stream.
	Telemetry io.Writer
}

// TickResult describes what happened during one tick.
type TickResult struct {
	Now       Millis
	Snapshot  Snapshot
	Climate   Climate
	Page      int
	Frame     Frame
	Actuation Actuation

	// ClimateSampled is set when the climate gate fired; ClimateErr holds
	// the read failure, if any.
	ClimateSampled bool
	ClimateErr     error

	// Emitted is set when a telemetry line was written; Record holds it.
	Emitted bool
	Record  telemetry.Record

	PageTurned bool
}

// Monitor runs the per-tick control flow. It is not safe for concurrent use;
// exactly one tick runs at a time.
type Monitor struct {
	sampler   *Sampler
	climate   *ClimateCache
	telemetry *TelemetryEmitter
	pager     *Pager
	display   Display
	outputs   OutputWriter
}

// NewMonitor wires the components on hw. Every periodic activity starts its
// period at start, so nothing periodic fires until one full period later.
func NewMonitor(hw Hardware, start Millis) *Monitor {
	return &Monitor{
		sampler:   NewSampler(hw.Analog, hw.Digital),
		climate:   NewClimateCache(hw.Climate, config.ClimatePeriodMs, start),
		telemetry: NewTelemetryEmitter(hw.Telemetry, config.TelemetryPeriodMs, start),
		pager:     NewPager(config.PagePeriodMs, start),
		display:   hw.Display,
		outputs:   hw.Outputs,
	}
}

// Tick runs one pass: sample, climate, telemetry, paging, render, display,
// actuation. Every gate is evaluated against the same now. Errors from the
// individual steps are combined; the tick always runs to completion.
func (m *Monitor) Tick(now Millis) (TickResult, error) {
	res := TickResult{Now: now}
	var errs error

	snap, err := m.sampler.Sample()
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("sample: %w", err))
	}
	res.Snapshot = snap

	before := m.climate.Stats().Attempts
	res.Climate = m.climate.MaybeUpdate(now)
	if st := m.climate.Stats(); st.Attempts != before {
		res.ClimateSampled = true
		res.ClimateErr = st.LastErr
	}

	rec, emitted, err := m.telemetry.MaybeEmit(now, snap, res.Climate)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	res.Emitted = emitted
	res.Record = rec

	res.PageTurned = m.pager.Advance(now)
	res.Page = m.pager.Index()

	res.Frame = Render(res.Page, snap, res.Climate)
	for row := 0; row < config.DisplayHeight; row++ {
		if err := m.display.WriteLine(row, res.Frame.Line(row)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("display row %d: %w", row, err))
		}
	}

	res.Actuation = Outputs(snap.Motion)
	if err := m.outputs.SetOutputs(res.Actuation.Primary, res.Actuation.Secondary); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("set outputs: %w", err))
	}

	return res, errs
}

// ClimateStats returns the climate cache counters.
func (m *Monitor) ClimateStats() ClimateStats { return m.climate.Stats() }

// Emitted returns the number of telemetry lines written.
func (m *Monitor) Emitted() int { return m.telemetry.Emitted() }
