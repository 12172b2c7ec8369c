// Command env-alerts reads the telemetry line stream written by env-sensor,
// checks every record against the alert thresholds and publishes
// rate-limited alerts to MQTT.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/sweeney/env-sensor/internal/alert"
	"github.com/sweeney/env-sensor/internal/clock"
	"github.com/sweeney/env-sensor/internal/mqtt"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

func main() {
	in := flag.String("in", "-", `Telemetry source ("-" for stdin, or a file or serial device)`)
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to log alerts only)")
	cooldown := flag.Duration("cooldown", alert.DefaultCooldown, "Minimum time between alerts")
	quiet := flag.Bool("quiet", false, "Do not log every data line")
	retry := flag.Duration("retry", defaultRetry, "Delay before reopening a failed telemetry source")

	flag.Parse()

	var publisher alertPublisher = nopPublisher{}
	if *broker != "" {
		p, err := mqtt.NewRealPublisher(*broker, "env-alerts")
		if err != nil {
			log.Fatalf("fatal: init mqtt: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	log.Printf("alerts active: thresholds=%+v cooldown=%v", alert.DefaultThresholds(), *cooldown)

	w := &watcher{
		notifier:  alert.NewNotifier(alert.DefaultThresholds(), *cooldown),
		clock:     clock.NewSource(nil),
		publisher: publisher,
		wall:      time.Now,
		verbose:   !*quiet,
		open:      openInput,
		sleep:     time.Sleep,
		retry:     *retry,
	}
	if err := w.serve(*in); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// maxLineLen bounds one telemetry line. Longer lines are discarded.
const maxLineLen = 4096

const defaultRetry = 5 * time.Second

func isStdin(name string) bool {
	return name == "-" || name == ""
}

func openInput(name string) (io.ReadCloser, error) {
	if isStdin(name) {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open telemetry source: %w", err)
	}
	return f, nil
}

type alertPublisher interface {
	PublishAlert(event alert.Event) error
}

// nopPublisher stands in when MQTT is disabled.
type nopPublisher struct{}

func (nopPublisher) PublishAlert(event alert.Event) error { return nil }

// watcher consumes telemetry lines.
type watcher struct {
	notifier  *alert.Notifier
	clock     *clock.Source
	publisher alertPublisher
	wall      func() time.Time
	verbose   bool

	open  func(name string) (io.ReadCloser, error)
	sleep func(time.Duration)
	retry time.Duration

	records int
	skipped int
	alerts  int
}

// serve reads the named source until it ends cleanly. A file or device
// that cannot be opened, or fails mid-read, is reopened after the retry
// delay. Stdin is read once.
func (w *watcher) serve(name string) error {
	if isStdin(name) {
		src, err := w.open(name)
		if err != nil {
			return err
		}
		defer src.Close()
		return w.run(src)
	}

	for {
		src, err := w.open(name)
		if err != nil {
			log.Printf("telemetry source unavailable: %v (retrying in %v)", err, w.retry)
			w.sleep(w.retry)
			continue
		}
		log.Printf("reading telemetry from %s", name)

		err = w.run(src)
		src.Close()
		if err == nil {
			return nil
		}
		log.Printf("telemetry source lost: %v (retrying in %v)", err, w.retry)
		w.sleep(w.retry)
	}
}

// run processes lines until r is exhausted. Lines that are not records are
// logged raw and skipped; lines longer than maxLineLen are dropped whole.
func (w *watcher) run(r io.Reader) error {
	br := bufio.NewReaderSize(r, maxLineLen)
	oversized := false
	for {
		line, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			if !oversized {
				log.Printf("discarding line over %d bytes", maxLineLen)
				w.skipped++
				oversized = true
			}
			continue
		}

		if oversized {
			oversized = false
		} else {
			w.handleLine(bytes.TrimRight(line, "\r\n"))
		}

		if err == io.EOF {
			log.Printf("input closed: records=%d skipped=%d alerts=%d", w.records, w.skipped, w.alerts)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read telemetry: %w", err)
		}
	}
}

func (w *watcher) handleLine(line []byte) {
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	rec, err := telemetry.ParseLine(line)
	if err != nil {
		log.Printf("raw: %s", line)
		w.skipped++
		return
	}
	w.records++

	if ev, ok := w.notifier.Check(w.clock.Now(), rec); ok {
		ev.Timestamp = w.wall()
		w.alerts++
		log.Printf("alert %s: %s", ev.Severity, ev.Summary())
		if err := w.publisher.PublishAlert(ev); err != nil {
			log.Printf("alert publish error: %v", err)
		}
	}

	if w.verbose {
		log.Print(dataLine(rec))
	}
}

// dataLine is the compact one-line form of a record.
func dataLine(rec telemetry.Record) string {
	return fmt.Sprintf("data: G:%3d S:%3d W:%3d V:%d T:%s H:%s M:%d",
		rec.Gas, rec.Sound, rec.Water, flag01(rec.Vibration),
		optional(rec.Temp, "%4.1f"), optional(rec.Humidity, "%3.0f"), flag01(rec.Motion))
}

func optional(v telemetry.Value, format string) string {
	if !v.Valid {
		return "  - "
	}
	return fmt.Sprintf(format, v.V)
}

func flag01(b bool) int {
	if b {
		return 1
	}
	return 0
}
