// Command env-sensor runs the environment monitor: it samples the analog and
// digital sensors, throttles climate reads, writes a telemetry line every
// second, pages the LCD and drives the indicator outputs from motion.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/env-sensor/internal/adc"
	"github.com/sweeney/env-sensor/internal/alert"
	"github.com/sweeney/env-sensor/internal/bus"
	"github.com/sweeney/env-sensor/internal/climate"
	"github.com/sweeney/env-sensor/internal/clock"
	"github.com/sweeney/env-sensor/internal/config"
	"github.com/sweeney/env-sensor/internal/display"
	"github.com/sweeney/env-sensor/internal/gpio"
	"github.com/sweeney/env-sensor/internal/logic"
	"github.com/sweeney/env-sensor/internal/mqtt"
	"github.com/sweeney/env-sensor/internal/status"
	"github.com/sweeney/env-sensor/internal/telemetry"
	"github.com/sweeney/env-sensor/internal/web"
)

type options struct {
	broker       string
	clientID     string
	heartbeat    time.Duration
	httpAddr     string
	i2cBus       string
	gpioChip     string
	telemetryOut string
	printState   bool
}

func main() {
	var o options
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	flag.StringVar(&o.clientID, "client-id", "env-sensor", "MQTT client ID")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&o.i2cBus, "i2c-bus", config.DefaultI2CBus, "I2C bus for ADC, climate sensor and LCD")
	flag.StringVar(&o.gpioChip, "gpio-chip", config.DefaultGPIOChip, "GPIO chip for motion, vibration and outputs")
	flag.StringVar(&o.telemetryOut, "telemetry-out", "-", `Telemetry line stream destination ("-" for stdout, or a file or serial device)`)
	flag.BoolVar(&o.printState, "print-state", false, "Print one reading and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// gpioLines is the input and output side of the GPIO chip.
type gpioLines interface {
	gpio.Reader
	gpio.Writer
}

// Hardware constructors, replaced in tests.
var (
	openLines = func(chip string) (gpioLines, error) { return gpio.NewRealLines(chip) }
	openBus   = bus.Open
)

// devices holds the opened hardware.
type devices struct {
	lines gpioLines
	bus   io.Closer
	hw    logic.Hardware
}

func openDevices(o options) (*devices, error) {
	lines, err := openLines(o.gpioChip)
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}

	b, err := openBus(o.i2cBus)
	if err != nil {
		return nil, multierr.Combine(err, lines.Close())
	}

	lcd, err := display.NewLCD(b, config.AddrDisplay)
	if err != nil {
		return nil, multierr.Combine(err, b.Close(), lines.Close())
	}

	return &devices{
		lines: lines,
		bus:   b,
		hw: logic.Hardware{
			Analog:  adc.NewADS1115(b, config.AddrADC),
			Digital: lines,
			Climate: climate.NewAHT20(b, config.AddrClimate),
			Display: lcd,
			Outputs: lines,
		},
	}, nil
}

// Close drives the outputs low and releases the bus.
func (d *devices) Close() error {
	return multierr.Combine(d.lines.Close(), d.bus.Close())
}

func openTelemetry(dest string) (io.WriteCloser, error) {
	if dest == "-" || dest == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open telemetry output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func run(o options) error {
	dev, err := openDevices(o)
	if err != nil {
		return err
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Printf("close hardware: %v", err)
		}
	}()

	if o.printState {
		return printState(os.Stdout, dev.hw)
	}

	out, err := openTelemetry(o.telemetryOut)
	if err != nil {
		return err
	}
	defer out.Close()
	dev.hw.Telemetry = out

	var publisher mqtt.Publisher = noopPublisher{}
	var mqttStatus mqtt.ConnectionStatus
	if o.broker != "" {
		p, err := mqtt.NewRealPublisher(o.broker, o.clientID)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher, mqttStatus = p, p
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      config.TickDelay.Milliseconds(),
		ClimateMs:   config.ClimatePeriodMs,
		TelemetryMs: config.TelemetryPeriodMs,
		PageMs:      config.PagePeriodMs,
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
		Telemetry:   o.telemetryOut,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	src := clock.NewSource(nil)
	start := src.Now()
	runner := &loop{
		monitor:    logic.NewMonitor(dev.hw, start),
		clock:      src,
		delay:      config.TickDelay,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		notifier:   alert.NewNotifier(alert.DefaultThresholds(), alert.DefaultCooldown),
		tracker:    tracker,
		heartbeat:  logic.NewHeartbeat(o.heartbeat, start),
		wall:       time.Now,
	}

	log.Printf("started: tick=%v climate=%dms telemetry=%dms page=%dms broker=%q heartbeat=%v",
		config.TickDelay, config.ClimatePeriodMs, config.TelemetryPeriodMs, config.PagePeriodMs, o.broker, o.heartbeat)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(context.Background())
	loopCtx, loopDone := context.WithCancel(ctx)

	g.Go(func() error {
		defer loopDone()
		return runner.run(loopCtx, sigCh)
	})

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		g.Go(func() error {
			log.Printf("http status server listening on %s", o.httpAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-loopCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// printState takes one reading of every sensor and prints it.
func printState(w io.Writer, hw logic.Hardware) error {
	snap, err := logic.NewSampler(hw.Analog, hw.Digital).Sample()
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	var c logic.Climate
	temp, hum, err := hw.Climate.ReadClimate()
	if err != nil {
		log.Printf("climate read failed: %v", err)
	} else {
		c = logic.Climate{Temperature: temp, Humidity: hum, Valid: true}
	}

	frame := logic.Render(0, snap, c)
	fmt.Fprintf(w, "%s", telemetry.FormatLine(logic.NewRecord(snap, c)))
	fmt.Fprintf(w, "[%s]\n[%s]\n", frame.Text(0), frame.Text(1))
	return nil
}

// noopPublisher stands in when MQTT is disabled.
type noopPublisher struct{}

func (noopPublisher) PublishTelemetry(telemetry.Record, time.Time) error { return nil }
func (noopPublisher) PublishAlert(alert.Event) error { return nil }
func (noopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (noopPublisher) Close() error { return nil }

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
