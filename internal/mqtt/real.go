package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/env-sensor/internal/alert"
	"github.com/sweeney/env-sensor/internal/telemetry"
)

// BufferCapacity is the number of messages held while the broker is
// unreachable. At one reading per second this covers ten minutes.
const BufferCapacity = 600

const publishTimeout = 5 * time.Second

// client is the subset of paho.Client used by RealPublisher.
type client interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// RealPublisher publishes to an actual MQTT broker. Messages produced while
// the connection is down are held in a ring buffer and replayed in order
// once it comes back.
type RealPublisher struct {
	client client
	now    func() time.Time

	mu        sync.Mutex
	buf       *ringBuffer
	connected bool
	replaying bool
	everUp    bool
}

// NewRealPublisher creates a publisher connected to the given broker. The
// broker is told to publish a retained SHUTDOWN/MQTT_DISCONNECT message on
// the system topic if this client drops off without closing cleanly.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := &RealPublisher{
		buf: newRingBuffer(BufferCapacity),
		now: time.Now,
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(func(c paho.Client) { p.onConnect() }).
		SetConnectionLostHandler(func(c paho.Client, err error) { p.onConnectionLost(err) })

	c := paho.NewClient(opts)
	p.client = c

	// With connect retry enabled the token only completes once connected,
	// so a timeout here means the broker is not reachable yet.
	token := c.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, buffering until connected", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// newPublisher wires a publisher to an already constructed client.
func newPublisher(c client, now func() time.Time, capacity int) *RealPublisher {
	return &RealPublisher{
		client: c,
		now:    now,
		buf:    newRingBuffer(capacity),
	}
}

func (p *RealPublisher) onConnect() {
	p.mu.Lock()
	reconnect := p.everUp
	p.everUp = true
	p.connected = true
	p.replaying = true
	pending := p.buf.len()
	p.mu.Unlock()

	if reconnect {
		log.Printf("mqtt: reconnected, replaying %d buffered messages", pending)
	}
	if !p.replay() {
		return
	}

	if reconnect {
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		if err == nil {
			if err := p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
				log.Printf("mqtt: publish RECONNECTED: %v", err)
			}
		}
	}
}

// replay sends the buffer oldest first until it is empty. New messages keep
// going to the buffer until then, so they queue behind the backlog. On a
// failed send the unsent messages are put back ahead of anything buffered
// meanwhile and replay reports false.
func (p *RealPublisher) replay() bool {
	for {
		p.mu.Lock()
		pending := p.buf.drainAll()
		if len(pending) == 0 {
			p.replaying = false
			p.mu.Unlock()
			return true
		}
		p.mu.Unlock()

		for i, msg := range pending {
			if err := p.send(msg); err != nil {
				log.Printf("mqtt: replay failed: %v", err)
				p.mu.Lock()
				later := p.buf.drainAll()
				for _, m := range pending[i:] {
					p.buf.push(m)
				}
				for _, m := range later {
					p.buf.push(m)
				}
				p.connected = false
				p.replaying = false
				p.mu.Unlock()
				return false
			}
		}
	}
}

func (p *RealPublisher) onConnectionLost(err error) {
	log.Printf("mqtt: connection lost: %v", err)
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// deliver sends msg now if the connection is up and no replay is running,
// otherwise buffers it. A failed send is buffered too so the message is
// replayed after reconnect.
func (p *RealPublisher) deliver(msg bufferedMsg) error {
	p.mu.Lock()
	up := p.connected && !p.replaying && p.client.IsConnectionOpen()
	if !up {
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if err := p.send(msg); err != nil {
		p.mu.Lock()
		p.buf.push(msg)
		p.mu.Unlock()
		return err
	}
	return nil
}

// PublishTelemetry sends a sensor reading to the MQTT broker.
func (p *RealPublisher) PublishTelemetry(rec telemetry.Record, at time.Time) error {
	payload, err := FormatTelemetryPayload(rec, at)
	if err != nil {
		return fmt.Errorf("format telemetry payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.deliver(bufferedMsg{topic: TopicTelemetry, payload: payload})
}

// PublishAlert sends an alert notification to the MQTT broker.
func (p *RealPublisher) PublishAlert(event alert.Event) error {
	payload, err := FormatAlertPayload(event)
	if err != nil {
		return fmt.Errorf("format alert payload: %w", err)
	}
	return p.deliver(bufferedMsg{topic: TopicAlerts, payload: payload, qos: 1})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.deliver(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected && p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
