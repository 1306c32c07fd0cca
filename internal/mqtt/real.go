package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/sweeney/thermostat/internal/logic"
)

const (
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
	retryInterval     = 5 * time.Second
)

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	BufferSize int
	// Will is published by the broker if the connection drops uncleanly.
	Will []byte
}

// RealPublisher publishes to an actual MQTT broker. Messages produced while
// the connection is down are held in a bounded outbox and replayed, oldest
// first, once the client reconnects.
type RealPublisher struct {
	client paho.Client
	log    *zap.SugaredLogger

	mu        sync.Mutex
	outbox    *outbox
	replaying bool // onConnect owns the outbox; new messages queue behind it
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting in the background. It never blocks on the broker: until the
// first connection succeeds, messages go to the outbox.
func NewRealPublisher(opts Options, log *zap.SugaredLogger) (*RealPublisher, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("mqtt broker not set")
	}
	p := newRealPublisher(opts.BufferSize, log)

	clientOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)
	if opts.Will != nil {
		clientOpts.SetBinaryWill(TopicSystem, opts.Will, 1, true)
	}

	p.client = paho.NewClient(clientOpts)
	p.client.Connect()
	p.log.Infof("mqtt connecting to %s as %q", opts.Broker, opts.ClientID)
	return p, nil
}

// newRealPublisher builds a publisher without a client; the caller sets one.
func newRealPublisher(bufferSize int, log *zap.SugaredLogger) *RealPublisher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RealPublisher{
		log:    log,
		outbox: newOutbox(bufferSize),
	}
}

// Publish sends a thermostat event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.send(pending{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) so lifecycle events survive a flaky link
	return p.send(pending{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the client currently holds an open connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.len()
}

// Close disconnects from the broker. Buffered messages are discarded.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(disconnectQuiesce)
	if n := p.Buffered(); n > 0 {
		p.log.Warnf("mqtt closing with %d unsent messages", n)
	}
	return nil
}

// send publishes msg directly only when the link is up and nothing is
// waiting ahead of it. Otherwise msg joins the outbox so order is kept.
func (p *RealPublisher) send(msg pending) error {
	p.mu.Lock()
	if p.replaying || !p.client.IsConnectionOpen() {
		p.push(msg)
		p.mu.Unlock()
		return nil
	}
	if p.outbox.len() > 0 {
		// Left over from a failed replay; flush it ahead of msg.
		p.push(msg)
		p.mu.Unlock()
		_, _, err := p.replay()
		return err
	}
	p.mu.Unlock()

	if err := p.publish(msg); err != nil {
		p.hold(msg)
		return err
	}
	return nil
}

func (p *RealPublisher) publish(msg pending) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}

func (p *RealPublisher) hold(msg pending) {
	p.mu.Lock()
	p.push(msg)
	p.mu.Unlock()
}

// push queues msg. Caller holds p.mu.
func (p *RealPublisher) push(msg pending) {
	if p.outbox.push(msg) {
		p.log.Debugf("mqtt outbox full, dropped oldest message")
	}
}

func (p *RealPublisher) onConnect(_ paho.Client) {
	replayed, dropped, err := p.replay()
	switch {
	case err != nil:
		p.log.Warnf("mqtt replay stopped after %d messages: %v", replayed, err)
	case replayed == 0 && dropped == 0:
		p.log.Infof("mqtt connected")
	default:
		p.log.Infof("mqtt connected, replayed %d messages (%d dropped while offline)", replayed, dropped)
	}
}

// replay publishes the outbox, oldest first, until it is empty. Messages
// sent meanwhile queue behind the replay and go out in a later drain. Only
// one replay runs at a time; a second caller returns at once.
func (p *RealPublisher) replay() (replayed, dropped int, err error) {
	p.mu.Lock()
	if p.replaying {
		p.mu.Unlock()
		return 0, 0, nil
	}
	p.replaying = true
	p.mu.Unlock()

	for {
		p.mu.Lock()
		msgs, d := p.outbox.drain()
		dropped += d
		if len(msgs) == 0 {
			p.replaying = false
			p.mu.Unlock()
			return replayed, dropped, nil
		}
		p.mu.Unlock()

		for i, msg := range msgs {
			if err := p.publish(msg); err != nil {
				p.requeue(msgs[i:])
				return replayed, dropped, err
			}
			replayed++
		}
	}
}

// requeue puts unsent replay messages back ahead of anything queued since
// the drain, and ends the replay.
func (p *RealPublisher) requeue(rest []pending) {
	p.mu.Lock()
	defer p.mu.Unlock()
	queued, _ := p.outbox.drain()
	for _, msg := range rest {
		p.outbox.push(msg)
	}
	for _, msg := range queued {
		p.outbox.push(msg)
	}
	p.replaying = false
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.log.Warnf("mqtt connection lost: %v", err)
}
